// Package analysis aggregates parsed accident records into the tables behind every
// chart and report. All functions are pure and never mutate their input.
package analysis

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// HourCount is the number of accidents that started within one hour of the day.
type HourCount struct {
	Hour  int
	Count int
}

// Animals keeps the accidents in which any animal took part.
func Animals(accidents []domain.Accident) []domain.Accident {
	out := make([]domain.Accident, 0, len(accidents)/10)
	for _, a := range accidents {
		if a.HasAnimal() {
			out = append(out, a)
		}
	}
	return out
}

// AnimalHours counts wild-animal accidents with a known time per hour of day.
// Only hours with at least one accident are returned, in ascending order.
func AnimalHours(accidents []domain.Accident) []HourCount {
	var hours [24]int
	for _, a := range accidents {
		if !a.HasWildAnimal() {
			continue
		}
		if h, ok := a.Hour(); ok {
			hours[h]++
		}
	}

	out := make([]HourCount, 0, 24)
	for h, n := range hours {
		if n > 0 {
			out = append(out, HourCount{Hour: h, Count: n})
		}
	}
	return out
}

// AnimalTypes counts wild-animal accidents per animal group, most frequent first.
func AnimalTypes(accidents []domain.Accident) []Count {
	counts := make(map[string]int)
	for _, a := range accidents {
		if label, ok := domain.WildAnimalGroups[a.Animal]; ok {
			counts[label]++
		}
	}
	return valueCounts(counts)
}

// RoadTypeRow summarizes animal accidents on one road category.
type RoadTypeRow struct {
	RoadType             string
	Accidents            int
	DominantAnimal       string
	DominantAnimalShare  int
	DominantDaytime      string
	DominantDaytimeShare int
}

// RoadTypeTable groups animal accidents by road type. For each road type it reports
// the most frequent animal and daytime together with their share of the group in
// whole percent. Accidents with an unknown road type are left out. Rows are sorted
// by road type label.
func RoadTypeTable(animals []domain.Accident) []RoadTypeRow {
	type group struct {
		size     int
		animals  map[string]int
		daytimes map[string]int
	}
	groups := make(map[string]*group)

	for _, a := range animals {
		road, ok := domain.RoadTypes[a.RoadType]
		if !ok {
			continue
		}
		g, ok := groups[road]
		if !ok {
			g = &group{animals: make(map[string]int), daytimes: make(map[string]int)}
			groups[road] = g
		}
		g.size++
		if label, ok := domain.Animals[a.Animal]; ok {
			g.animals[label]++
		}
		if label, ok := domain.Visibility[a.Visibility]; ok {
			g.daytimes[label]++
		}
	}

	rows := make([]RoadTypeRow, 0, len(groups))
	for road, g := range groups {
		row := RoadTypeRow{RoadType: road, Accidents: g.size}
		if top := valueCounts(g.animals); len(top) > 0 {
			row.DominantAnimal = top[0].Label
			row.DominantAnimalShare = percent(top[0].Count, g.size)
		}
		if top := valueCounts(g.daytimes); len(top) > 0 {
			row.DominantDaytime = top[0].Label
			row.DominantDaytimeShare = percent(top[0].Count, g.size)
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b RoadTypeRow) int {
		return cmp.Compare(a.RoadType, b.RoadType)
	})
	return rows
}

// Statistics are the headline numbers of the animal-accident report.
type Statistics struct {
	Total                  int
	AnimalShare            float64
	WildShare              int
	DominantDirection      string
	DominantDirectionShare int
}

// ComputeStatistics derives the headline numbers from all accidents and the subset
// with animals involved.
func ComputeStatistics(animals, all []domain.Accident) (Statistics, error) {
	if len(all) == 0 {
		return Statistics{}, domain.ErrEmptyTable
	}
	if len(animals) == 0 {
		return Statistics{}, errors.New("no accidents with animals")
	}

	wild := 0
	directions := make(map[string]int)
	for _, a := range animals {
		if a.HasWildAnimal() {
			wild++
		}
		if label, ok := domain.RoadDirections[a.Direction]; ok {
			directions[label]++
		}
	}

	st := Statistics{
		Total:       len(all),
		AnimalShare: float64(len(animals)) / float64(len(all)) * 100,
		WildShare:   percent(wild, len(animals)),
	}
	if top := valueCounts(directions); len(top) > 0 {
		st.DominantDirection = top[0].Label
		st.DominantDirectionShare = percent(top[0].Count, len(animals))
	}
	return st, nil
}

// Lines renders the statistics as report sentences.
func (s Statistics) Lines() []string {
	return []string{
		fmt.Sprintf("Celkový počet nehod za uplynulé 2 roky: %d", s.Total),
		fmt.Sprintf("Procento nehod se zvířaty: %.2f%%", s.AnimalShare),
		fmt.Sprintf("Procento nehod způsobených divokými zvířaty: %d%%", s.WildShare),
		fmt.Sprintf("Nejčastější směr vozovky při nehodě se zvířetem: %s", s.DominantDirection),
		fmt.Sprintf("Procento nehod ve nejčastějším směru vozovky: %d%%", s.DominantDirectionShare),
	}
}

// percent returns part/whole in whole percent, rounding halves to even.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(part) / float64(whole) * 100))
}
