package analysis

import (
	"slices"
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// Role labels used by AlcoholConsequences.
const (
	RoleDriver = "řidič"
	RoleOther  = "ostatní"
)

// CountByRegionAndState counts accidents per region and road surface state group.
// Accidents with an unknown region or surface state are skipped.
func CountByRegionAndState(accidents []domain.Accident) *Crosstab {
	ct := NewCrosstab()
	for _, a := range accidents {
		state, ok := domain.SurfaceStates[a.Surface]
		if a.Region == "" || !ok {
			continue
		}
		ct.Add(a.Region, state)
	}
	return ct
}

// AlcoholImpact holds the persons involved in alcohol-related accidents per region.
type AlcoholImpact struct {
	BySeverity *Crosstab // region x injury severity
	ByRole     *Crosstab // region x driver/other
}

// AlcoholConsequences joins alcohol-related accidents with their consequence rows on
// the accident id and counts the involved persons per region, once by injury severity
// and once by whether the person was a driver.
func AlcoholConsequences(accidents []domain.Accident, consequences []domain.Consequence) AlcoholImpact {
	regions := make(map[string]string)
	for _, a := range accidents {
		if a.HasAlcohol() && a.Region != "" {
			regions[a.ID] = a.Region
		}
	}

	impact := AlcoholImpact{BySeverity: NewCrosstab(), ByRole: NewCrosstab()}
	for _, c := range consequences {
		region, ok := regions[c.ID]
		if !ok {
			continue
		}
		if injury, ok := domain.Injuries[c.Injury]; ok {
			impact.BySeverity.Add(region, injury)
		}
		role := RoleOther
		if c.IsDriver() {
			role = RoleDriver
		}
		impact.ByRole.Add(region, role)
	}
	return impact
}

// MonthlySeries holds monthly counts for several labelled series over a shared,
// gap-free range of months.
type MonthlySeries struct {
	Months []time.Time
	Series map[string][]int
}

// Labels returns the series labels in sorted order.
func (m MonthlySeries) Labels() []string {
	labels := make([]string, 0, len(m.Series))
	for l := range m.Series {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// CollisionsOverTime counts vehicle collisions per month and collision kind for each
// of the given regions. All regions share the month range spanned by the selected
// accidents. Regions without any collision get an empty series map.
func CollisionsOverTime(accidents []domain.Accident, regions []string) map[string]MonthlySeries {
	selected := make(map[string]bool, len(regions))
	for _, r := range regions {
		selected[r] = true
	}

	type key struct {
		region, collision string
		month             time.Time
	}
	counts := make(map[key]int)
	var first, last time.Time

	for _, a := range accidents {
		collision, ok := domain.Collisions[a.Collision]
		if !ok || !selected[a.Region] || a.Date.IsZero() {
			continue
		}
		month := startOfMonth(a.Date)
		counts[key{a.Region, collision, month}]++
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if month.After(last) {
			last = month
		}
	}

	var months []time.Time
	if !first.IsZero() {
		for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
			months = append(months, m)
		}
	}

	out := make(map[string]MonthlySeries, len(regions))
	for _, r := range regions {
		out[r] = MonthlySeries{Months: months, Series: make(map[string][]int)}
	}
	for k, n := range counts {
		ms := out[k.region]
		series, ok := ms.Series[k.collision]
		if !ok {
			series = make([]int, len(months))
			ms.Series[k.collision] = series
		}
		idx := monthsBetween(first, k.month)
		series[idx] += n
	}
	return out
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
