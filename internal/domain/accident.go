package domain

import "time"

// NoCode marks a categorical column that was empty or unparseable in the source.
const NoCode = -1

// Accident is one parsed row of the "nehody" dataset.
type Accident struct {
	ID         string    `json:"p1"`
	DateRaw    string    `json:"p2a"`
	Date       time.Time `json:"date"`
	Time       int       `json:"p2b"`
	RegionID   int       `json:"p4a"`
	Region     string    `json:"region,omitempty"`
	Kind       int       `json:"p6"`
	Collision  int       `json:"p7"`
	Animal     int       `json:"p8a"`
	Cause      int       `json:"p10"`
	Alcohol    int       `json:"p11"`
	Surface    int       `json:"p16"`
	Visibility int       `json:"p19"`
	Direction  int       `json:"p28"`
	RoadType   int       `json:"p36"`
}

// HasAnimal reports whether any animal took part in the accident.
func (a Accident) HasAnimal() bool {
	return a.Animal > 0
}

// HasWildAnimal reports whether the animal involved was a wild one (codes 1..12).
func (a Accident) HasWildAnimal() bool {
	return a.Animal >= 1 && a.Animal <= 12
}

// HasAlcohol reports whether alcohol was confirmed for the driver at fault.
func (a Accident) HasAlcohol() bool {
	return a.Alcohol >= 4
}

// Hour returns the hour of day of the accident, or false when the recorded time is
// unknown. Times of 2359 and above are treated as unknown because the source uses
// values like 2560 for "hour not recorded".
func (a Accident) Hour() (int, bool) {
	if a.Time < 0 || a.Time >= 2359 {
		return 0, false
	}
	return a.Time / 100, true
}

// Consequence is one involved person from the "nasledky" dataset.
type Consequence struct {
	ID         string `json:"p1"`
	PersonType int    `json:"p59a"`
	Injury     int    `json:"p59g"`
}

// IsDriver reports whether the person was the driver of a vehicle.
func (c Consequence) IsDriver() bool {
	return c.PersonType == 1
}

// Location holds raw S-JTSK coordinates of an accident from the "lokalita" dataset.
type Location struct {
	ID string  `json:"p1"`
	D  float64 `json:"d"`
	E  float64 `json:"e"`
}

// StationTable holds the scraped geographic stations as parallel columns.
type StationTable struct {
	Positions []string  `json:"positions"`
	Lats      []float64 `json:"lats"`
	Longs     []float64 `json:"longs"`
	Heights   []float64 `json:"heights"`
}

// Len returns the number of stations in the table.
func (t StationTable) Len() int {
	return len(t.Positions)
}

// Append adds one station row to every column.
func (t *StationTable) Append(position string, lat, long, height float64) {
	t.Positions = append(t.Positions, position)
	t.Lats = append(t.Lats, lat)
	t.Longs = append(t.Longs, long)
	t.Heights = append(t.Heights, height)
}

// Dataset is the prepared form of the archive: the three tables keyed by p1.
type Dataset struct {
	Accidents    []Accident
	Consequences []Consequence
	Locations    []Location
}

// Empty reports whether the dataset holds no accidents.
func (d Dataset) Empty() bool {
	return len(d.Accidents) == 0
}
