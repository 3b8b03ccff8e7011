package domain

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/go-gota/gota/dataframe"
)

// dateLayouts are tried in order; the police exports use the first one, hand-made
// extracts sometimes carry ISO dates.
var dateLayouts = []string{"2.1.2006", "2006-01-02"}

var accidentColumns = []string{"p1", "p2a", "p2b", "p4a", "p6", "p7", "p8a", "p10", "p11", "p16", "p19", "p28", "p36"}

// ParseAccidents converts a raw "nehody" table into accident records. It derives the
// date and region code, and drops every row whose p1 identifier is not unique.
// Unparseable dates leave Date zero; the row itself is kept.
func ParseAccidents(df dataframe.DataFrame, logger *slog.Logger, verbose bool) ([]Accident, error) {
	cols, n, err := columnsOf(df, []string{"p1", "p2a", "p4a"}, accidentColumns)
	if err != nil {
		return nil, fmt.Errorf("parse accidents: %w", err)
	}

	ids := cols["p1"]
	seen := make(map[string]int, n)
	for _, id := range ids {
		seen[cell(id)]++
	}

	out := make([]Accident, 0, n)
	for i := 0; i < n; i++ {
		id := cell(ids[i])
		if seen[id] > 1 {
			continue
		}

		a := Accident{
			ID:         id,
			DateRaw:    cell(cols["p2a"][i]),
			Time:       parseCode(cols["p2b"][i]),
			RegionID:   parseCode(cols["p4a"][i]),
			Kind:       parseCode(cols["p6"][i]),
			Collision:  parseCode(cols["p7"][i]),
			Animal:     parseCode(cols["p8a"][i]),
			Cause:      parseCode(cols["p10"][i]),
			Alcohol:    parseCode(cols["p11"][i]),
			Surface:    parseCode(cols["p16"][i]),
			Visibility: parseCode(cols["p19"][i]),
			Direction:  parseCode(cols["p28"][i]),
			RoadType:   parseCode(cols["p36"][i]),
		}
		a.Date = parseDate(a.DateRaw)
		a.Region = RegionCodes[a.RegionID]
		out = append(out, a)
	}

	if dropped := n - len(out); dropped > 0 {
		logger.Warn("dropped accidents with duplicate id", "rows", dropped)
	}
	if verbose {
		logger.Info("parsed accidents",
			"rows", len(out),
			"new_size", fmt.Sprintf("%.1f MB", float64(approxSize(out))/(1000*1000)),
		)
	}
	return out, nil
}

// ParseConsequences converts a raw "nasledky" table into per-person records.
func ParseConsequences(df dataframe.DataFrame) ([]Consequence, error) {
	cols, n, err := columnsOf(df, []string{"p1", "p59g"}, []string{"p1", "p59a", "p59g"})
	if err != nil {
		return nil, fmt.Errorf("parse consequences: %w", err)
	}

	out := make([]Consequence, n)
	for i := range out {
		out[i] = Consequence{
			ID:         cell(cols["p1"][i]),
			PersonType: parseCode(cols["p59a"][i]),
			Injury:     parseCode(cols["p59g"][i]),
		}
	}
	return out, nil
}

// ParseLocations converts a raw "lokalita" table into coordinate records. Rows
// without both coordinates are skipped.
func ParseLocations(df dataframe.DataFrame) ([]Location, error) {
	cols, n, err := columnsOf(df, []string{"p1", "d", "e"}, []string{"p1", "d", "e"})
	if err != nil {
		return nil, fmt.Errorf("parse locations: %w", err)
	}

	out := make([]Location, 0, n)
	for i := 0; i < n; i++ {
		d := parseFloatOrNaN(cols["d"][i])
		e := parseFloatOrNaN(cols["e"][i])
		if math.IsNaN(d) || math.IsNaN(e) {
			continue
		}
		out = append(out, Location{ID: cell(cols["p1"][i]), D: d, E: e})
	}
	return out, nil
}

// columnsOf extracts the wanted columns of df as strings. Required columns must be
// present; other wanted columns that are missing read as empty cells.
func columnsOf(df dataframe.DataFrame, required, wanted []string) (map[string][]string, int, error) {
	if df.Err != nil {
		return nil, 0, df.Err
	}
	n := df.Nrow()
	if n == 0 {
		return nil, 0, ErrEmptyTable
	}

	names := df.Names()
	for _, name := range required {
		if !slices.Contains(names, name) {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	cols := make(map[string][]string, len(wanted))
	for _, name := range wanted {
		if !slices.Contains(names, name) {
			cols[name] = make([]string, n)
			continue
		}
		cols[name] = df.Col(name).Records()
	}
	return cols, n, nil
}

// cell normalizes a text cell; gota renders missing values as "NaN".
func cell(s string) string {
	s = strings.TrimSpace(s)
	if s == "NaN" {
		return ""
	}
	return s
}

// parseCode parses a categorical code. Exports sometimes render integers as floats
// ("4.0"), so those are accepted too. Anything else yields NoCode.
func parseCode(s string) int {
	s = cell(s)
	if s == "" {
		return NoCode
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	v := parseFloatOrNaN(s)
	if math.IsNaN(v) || v != math.Trunc(v) {
		return NoCode
	}
	return int(v)
}

// parseFloatOrNaN parses a number that may use a decimal comma.
func parseFloatOrNaN(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// approxSize estimates the in-memory footprint of the parsed records.
func approxSize(accidents []Accident) int {
	size := len(accidents) * int(unsafe.Sizeof(Accident{}))
	for i := range accidents {
		size += len(accidents[i].ID) + len(accidents[i].DateRaw) + len(accidents[i].Region)
	}
	return size
}
