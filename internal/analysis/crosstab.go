package analysis

import (
	"cmp"
	"slices"
)

// Crosstab counts occurrences of (row, column) label pairs.
type Crosstab struct {
	cells map[string]map[string]int
	rows  map[string]struct{}
	cols  map[string]struct{}
}

// NewCrosstab returns an empty table.
func NewCrosstab() *Crosstab {
	return &Crosstab{
		cells: make(map[string]map[string]int),
		rows:  make(map[string]struct{}),
		cols:  make(map[string]struct{}),
	}
}

// Add increments the (row, col) cell by one.
func (c *Crosstab) Add(row, col string) {
	r, ok := c.cells[row]
	if !ok {
		r = make(map[string]int)
		c.cells[row] = r
	}
	r[col]++
	c.rows[row] = struct{}{}
	c.cols[col] = struct{}{}
}

// Get returns the count of the (row, col) cell.
func (c *Crosstab) Get(row, col string) int {
	return c.cells[row][col]
}

// Rows returns the row labels in sorted order.
func (c *Crosstab) Rows() []string {
	return sortedKeys(c.rows)
}

// Cols returns the column labels in sorted order.
func (c *Crosstab) Cols() []string {
	return sortedKeys(c.cols)
}

// RowTotal returns the sum of all cells in a row.
func (c *Crosstab) RowTotal(row string) int {
	total := 0
	for _, v := range c.cells[row] {
		total += v
	}
	return total
}

// Total returns the sum of all cells.
func (c *Crosstab) Total() int {
	total := 0
	for row := range c.cells {
		total += c.RowTotal(row)
	}
	return total
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Count is one entry of a value-count listing.
type Count struct {
	Label string
	Count int
}

// valueCounts returns label counts sorted by descending count, ties broken by label
// so the output is deterministic.
func valueCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
