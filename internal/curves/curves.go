// Package curves holds the small numeric routines behind the function plots.
package curves

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when two matrices do not have the same shape.
var ErrShapeMismatch = errors.New("shape mismatch")

// Distance returns the Euclidean distance between corresponding rows of a and b:
//
//	distance(a_i, b_i) = sqrt(sum((a_i - b_i)^2))
func Distance(a, b [][]float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d rows vs %d rows", ErrShapeMismatch, len(a), len(b))
	}
	out := make([]float64, len(a))
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return nil, fmt.Errorf("%w: row %d has %d vs %d columns", ErrShapeMismatch, i, len(a[i]), len(b[i]))
		}
		var sum float64
		for j := range a[i] {
			d := a[i][j] - b[i][j]
			sum += d * d
		}
		out[i] = math.Sqrt(sum)
	}
	return out, nil
}

// Linspace returns n evenly spaced samples over [start, stop], both ends included.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	step := (stop - start) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// SineFamily evaluates f_a(x) = a^2 * sin(x) for every a over xs. Row i of the
// result belongs to as[i].
func SineFamily(as, xs []float64) [][]float64 {
	out := make([][]float64, len(as))
	for i, a := range as {
		row := make([]float64, len(xs))
		for j, x := range xs {
			row[j] = a * a * math.Sin(x)
		}
		out[i] = row
	}
	return out
}

// Signals holds the three sampled signals of the composite figure.
type Signals struct {
	X, F1, F2, F3 []float64
}

// Composite samples
//
//	f1(x) = 0.5 * cos(0.02 * pi * x)
//	f2(x) = 0.25 * (sin(pi * x) + sin(1.5 * pi * x))
//	f3(x) = f1(x) + f2(x)
//
// over xs.
func Composite(xs []float64) Signals {
	s := Signals{
		X:  xs,
		F1: make([]float64, len(xs)),
		F2: make([]float64, len(xs)),
		F3: make([]float64, len(xs)),
	}
	for i, x := range xs {
		s.F1[i] = 0.5 * math.Cos(0.02*math.Pi*x)
		s.F2[i] = 0.25 * (math.Sin(math.Pi*x) + math.Sin(1.5*math.Pi*x))
		s.F3[i] = s.F1[i] + s.F2[i]
	}
	return s
}

// Segment is a contiguous run of samples [From, To) that share a class.
type Segment struct {
	From, To int
	Class    string
}

// Classes of f3 used to colour the composite figure.
const (
	ClassAbove     = "f3 >= f1"
	ClassBelowLow  = "f3 < f1 and (x < 50)"
	ClassBelowHigh = "f3 < f1 and (x >= 50)"
)

// Split partitions f3 into contiguous segments: at or above f1, below f1 left of
// x = 50, and below f1 from x = 50 on.
func (s Signals) Split() []Segment {
	var out []Segment
	for i := range s.X {
		class := ClassAbove
		if s.F3[i] < s.F1[i] {
			class = ClassBelowLow
			if s.X[i] >= 50 {
				class = ClassBelowHigh
			}
		}
		if n := len(out); n > 0 && out[n-1].Class == class {
			out[n-1].To = i + 1
			continue
		}
		out = append(out, Segment{From: i, To: i + 1, Class: class})
	}
	return out
}

// Tick is an axis tick with its label.
type Tick struct {
	Value float64
	Label string
}

// PiTicks returns ticks every pi/2 from 0 through max, labelled "0", "k/2 π" or "kπ".
func PiTicks(max float64) []Tick {
	var out []Tick
	for i := 0; float64(i)*math.Pi/2 <= max+1e-9; i++ {
		v := float64(i) * math.Pi / 2
		var label string
		switch {
		case i == 0:
			label = "0"
		case i%2 == 0:
			label = fmt.Sprintf("%dπ", i/2)
		default:
			label = fmt.Sprintf("%d/2 π", i)
		}
		out = append(out, Tick{Value: v, Label: label})
	}
	return out
}
