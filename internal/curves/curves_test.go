package curves

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	a := [][]float64{{-1, -1, -1}, {0, 1, 2}, {3, -3, 1}, {-2, -2, 0}, {4, 5, 6}}
	b := [][]float64{{1, 1, 1}, {0, 0, 0}, {3, 3, 3}, {-2, 1, 2}, {0, 0, 0}}

	got, err := Distance(a, b)
	require.NoError(t, err)

	want := []float64{math.Sqrt(12), math.Sqrt(5), math.Sqrt(40), math.Sqrt(13), math.Sqrt(77)}
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestDistance_ShapeMismatch(t *testing.T) {
	_, err := Distance([][]float64{{1}}, [][]float64{{1}, {2}})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Distance([][]float64{{1, 2}}, [][]float64{{1}})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLinspace(t *testing.T) {
	assert.Nil(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5), 1e-12)

	xs := Linspace(0, 6*math.Pi, 10000)
	assert.Len(t, xs, 10000)
	assert.Equal(t, 6*math.Pi, xs[len(xs)-1])
}

func TestSineFamily(t *testing.T) {
	xs := []float64{0, math.Pi / 2}
	got := SineFamily([]float64{7, 4, 3}, xs)
	require.Len(t, got, 3)
	assert.InDeltaSlice(t, []float64{0, 49}, got[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 16}, got[1], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 9}, got[2], 1e-12)
}

func TestComposite(t *testing.T) {
	s := Composite([]float64{0, 50, 100})
	assert.InDelta(t, 0.5, s.F1[0], 1e-12)
	assert.InDelta(t, -0.5, s.F1[1], 1e-12)
	assert.InDelta(t, 0.0, s.F2[0], 1e-12)
	for i := range s.X {
		assert.InDelta(t, s.F1[i]+s.F2[i], s.F3[i], 1e-12)
	}
}

func TestSplit(t *testing.T) {
	s := Signals{
		X:  []float64{10, 20, 30, 60, 70, 80},
		F1: []float64{0, 0, 0, 0, 0, 0},
		F3: []float64{1, -1, -1, -1, 1, 1},
	}

	assert.Equal(t, []Segment{
		{From: 0, To: 1, Class: ClassAbove},
		{From: 1, To: 3, Class: ClassBelowLow},
		{From: 3, To: 4, Class: ClassBelowHigh},
		{From: 4, To: 6, Class: ClassAbove},
	}, s.Split())
}

func TestPiTicks(t *testing.T) {
	ticks := PiTicks(6 * math.Pi)
	require.Len(t, ticks, 13)
	assert.Equal(t, "0", ticks[0].Label)
	assert.Equal(t, "1/2 π", ticks[1].Label)
	assert.Equal(t, "1π", ticks[2].Label)
	assert.Equal(t, "3/2 π", ticks[3].Label)
	assert.Equal(t, "6π", ticks[12].Label)
	assert.InDelta(t, 6*math.Pi, ticks[12].Value, 1e-12)
}
