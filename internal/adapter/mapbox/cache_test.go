package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

type countingLocator struct {
	calls int
	place domain.Place
	err   error
}

func (m *countingLocator) NearestPlace(context.Context, float64, float64) (domain.Place, error) {
	m.calls++
	return m.place, m.err
}

func TestCachedLocator_Hit(t *testing.T) {
	inner := &countingLocator{place: domain.Place{Name: "Brno", Region: "Jihomoravský kraj"}}
	metrics := observability.NewMetricsForTesting()
	c := NewCachedLocator(inner, 10, metrics)

	p1, err := c.NearestPlace(context.Background(), 49.1951, 16.6068)
	require.NoError(t, err)
	// Within the same 0.001 degree cell.
	p2, err := c.NearestPlace(context.Background(), 49.1954, 16.6071)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedLocator_Misses(t *testing.T) {
	tests := []struct {
		name      string
		inner     *countingLocator
		lat, lon  [2]float64
		wantCalls int
	}{
		{"different cells", &countingLocator{place: domain.Place{Name: "Brno"}}, [2]float64{49.19, 50.08}, [2]float64{16.60, 14.42}, 2},
		{"not found is retried", &countingLocator{}, [2]float64{49.19, 49.19}, [2]float64{16.60, 16.60}, 2},
		{"errors are retried", &countingLocator{err: errors.New("boom")}, [2]float64{49.19, 49.19}, [2]float64{16.60, 16.60}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCachedLocator(tt.inner, 10, observability.NewMetricsForTesting())
			for i := range 2 {
				_, err := c.NearestPlace(context.Background(), tt.lat[i], tt.lon[i])
				if tt.inner.err != nil {
					require.Error(t, err)
				}
			}
			assert.Equal(t, tt.wantCalls, tt.inner.calls)
		})
	}
}
