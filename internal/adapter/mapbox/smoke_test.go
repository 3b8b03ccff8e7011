//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

// Hits the real API. Run with MAPBOX_TOKEN set:
// go test -tags=mapbox ./internal/adapter/mapbox/ -count=1

func TestSmoke_NearestPlace(t *testing.T) {
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Skip("MAPBOX_TOKEN not set")
	}
	metrics := observability.NewMetricsForTesting()
	c := NewCachedLocator(NewClient(token, 10*time.Second, metrics, slog.New(slog.NewTextHandler(io.Discard, nil))), 10, metrics)

	tests := []struct {
		name     string
		lat, lon float64
		want     string
		region   string
	}{
		{"Brno centre", 49.1951, 16.6068, "Brno", "Jihomoravský kraj"},
		{"Prague old town", 50.0875, 14.4213, "Praha", "Praha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.NearestPlace(context.Background(), tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Contains(t, p.Name, tt.want)
			assert.Contains(t, p.Region, tt.region)
		})
	}
}
