package parquet

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "prepared"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_WriteLoad(t *testing.T) {
	s := testStore(t)
	assert.False(t, s.Exists())

	ds := domain.Dataset{
		Accidents: []domain.Accident{
			{
				ID: "190910111", DateRaw: "1.3.2023", Date: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
				Time: 2210, RegionID: 6, Region: "JHM", Animal: 1, Alcohol: 4, RoadType: 3,
			},
			{ID: "190910112", DateRaw: "??", Time: 2560, Region: "PHA"},
		},
		Consequences: []domain.Consequence{{ID: "190910111", PersonType: 1, Injury: 3}},
		Locations: []domain.Location{
			{ID: "190910111", D: -598000, E: -1160500},
			{ID: "190910112", D: math.NaN(), E: math.NaN()},
		},
	}

	ctx := context.Background()
	require.NoError(t, s.Write(ctx, ds))
	assert.True(t, s.Exists())

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.Accidents, got.Accidents)
	assert.Equal(t, ds.Consequences, got.Consequences)
	require.Len(t, got.Locations, 2)
	assert.Equal(t, ds.Locations[0], got.Locations[0])
	assert.True(t, math.IsNaN(got.Locations[1].D))
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := testStore(t).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyTable)
}

func TestStore_OptionalTables(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, domain.Dataset{Accidents: []domain.Accident{{ID: "1"}}}))
	require.NoError(t, os.Remove(filepath.Join(s.dir, LocationsFile)))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Accidents, 1)
	assert.Empty(t, got.Consequences)
	assert.Empty(t, got.Locations)
}

func TestStore_WriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := testStore(t).Write(ctx, domain.Dataset{Accidents: []domain.Accident{{ID: "1"}}})
	require.ErrorIs(t, err, context.Canceled)
}
