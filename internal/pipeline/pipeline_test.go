package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/archive"
	"github.com/couchcryptid/accident-data-etl/internal/adapter/parquet"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
	"github.com/couchcryptid/accident-data-etl/internal/pipeline"
)

// --- mocks ---

type mockSink struct {
	name    string
	err     error
	written []domain.Dataset
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Write(_ context.Context, ds domain.Dataset) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, ds)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		Accidents: []domain.Accident{{ID: "1", Region: "PHA"}, {ID: "2", Region: "JHM"}},
		Locations: []domain.Location{{ID: "1", D: -742000, E: -1043000}},
	}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ds := sampleDataset()
	first := &mockSink{name: "first"}
	second := &mockSink{name: "second"}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(pipeline.ExtractorFunc(func(context.Context) (domain.Dataset, error) {
		return ds, nil
	}), []pipeline.Sink{first, second}, discardLogger(), metrics)

	require.Error(t, p.CheckReadiness(context.Background()))

	got, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Accidents, 2)
	require.Len(t, first.written, 1)
	require.Len(t, second.written, 1)
	if diff := cmp.Diff(ds, second.written[0]); diff != "" {
		t.Fatalf("sink received unexpected dataset (-want +got):\n%s", diff)
	}

	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RowsWritten.WithLabelValues("first")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.JobRunning), 0)
}

func TestPipeline_Run_ExtractError(t *testing.T) {
	sink := &mockSink{name: "sink"}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(pipeline.ExtractorFunc(func(context.Context) (domain.Dataset, error) {
		return domain.Dataset{}, errors.New("archive corrupt")
	}), []pipeline.Sink{sink}, discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive corrupt")
	assert.Empty(t, sink.written)
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.JobFailures.WithLabelValues("load")), 0)
}

func TestPipeline_Run_EmptyDataset(t *testing.T) {
	p := pipeline.New(pipeline.ExtractorFunc(func(context.Context) (domain.Dataset, error) {
		return domain.Dataset{}, nil
	}), nil, discardLogger(), observability.NewMetricsForTesting())

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyTable)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	sink := &mockSink{name: "sink", err: errors.New("unreachable")}
	p := pipeline.New(pipeline.ExtractorFunc(func(context.Context) (domain.Dataset, error) {
		return sampleDataset(), nil
	}), []pipeline.Sink{sink}, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink sink")
}

func TestArchiveExtractor_ToParquet(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "data.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)

	w, err := archive.NewWriter("windows-1250")
	require.NoError(t, err)
	require.NoError(t, w.Write(f, []archive.Member{
		{
			Name:   "2023_nehody.xls",
			Header: []string{"p1", "p2a", "p2b", "p4a", "p8a", "p11"},
			Rows: [][]string{
				{"100", "01.02.2023", "530", "6", "1", "0"},
				{"101", "02.02.2023", "2210", "0", "0", "4"},
				{"102", "03.02.2023", "1200", "0", "0", "0"},
				{"102", "03.02.2023", "1200", "0", "0", "0"},
			},
		},
		{
			Name:   "2023_lokalita.xls",
			Header: []string{"p1", "d", "e"},
			Rows:   [][]string{{"100", "-598000", "-1160500"}, {"101", "", ""}},
		},
	}))
	require.NoError(t, f.Close())

	metrics := observability.NewMetricsForTesting()
	loader, err := archive.NewLoader("windows-1250", io.Discard, discardLogger(), metrics)
	require.NoError(t, err)

	store := parquet.NewStore(filepath.Join(dir, "prepared"), discardLogger())
	p := pipeline.New(
		pipeline.NewArchiveExtractor(loader, zipPath, false, discardLogger(), metrics),
		[]pipeline.Sink{store},
		discardLogger(), metrics,
	)

	ds, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Accidents, 2, "duplicate ids are dropped")
	assert.Empty(t, ds.Consequences, "consequences are optional")
	require.Len(t, ds.Locations, 1)
	assert.Equal(t, "JHM", ds.Accidents[0].Region)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues(pipeline.DatasetAccidents)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues(pipeline.DatasetLocations)), 0)

	// A second run can start from the prepared tables alone.
	reloaded, err := pipeline.New(pipeline.ExtractorFunc(store.Load), nil, discardLogger(), metrics).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ds.Accidents, reloaded.Accidents)
	assert.Equal(t, ds.Locations, reloaded.Locations)
}

func TestArchiveExtractor_HeaderOnlyOptionalTable(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "data.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)

	w, err := archive.NewWriter("windows-1250")
	require.NoError(t, err)
	require.NoError(t, w.Write(f, []archive.Member{
		{
			Name:   "2023_nehody.xls",
			Header: []string{"p1", "p2a", "p4a"},
			Rows:   [][]string{{"100", "01.02.2023", "6"}},
		},
		{Name: "2023_nasledky.xls", Header: []string{"p1", "p59a", "p59g"}},
	}))
	require.NoError(t, f.Close())

	metrics := observability.NewMetricsForTesting()
	loader, err := archive.NewLoader("windows-1250", io.Discard, discardLogger(), metrics)
	require.NoError(t, err)

	ds, err := pipeline.NewArchiveExtractor(loader, zipPath, false, discardLogger(), metrics).Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Accidents, 1)
	assert.Empty(t, ds.Consequences)
}
