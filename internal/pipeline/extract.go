package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gota/gota/dataframe"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

// Archive dataset names.
const (
	DatasetAccidents    = "nehody"
	DatasetConsequences = "nasledky"
	DatasetLocations    = "lokalita"
)

// TableLoader reads one dataset out of an export archive.
type TableLoader interface {
	Load(ctx context.Context, path, dataset string) (dataframe.DataFrame, error)
}

// ArchiveExtractor loads and parses the three datasets of an export archive.
type ArchiveExtractor struct {
	loader  TableLoader
	path    string
	verbose bool
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewArchiveExtractor creates an extractor for the archive at path. With verbose
// set the parsed accident table reports its size.
func NewArchiveExtractor(loader TableLoader, path string, verbose bool, logger *slog.Logger, metrics *observability.Metrics) *ArchiveExtractor {
	return &ArchiveExtractor{loader: loader, path: path, verbose: verbose, logger: logger, metrics: metrics}
}

// Extract parses accidents, which are required, and consequences and locations,
// which may be absent from the archive.
func (e *ArchiveExtractor) Extract(ctx context.Context) (domain.Dataset, error) {
	var ds domain.Dataset

	df, err := e.loader.Load(ctx, e.path, DatasetAccidents)
	if err != nil {
		return ds, err
	}
	if ds.Accidents, err = domain.ParseAccidents(df, e.logger, e.verbose); err != nil {
		return ds, err
	}
	e.skipped(DatasetAccidents, df.Nrow(), len(ds.Accidents))

	df, err = e.optional(ctx, DatasetConsequences)
	if err != nil {
		return ds, err
	}
	if df.Nrow() > 0 {
		if ds.Consequences, err = domain.ParseConsequences(df); err != nil {
			return ds, err
		}
		e.skipped(DatasetConsequences, df.Nrow(), len(ds.Consequences))
	}

	df, err = e.optional(ctx, DatasetLocations)
	if err != nil {
		return ds, err
	}
	if df.Nrow() > 0 {
		if ds.Locations, err = domain.ParseLocations(df); err != nil {
			return ds, err
		}
		e.skipped(DatasetLocations, df.Nrow(), len(ds.Locations))
	}
	return ds, nil
}

func (e *ArchiveExtractor) optional(ctx context.Context, dataset string) (dataframe.DataFrame, error) {
	df, err := e.loader.Load(ctx, e.path, dataset)
	if errors.Is(err, domain.ErrEmptyTable) {
		e.logger.Warn("dataset missing from archive", "dataset", dataset)
		return dataframe.DataFrame{}, nil
	}
	if err != nil {
		return df, fmt.Errorf("load %s: %w", dataset, err)
	}
	return df, nil
}

func (e *ArchiveExtractor) skipped(dataset string, rows, parsed int) {
	if n := rows - parsed; n > 0 {
		e.metrics.RowsSkipped.WithLabelValues(dataset).Add(float64(n))
	}
}
