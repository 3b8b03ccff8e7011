// Package parquet stores the prepared accident tables as Parquet files, one file
// per table, so later jobs can skip re-reading the spreadsheet archive.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	pqformat "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// File names of the prepared tables.
const (
	AccidentsFile    = "accidents.parquet"
	ConsequencesFile = "consequences.parquet"
	LocationsFile    = "locations.parquet"
)

const parallelism = 4

// Store reads and writes the prepared tables in one directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Name identifies the store as a pipeline sink.
func (s *Store) Name() string { return "parquet" }

// Exists reports whether the accident table has been written.
func (s *Store) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, AccidentsFile))
	return err == nil
}

// Write replaces all three tables with the contents of ds.
func (s *Store) Write(ctx context.Context, ds domain.Dataset) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create prepared dir: %w", err)
	}

	if err := writeRows(ctx, filepath.Join(s.dir, AccidentsFile), mapRows(ds.Accidents, fromAccident)); err != nil {
		return fmt.Errorf("write accidents: %w", err)
	}
	if err := writeRows(ctx, filepath.Join(s.dir, ConsequencesFile), mapRows(ds.Consequences, fromConsequence)); err != nil {
		return fmt.Errorf("write consequences: %w", err)
	}
	if err := writeRows(ctx, filepath.Join(s.dir, LocationsFile), mapRows(ds.Locations, fromLocation)); err != nil {
		return fmt.Errorf("write locations: %w", err)
	}

	s.logger.Info("prepared tables written",
		"dir", s.dir,
		"accidents", len(ds.Accidents),
		"consequences", len(ds.Consequences),
		"locations", len(ds.Locations),
	)
	return nil
}

// Load reads all three tables. A missing accident table yields domain.ErrEmptyTable;
// the other two tables are optional and come back empty when absent.
func (s *Store) Load(ctx context.Context) (domain.Dataset, error) {
	var ds domain.Dataset

	accidents, err := readRows[accidentRow](ctx, filepath.Join(s.dir, AccidentsFile))
	if errors.Is(err, os.ErrNotExist) {
		return ds, fmt.Errorf("read accidents from %s: %w", s.dir, domain.ErrEmptyTable)
	}
	if err != nil {
		return ds, fmt.Errorf("read accidents: %w", err)
	}
	ds.Accidents = mapRows(accidents, accidentRow.toDomain)

	consequences, err := readRows[consequenceRow](ctx, filepath.Join(s.dir, ConsequencesFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return ds, fmt.Errorf("read consequences: %w", err)
	}
	ds.Consequences = mapRows(consequences, consequenceRow.toDomain)

	locations, err := readRows[locationRow](ctx, filepath.Join(s.dir, LocationsFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return ds, fmt.Errorf("read locations: %w", err)
	}
	ds.Locations = mapRows(locations, locationRow.toDomain)

	s.logger.Info("prepared tables loaded",
		"dir", s.dir,
		"accidents", len(ds.Accidents),
		"consequences", len(ds.Consequences),
		"locations", len(ds.Locations),
	)
	return ds, nil
}

func mapRows[S, T any](in []S, fn func(S) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func writeRows[T any](ctx context.Context, path string, rows []T) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(T), parallelism)
	if err != nil {
		fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = pqformat.CompressionCodec_SNAPPY

	for i := range rows {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				fw.Close()
				return err
			}
		}
		if err := pw.Write(rows[i]); err != nil {
			fw.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return fw.Close()
}

func readRows[T any](ctx context.Context, path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(T), parallelism)
	if err != nil {
		return nil, fmt.Errorf("create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := make([]T, int(pr.GetNumRows()))
	if len(rows) == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
