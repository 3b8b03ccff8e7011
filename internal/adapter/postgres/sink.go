// Package postgres writes accidents into a PostGIS table so they can be queried
// spatially next to other layers.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/geo"
)

const createTable = `
CREATE TABLE IF NOT EXISTS accidents (
    p1          TEXT PRIMARY KEY,
    accident_on DATE,
    p2b         INTEGER,
    region      TEXT,
    p6          INTEGER,
    p7          INTEGER,
    p8a         INTEGER,
    p10         INTEGER,
    p11         INTEGER,
    p16         INTEGER,
    p19         INTEGER,
    p28         INTEGER,
    p36         INTEGER,
    location    geometry(Point, 4326)
)`

// Without coordinates ST_MakePoint gets NULLs and the location stays NULL.
const upsertAccident = `
INSERT INTO accidents (
    p1, accident_on, p2b, region, p6, p7, p8a, p10, p11, p16, p19, p28, p36, location
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
    ST_SetSRID(ST_MakePoint($14, $15), 4326)
)
ON CONFLICT (p1) DO UPDATE SET
    accident_on = EXCLUDED.accident_on,
    p2b = EXCLUDED.p2b,
    region = EXCLUDED.region,
    p6 = EXCLUDED.p6,
    p7 = EXCLUDED.p7,
    p8a = EXCLUDED.p8a,
    p10 = EXCLUDED.p10,
    p11 = EXCLUDED.p11,
    p16 = EXCLUDED.p16,
    p19 = EXCLUDED.p19,
    p28 = EXCLUDED.p28,
    p36 = EXCLUDED.p36,
    location = EXCLUDED.location`

// Sink upserts accidents keyed by p1. It implements pipeline.Sink.
type Sink struct {
	pool      *pgxpool.Pool
	batchSize int
	logger    *slog.Logger
}

// Connect opens a connection pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string, batchSize int, logger *slog.Logger) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Sink{pool: pool, batchSize: batchSize, logger: logger}, nil
}

// Name identifies the sink.
func (s *Sink) Name() string { return "postgis" }

// Write creates the table if needed and upserts every accident in one transaction.
func (s *Sink) Write(ctx context.Context, ds domain.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	for _, b := range batches(ds, s.batchSize) {
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("upsert accidents: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("accidents upserted", "rows", len(ds.Accidents))
	return nil
}

// Close releases the pool.
func (s *Sink) Close() {
	s.pool.Close()
}

// batches queues one upsert per accident, size statements per batch. Points come
// from the projected locations; accidents without one get a NULL location.
func batches(ds domain.Dataset, size int) []*pgx.Batch {
	located := make(map[string]geo.Point, len(ds.Locations))
	for _, p := range geo.MakeGeo(ds.Accidents, ds.Locations) {
		located[p.Accident.ID] = p
	}

	var out []*pgx.Batch
	var b *pgx.Batch
	for i, a := range ds.Accidents {
		if i%size == 0 {
			b = &pgx.Batch{}
			out = append(out, b)
		}
		var lon, lat *float64
		if p, ok := located[a.ID]; ok {
			lon, lat = &p.Lon, &p.Lat
		}
		b.Queue(upsertAccident, accidentArgs(a, lon, lat)...)
	}
	return out
}

func accidentArgs(a domain.Accident, lon, lat *float64) []any {
	var date any
	if !a.Date.IsZero() {
		date = a.Date
	}
	return []any{
		a.ID, date, a.Time, a.Region,
		a.Kind, a.Collision, a.Animal, a.Cause, a.Alcohol,
		a.Surface, a.Visibility, a.Direction, a.RoadType,
		lon, lat,
	}
}
