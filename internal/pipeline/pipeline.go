// Package pipeline runs the single-pass load job: extract the raw tables, parse
// them into a dataset and hand the dataset to every configured sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

// Extractor produces a parsed dataset.
type Extractor interface {
	Extract(ctx context.Context) (domain.Dataset, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context) (domain.Dataset, error)

// Extract calls f(ctx).
func (f ExtractorFunc) Extract(ctx context.Context) (domain.Dataset, error) {
	return f(ctx)
}

// Sink receives the complete dataset.
type Sink interface {
	Name() string
	Write(ctx context.Context, ds domain.Dataset) error
}

const (
	defaultAttempts   = 3
	defaultBackoff    = 200 * time.Millisecond
	defaultMaxBackoff = 5 * time.Second
)

// Pipeline orchestrates one extract-load run.
type Pipeline struct {
	extractor Extractor
	sinks     []Sink
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration
}

// New creates a Pipeline writing to sinks in order.
func New(e Extractor, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:  e,
		sinks:      sinks,
		logger:     logger,
		metrics:    metrics,
		attempts:   defaultAttempts,
		backoff:    defaultBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no load has completed yet")
	}
	return nil
}

// Run extracts the dataset once and writes it to every sink. A sink that keeps
// failing after its retries aborts the run; sinks after it are not attempted.
func (p *Pipeline) Run(ctx context.Context) (domain.Dataset, error) {
	start := time.Now()
	p.logger.Info("pipeline started", "sinks", len(p.sinks))
	p.metrics.JobRunning.Set(1)
	defer p.metrics.JobRunning.Set(0)

	ds, err := p.run(ctx)
	if err != nil {
		p.metrics.JobFailures.WithLabelValues("load").Inc()
		return ds, err
	}

	elapsed := time.Since(start)
	p.metrics.JobDuration.WithLabelValues("load").Observe(elapsed.Seconds())
	p.ready.Store(true)
	p.logger.Info("pipeline finished",
		"accidents", len(ds.Accidents),
		"consequences", len(ds.Consequences),
		"locations", len(ds.Locations),
		"duration", elapsed,
	)
	return ds, nil
}

func (p *Pipeline) run(ctx context.Context) (domain.Dataset, error) {
	ds, err := p.extractor.Extract(ctx)
	if err != nil {
		return ds, fmt.Errorf("extract: %w", err)
	}
	if ds.Empty() {
		return ds, fmt.Errorf("extract: %w", domain.ErrEmptyTable)
	}

	for _, s := range p.sinks {
		if err := p.write(ctx, s, ds); err != nil {
			return ds, fmt.Errorf("sink %s: %w", s.Name(), err)
		}
		p.metrics.RowsWritten.WithLabelValues(s.Name()).Add(float64(len(ds.Accidents)))
	}
	return ds, nil
}

// write retries a failing sink with exponential backoff.
func (p *Pipeline) write(ctx context.Context, s Sink, ds domain.Dataset) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = s.Write(ctx, ds); err == nil {
			p.logger.Info("sink written", "sink", s.Name(), "records", len(ds.Accidents))
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		p.logger.Error("sink write failed", "sink", s.Name(), "attempt", attempt, "error", err)
		if attempt == p.attempts {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return err
}
