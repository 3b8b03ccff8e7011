package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/accident-data-etl/internal/adapter/parquet"
	"github.com/couchcryptid/accident-data-etl/internal/adapter/postgres"
	"github.com/couchcryptid/accident-data-etl/internal/pipeline"
)

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Parse the archive into the prepared tables and the configured sinks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, closeSinks, err := a.loadPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSinks()

			ds, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("load complete",
				"accidents", len(ds.Accidents),
				"consequences", len(ds.Consequences),
				"locations", len(ds.Locations),
			)
			return nil
		},
	}
}

// loadPipeline wires the archive extractor to the parquet store and whichever
// of Kafka and PostGIS are configured. The returned func closes those sinks.
func (a *app) loadPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	ex, err := a.extractor()
	if err != nil {
		return nil, nil, err
	}

	sinks := []pipeline.Sink{parquet.NewStore(a.cfg.PreparedDir, a.logger)}
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if a.cfg.KafkaEnabled {
		w := kafka.NewWriter(a.cfg, a.logger)
		sinks = append(sinks, w)
		closers = append(closers, func() {
			if err := w.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		})
	}

	if a.cfg.PostgresDSN != "" {
		pg, err := postgres.Connect(ctx, a.cfg.PostgresDSN, a.cfg.BatchSize, a.logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, pg)
		closers = append(closers, pg.Close)
	}

	return pipeline.New(ex, sinks, a.logger, a.metrics), closeAll, nil
}
