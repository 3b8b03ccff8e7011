package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/archive"
	"github.com/couchcryptid/accident-data-etl/internal/adapter/parquet"
	"github.com/couchcryptid/accident-data-etl/internal/adapter/s3"
	"github.com/couchcryptid/accident-data-etl/internal/adapter/tiles"
	"github.com/couchcryptid/accident-data-etl/internal/chart"
	"github.com/couchcryptid/accident-data-etl/internal/config"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
	"github.com/couchcryptid/accident-data-etl/internal/pipeline"
)

// app carries what every command shares once the configuration is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics

	// newMetrics is swapped in tests, which cannot register collectors twice.
	newMetrics func() *observability.Metrics
}

func newApp() *app {
	return &app{v: viper.New(), newMetrics: observability.NewMetrics}
}

// flagKeys binds persistent flags to their config keys.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"log-format":   "log_format",
	"output-dir":   "output_dir",
	"archive":      "archive_path",
	"prepared-dir": "prepared_dir",
	"region":       "region",
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "accidents",
		Short:         "Analyse Czech police traffic accident exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "report parse details and archive progress")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (json, text)")
	pf.String("output-dir", "", "directory for figures and exported tables")
	pf.String("archive", "", "police export archive (zip)")
	pf.String("prepared-dir", "", "directory of the prepared parquet tables")
	pf.String("region", "", "region code used by the map figures")
	for flag, key := range flagKeys {
		cobra.CheckErr(a.v.BindPFlag(key, pf.Lookup(flag)))
	}

	root.AddCommand(
		newCurvesCmd(a),
		newStationsCmd(a),
		newLoadCmd(a),
		newPlotCmd(a),
		newReportCmd(a),
		newGeoCmd(a),
		newGenmockCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg)
	a.metrics = a.newMetrics()
	return nil
}

// progress is where archive loading draws its progress bars.
func (a *app) progress() io.Writer {
	if a.verbose {
		return os.Stderr
	}
	return io.Discard
}

func (a *app) extractor() (*pipeline.ArchiveExtractor, error) {
	loader, err := archive.NewLoader(a.cfg.ArchiveEncoding, a.progress(), a.logger, a.metrics)
	if err != nil {
		return nil, err
	}
	return pipeline.NewArchiveExtractor(loader, a.cfg.ArchivePath, a.verbose, a.logger, a.metrics), nil
}

// dataset reads the prepared tables, falling back to parsing the archive when
// nothing has been loaded yet.
func (a *app) dataset(ctx context.Context) (domain.Dataset, error) {
	store := parquet.NewStore(a.cfg.PreparedDir, a.logger)
	if store.Exists() {
		return store.Load(ctx)
	}
	a.logger.Info("no prepared tables, reading archive", "archive", a.cfg.ArchivePath)
	ex, err := a.extractor()
	if err != nil {
		return domain.Dataset{}, err
	}
	return ex.Extract(ctx)
}

func (a *app) renderer() *chart.Renderer {
	var basemaps chart.BasemapSource
	if a.cfg.BasemapEnabled {
		basemaps = tiles.NewClient(a.cfg.BasemapURL, a.cfg.HTTPTimeout, a.cfg.BasemapCacheSize, a.metrics, a.logger)
	}
	return chart.NewRenderer(a.cfg.OutputDir, basemaps, a.metrics, a.logger)
}

// publish uploads rendered files when an artifact bucket is configured.
func (a *app) publish(ctx context.Context, files ...string) error {
	if a.cfg.S3Bucket == "" || len(files) == 0 {
		return nil
	}
	uploader, err := s3.NewUploader(ctx, a.cfg.S3Region, a.cfg.S3Bucket, a.cfg.S3Prefix, a.metrics, a.logger)
	if err != nil {
		return err
	}
	keys, err := uploader.Upload(ctx, files...)
	if err != nil {
		return err
	}
	a.logger.Info("artifacts uploaded", "bucket", a.cfg.S3Bucket, "run_id", uploader.RunID(), "count", len(keys))
	return nil
}
