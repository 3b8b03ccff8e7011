package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds all job settings. Values come from defaults, an optional config
// file, environment variables and bound CLI flags, in increasing priority.
type Config struct {
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"-"`

	// Inputs and outputs.
	OutputDir       string        `mapstructure:"output_dir"`
	ArchivePath     string        `mapstructure:"archive_path"`
	PreparedDir     string        `mapstructure:"prepared_dir"`
	ArchiveEncoding string        `mapstructure:"archive_encoding"`
	StationsURL     string        `mapstructure:"stations_url"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`

	// Analysis knobs.
	Region       string `mapstructure:"region"`
	ClusterCount int    `mapstructure:"cluster_count"`

	// Basemap tiles behind map panels.
	BasemapEnabled   bool   `mapstructure:"basemap_enabled"`
	BasemapURL       string `mapstructure:"basemap_url"`
	BasemapCacheSize int    `mapstructure:"basemap_cache_size"`

	// Sinks.
	KafkaEnabled bool     `mapstructure:"kafka_enabled"`
	KafkaBrokers []string `mapstructure:"-"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
	PostgresDSN  string   `mapstructure:"postgres_dsn"`
	S3Bucket     string   `mapstructure:"s3_bucket"`
	S3Region     string   `mapstructure:"s3_region"`
	S3Prefix     string   `mapstructure:"s3_prefix"`
	BatchSize    int      `mapstructure:"-"`

	// Mapbox reverse geocoding of cluster centroids.
	MapboxToken     string        `mapstructure:"mapbox_token"`
	MapboxEnabled   bool          `mapstructure:"-"`
	MapboxTimeout   time.Duration `mapstructure:"mapbox_timeout"`
	MapboxCacheSize int           `mapstructure:"mapbox_cache_size"`
}

var defaults = map[string]any{
	"log_level":          "info",
	"log_format":         "json",
	"http_addr":          ":8080",
	"output_dir":         "out",
	"archive_path":       "data/data.zip",
	"prepared_dir":       "data",
	"archive_encoding":   "windows-1250",
	"stations_url":       "https://ehw.fit.vutbr.cz/izv/st_zemepis_cz",
	"http_timeout":       "30s",
	"region":             "JHM",
	"cluster_count":      10,
	"basemap_enabled":    false,
	"basemap_url":        "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	"basemap_cache_size": 256,
	"kafka_enabled":      false,
	"kafka_brokers":      "localhost:9092",
	"kafka_topic":        "accidents",
	"postgres_dsn":       "",
	"s3_bucket":          "",
	"s3_region":          "eu-central-1",
	"s3_prefix":          "accidents",
	"mapbox_token":       "",
	"mapbox_timeout":     "5s",
	"mapbox_cache_size":  1000,
}

// Load reads configuration into a fresh viper instance. When path is empty only
// defaults and the environment are consulted.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith reads configuration through v, which may already carry bound flags.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdownTimeout

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	cfg.BatchSize = batchSize

	if raw, ok := unsetInEnv(v, "shutdown_timeout"); ok {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
		}
		cfg.ShutdownTimeout = d
	}
	if raw, ok := unsetInEnv(v, "batch_size"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			return nil, errors.New("invalid BATCH_SIZE: must be 1-1000")
		}
		cfg.BatchSize = n
	}

	cfg.KafkaBrokers = sharedcfg.ParseBrokers(v.GetString("kafka_brokers"))

	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if v.IsSet("mapbox_enabled") {
		cfg.MapboxEnabled = v.GetBool("mapbox_enabled")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// unsetInEnv returns the value a config file or flag gives key when its
// environment variable is empty. The shared parsers only read the environment.
func unsetInEnv(v *viper.Viper, key string) (string, bool) {
	if os.Getenv(strings.ToUpper(key)) != "" || !v.IsSet(key) {
		return "", false
	}
	return v.GetString(key), true
}

func (c *Config) validate() error {
	switch {
	case c.HTTPTimeout <= 0:
		return errors.New("HTTP_TIMEOUT must be positive")
	case c.MapboxTimeout <= 0:
		return errors.New("MAPBOX_TIMEOUT must be positive")
	case c.MapboxCacheSize <= 0:
		return errors.New("MAPBOX_CACHE_SIZE must be positive")
	case c.BasemapCacheSize <= 0:
		return errors.New("BASEMAP_CACHE_SIZE must be positive")
	case c.ClusterCount <= 0:
		return errors.New("CLUSTER_COUNT must be positive")
	case c.OutputDir == "":
		return errors.New("OUTPUT_DIR is required")
	case c.KafkaEnabled && len(c.KafkaBrokers) == 0:
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	case c.KafkaEnabled && c.KafkaTopic == "":
		return errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	case c.MapboxEnabled && c.MapboxToken == "":
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}
