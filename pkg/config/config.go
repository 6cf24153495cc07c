// Package config loads the pipeline configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/convictions/pkg/disposition"
	"github.com/coolbeans/convictions/pkg/geocode"
	"github.com/coolbeans/convictions/pkg/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONVICTIONS_"

// DefaultServerAddr is the default API listen address.
const DefaultServerAddr = ":8080"

// DefaultReadTimeout is the default API read timeout.
const DefaultReadTimeout = 10 * time.Second

// DefaultWriteTimeout is the default API write timeout.
const DefaultWriteTimeout = 30 * time.Second

// DefaultShutdownTimeout bounds graceful API shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// DefaultDatabaseDSN is the default SQLite database file.
const DefaultDatabaseDSN = "convictions.db"

// Config is the complete pipeline configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig overrides the bundled lookup tables. Empty paths use the
// embedded data.
type DataConfig struct {
	Crosswalk string `yaml:"crosswalk"`
	Offenses  string `yaml:"offenses"`
	Repairs   string `yaml:"repairs"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres
	DSN    string `yaml:"dsn"`
}

// GeocoderConfig configures the batch geocoding client.
type GeocoderConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	BatchSize      int           `yaml:"batch_size"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	RateLimit      time.Duration `yaml:"rate_limit"`
	Workers        int           `yaml:"workers"`
}

// EnrichConfig configures statute classification of dispositions.
type EnrichConfig struct {
	Workers int `yaml:"workers"`
}

// ServerConfig configures the lookup API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Logging formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// DefaultConfig returns a configuration with every value set.
func DefaultConfig() *Config {
	geocoder := geocode.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Driver: store.DriverSQLite,
			DSN:    DefaultDatabaseDSN,
		},
		Geocoder: GeocoderConfig{
			BaseURL:        geocoder.BaseURL,
			BatchSize:      geocoder.BatchSize,
			Timeout:        geocoder.Timeout,
			MaxRetries:     geocoder.MaxRetries,
			RetryBaseDelay: geocoder.RetryBaseDelay,
			RateLimit:      geocoder.RateLimit,
			Workers:        geocoder.Workers,
		},
		Enrich: EnrichConfig{
			Workers: disposition.DefaultWorkers,
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays CONVICTIONS_* environment variables.
func (c *Config) ApplyEnv() error {
	texts := []struct {
		name string
		into *string
	}{
		{"DATA_CROSSWALK", &c.Data.Crosswalk},
		{"DATA_OFFENSES", &c.Data.Offenses},
		{"DATA_REPAIRS", &c.Data.Repairs},
		{"DATABASE_DRIVER", &c.Database.Driver},
		{"DATABASE_DSN", &c.Database.DSN},
		{"GEOCODER_BASE_URL", &c.Geocoder.BaseURL},
		{"GEOCODER_API_KEY", &c.Geocoder.APIKey},
		{"SERVER_ADDR", &c.Server.Addr},
		{"LOG_LEVEL", &c.Logging.Level},
		{"LOG_FORMAT", &c.Logging.Format},
	}
	for _, s := range texts {
		if value := os.Getenv(EnvPrefix + s.name); value != "" {
			*s.into = value
		}
	}

	ints := []struct {
		name string
		into *int
	}{
		{"GEOCODER_BATCH_SIZE", &c.Geocoder.BatchSize},
		{"GEOCODER_MAX_RETRIES", &c.Geocoder.MaxRetries},
		{"GEOCODER_WORKERS", &c.Geocoder.Workers},
		{"ENRICH_WORKERS", &c.Enrich.Workers},
	}
	for _, i := range ints {
		value := os.Getenv(EnvPrefix + i.name)
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, i.name, value, err)
		}
		*i.into = n
	}

	if value := os.Getenv(EnvPrefix + "GEOCODER_TIMEOUT"); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %sGEOCODER_TIMEOUT %q: %w", EnvPrefix, value, err)
		}
		c.Geocoder.Timeout = timeout
	}
	return nil
}

// ValidLevels lists the supported logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(store.Drivers, c.Database.Driver) {
		return fmt.Errorf("invalid database driver: %s (valid: %v)", c.Database.Driver, store.Drivers)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn not configured (set %sDATABASE_DSN)", EnvPrefix)
	}

	for _, size := range []struct {
		name  string
		value int
	}{
		{"geocoder.batch_size", c.Geocoder.BatchSize},
		{"geocoder.max_retries", c.Geocoder.MaxRetries},
		{"geocoder.workers", c.Geocoder.Workers},
		{"enrich.workers", c.Enrich.Workers},
	} {
		if size.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", size.name, size.value)
		}
	}
	if c.Geocoder.BatchSize > geocode.DefaultBatchSize {
		return fmt.Errorf("geocoder.batch_size must be at most %d, got %d", geocode.DefaultBatchSize, c.Geocoder.BatchSize)
	}
	if c.Geocoder.Timeout <= 0 {
		return fmt.Errorf("geocoder.timeout must be positive, got %s", c.Geocoder.Timeout)
	}

	if !slices.Contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if c.Logging.Format != FormatConsole && c.Logging.Format != FormatJSON {
		return fmt.Errorf("invalid log format: %s (valid: %s, %s)", c.Logging.Format, FormatConsole, FormatJSON)
	}
	return nil
}

// GeocodeConfig converts the geocoder settings to a client configuration.
func (c *Config) GeocodeConfig() geocode.Config {
	return geocode.Config{
		BaseURL:        c.Geocoder.BaseURL,
		APIKey:         c.Geocoder.APIKey,
		BatchSize:      c.Geocoder.BatchSize,
		Timeout:        c.Geocoder.Timeout,
		MaxRetries:     c.Geocoder.MaxRetries,
		RetryBaseDelay: c.Geocoder.RetryBaseDelay,
		RateLimit:      c.Geocoder.RateLimit,
		Workers:        c.Geocoder.Workers,
	}
}
