// Package config centralizes process configuration. Values come from the
// environment (optionally seeded from .env files); command-line flags bound
// with BindFlags override them.
//
// For tests, prefer LoadFrom to keep them hermetic:
//
//	cfg, err := config.LoadFrom(map[string]string{"DB_DRIVER": "sqlite"})
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DefaultEnvFiles are read by Load when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

// DatabaseOptions selects the storage backend. URL wins when set; for
// postgres the discrete parts are used otherwise.
type DatabaseOptions struct {
	Driver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"hiring"`
}

// DSN returns the connection string for the configured driver.
func (d DatabaseOptions) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	switch d.Driver {
	case "sqlite":
		return "hiring.db"
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Name, d.Password)
	default:
		return ""
	}
}

// MetricsOptions selects the metrics backend.
type MetricsOptions struct {
	Backend          string `env:"METRICS_BACKEND" envDefault:"none"`
	PushgatewayURL   string `env:"PUSHGATEWAY_URL"`
	Job              string `env:"METRICS_JOB" envDefault:"hiring_etl"`
	DatadogAddr      string `env:"DD_AGENT_ADDR" envDefault:"127.0.0.1:8125"`
	DatadogNamespace string `env:"DD_NAMESPACE" envDefault:"hiring."`
}

// Config holds all process configuration.
type Config struct {
	DB      DatabaseOptions
	Metrics MetricsOptions

	// BatchLimit is the maximum number of rows accepted per submission.
	BatchLimit int `env:"BATCH_LIMIT" envDefault:"1000"`
	// ChunkSize is the number of records written per transaction.
	ChunkSize int    `env:"CHUNK_SIZE" envDefault:"1000"`
	Delimiter string `env:"CSV_DELIMITER" envDefault:","`
	// Workers bounds concurrent file ingestion in folder loads.
	Workers int `env:"WORKERS" envDefault:"3"`

	HTTPAddr       string `env:"HTTP_ADDR" envDefault:"localhost:8000"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the existing files among envFiles (DefaultEnvFiles when none
// are given) into the process environment, then parses it. Variables that
// are already set are not overridden by the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("config: load env files: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses cfg from environ only; the process environment is not read.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// BindFlags registers flags on fs whose defaults are the current values, so
// explicit flags override the environment.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.DB.Driver, "driver", c.DB.Driver, "storage backend: sqlite, postgres, mssql or mysql")
	fs.StringVar(&c.DB.URL, "dsn", c.DB.URL, "database connection string (DATABASE_URL)")
	fs.IntVar(&c.BatchLimit, "batch-limit", c.BatchLimit, "maximum rows per submission")
	fs.IntVar(&c.ChunkSize, "chunk-size", c.ChunkSize, "records written per transaction")
	fs.StringVar(&c.Delimiter, "delimiter", c.Delimiter, `CSV field delimiter ("tab" or "\t" for tab)`)
	fs.IntVar(&c.Workers, "workers", c.Workers, "files ingested concurrently by load")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "silent, error, warn, info or debug")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")
	fs.StringVar(&c.Metrics.Backend, "metrics", c.Metrics.Backend, "metrics backend: none, pushgateway, prometheus or datadog")
}

// Comma returns the delimiter as a rune. Call Validate first.
func (c *Config) Comma() rune {
	switch c.Delimiter {
	case "tab", `\t`:
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case "sqlite", "postgres", "mssql", "mysql":
		if c.DB.DSN() == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for driver %q", c.DB.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid DB_DRIVER=%q (expected sqlite|postgres|mssql|mysql)", c.DB.Driver))
	}

	if c.BatchLimit <= 0 {
		errs = append(errs, fmt.Errorf("BATCH_LIMIT must be positive, got %d", c.BatchLimit))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if err := validDelimiter(c.Delimiter); err != nil {
		errs = append(errs, err)
	}

	switch c.Metrics.Backend {
	case "none", "prometheus":
	case "pushgateway":
		if c.Metrics.PushgatewayURL == "" {
			errs = append(errs, errors.New("PUSHGATEWAY_URL is required when METRICS_BACKEND=pushgateway"))
		}
	case "datadog":
		if c.Metrics.DatadogAddr == "" {
			errs = append(errs, errors.New("DD_AGENT_ADDR is required when METRICS_BACKEND=datadog"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid METRICS_BACKEND=%q (expected none|pushgateway|prometheus|datadog)", c.Metrics.Backend))
	}

	return errors.Join(errs...)
}

func validDelimiter(d string) error {
	if d == "tab" || d == `\t` {
		return nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return fmt.Errorf("CSV_DELIMITER must be a single character, got %q", d)
	}
	if strings.ContainsAny(d, "\"\r\n") || d == string(utf8.RuneError) {
		return fmt.Errorf("CSV_DELIMITER %q is not allowed", d)
	}
	return nil
}
