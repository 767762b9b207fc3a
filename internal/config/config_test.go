package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "hiring.db", cfg.DB.DSN())
	assert.Equal(t, 1000, cfg.BatchLimit)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, ',', cfg.Comma())
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "localhost:8000", cfg.HTTPAddr)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "none", cfg.Metrics.Backend)
	assert.Equal(t, "hiring_etl", cfg.Metrics.Job)
	require.NoError(t, cfg.Validate())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFrom(map[string]string{
		"DB_DRIVER":     "postgres",
		"DB_HOST":       "db",
		"DB_USER":       "etl",
		"DB_PASSWORD":   "secret",
		"DB_NAME":       "hr",
		"CHUNK_SIZE":    "250",
		"CSV_DELIMITER": "tab",
		"WORKERS":       "8",
	})
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5432 user=etl dbname=hr password=secret sslmode=disable", cfg.DB.DSN())
	assert.Equal(t, 250, cfg.ChunkSize)
	assert.Equal(t, '\t', cfg.Comma())
	assert.Equal(t, 8, cfg.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFrom_DatabaseURLWins(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFrom(map[string]string{
		"DB_DRIVER":    "postgres",
		"DATABASE_URL": "postgres://u:p@h/db",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", cfg.DB.DSN())
}

func TestLoadFrom_BadInteger(t *testing.T) {
	t.Parallel()
	_, err := LoadFrom(map[string]string{"BATCH_LIMIT": "lots"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}, "invalid DB_DRIVER"},
		{"mssql needs url", map[string]string{"DB_DRIVER": "mssql"}, "DATABASE_URL is required"},
		{"zero batch limit", map[string]string{"BATCH_LIMIT": "0"}, "BATCH_LIMIT must be positive"},
		{"negative chunk", map[string]string{"CHUNK_SIZE": "-5"}, "CHUNK_SIZE must be positive"},
		{"zero workers", map[string]string{"WORKERS": "0"}, "WORKERS must be positive"},
		{"multi-char delimiter", map[string]string{"CSV_DELIMITER": ";;"}, "single character"},
		{"quote delimiter", map[string]string{"CSV_DELIMITER": `"`}, "not allowed"},
		{"pushgateway without url", map[string]string{"METRICS_BACKEND": "pushgateway"}, "PUSHGATEWAY_URL is required"},
		{"unknown metrics", map[string]string{"METRICS_BACKEND": "statsd"}, "invalid METRICS_BACKEND"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadFrom(tt.env)
			require.NoError(t, err)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_JoinsAllProblems(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFrom(map[string]string{"DB_DRIVER": "x", "WORKERS": "0"})
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid DB_DRIVER")
	assert.Contains(t, err.Error(), "WORKERS must be positive")
}

func TestBindFlags_FlagsOverrideEnv(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFrom(map[string]string{"DB_DRIVER": "mysql", "DATABASE_URL": "u:p@/hr", "CHUNK_SIZE": "10"})
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--driver=sqlite", "--dsn", ":memory:", "--log-level=debug"}))

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, ":memory:", cfg.DB.DSN())
	assert.Equal(t, 10, cfg.ChunkSize, "unset flag keeps the env value")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("WORKERS=7\nCSV_DELIMITER=;\n"), 0o600))
	t.Setenv("WORKERS", "")
	require.NoError(t, os.Unsetenv("WORKERS"))
	t.Setenv("CSV_DELIMITER", ";")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, ';', cfg.Comma())
}
