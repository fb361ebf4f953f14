package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 25, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.Fetch.RequestTimeout)
	assert.Equal(t, 4.0, cfg.Fetch.RequestsPerSecond)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
storage:
  driver: redis
  redis_addr: localhost:6379
fetch:
  max_attempts: 5
logging:
  format: console
environment: test
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "test", cfg.Environment)
	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FETCH_REQUEST_TIMEOUT", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Fetch.RequestTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "unknown storage driver",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = "sqlite" },
			wantErr: true,
		},
		{
			name:    "postgres without database url",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = "postgres" },
			wantErr: true,
		},
		{
			name: "postgres with database url",
			mutate: func(cfg *Config) {
				cfg.Storage.Driver = "postgres"
				cfg.Storage.DatabaseURL = "postgres://localhost/gallerytab"
			},
		},
		{
			name:    "redis without addr",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = "redis" },
			wantErr: true,
		},
		{
			name:    "zero fetch attempts",
			mutate:  func(cfg *Config) { cfg.Fetch.MaxAttempts = 0 },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown environment",
			mutate:  func(cfg *Config) { cfg.Environment = "staging" },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_INT", "12")
	t.Setenv("X_BAD_INT", "twelve")
	t.Setenv("X_FLOAT", "2.5")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_DUR", "250ms")

	assert.Equal(t, "value", getEnv("X_STR", "fallback"))
	assert.Equal(t, "fallback", getEnv("X_UNSET", "fallback"))
	assert.Equal(t, 12, getEnvInt("X_INT", 1))
	assert.Equal(t, 1, getEnvInt("X_BAD_INT", 1))
	assert.Equal(t, 2.5, getEnvFloat("X_FLOAT", 1.0))
	assert.True(t, getEnvBool("X_BOOL", false))
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("X_DUR", time.Second))
}
