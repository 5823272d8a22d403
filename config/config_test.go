package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnvVar, "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.Equal(t, LockLocal, cfg.Lock.Backend)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, time.Duration(0), cfg.Streak.MinInterval)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studyhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  environment: production
http:
  addr: ":9000"
store:
  backend: postgres
  database_url: postgres://file/db
redis:
  enabled: true
  stats_ttl: 1m
  breaker_failures: 3
streak:
  min_interval: 2h
`), 0o600))

	t.Setenv(FileEnvVar, path)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("LOCK_BACKEND", "REDIS")
	t.Setenv("REDIS_BREAKER_OPEN_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://file/db", cfg.Store.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.Redis.StatsTTL)
	assert.Equal(t, 2*time.Hour, cfg.Streak.MinInterval)
	assert.Equal(t, LockRedis, cfg.Lock.Backend)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 3, cfg.Redis.BreakerFailures)
	assert.Equal(t, 2, cfg.Redis.BreakerSuccesses)
	assert.Equal(t, 5*time.Second, cfg.Redis.BreakerOpenTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(FileEnvVar, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, "STORE_BACKEND"},
		{"postgres without url", func(c *Config) { c.Store.Backend = BackendPostgres }, "DATABASE_URL"},
		{"redis lock without redis", func(c *Config) { c.Lock.Backend = LockRedis }, "REDIS_ENABLED"},
		{"negative interval", func(c *Config) { c.Streak.MinInterval = -time.Second }, "STREAK_MIN_INTERVAL"},
		{"sample ratio", func(c *Config) { c.Observability.TracingSampleRatio = 2 }, "TRACING_SAMPLE_RATIO"},
		{"log format", func(c *Config) { c.Observability.LogFormat = "xml" }, "LOG_FORMAT"},
		{"breaker threshold", func(c *Config) { c.Redis.Enabled = true; c.Redis.BreakerFailures = 0 }, "REDIS_BREAKER_FAILURES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
