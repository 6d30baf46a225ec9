package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), "test")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 100, cfg.Cache.MaxEntries)
	assert.Equal(t, 1800, cfg.Cache.TTLSeconds)
	assert.Equal(t, 10, cfg.RateLimit.PerMinute)
	assert.Equal(t, 100, cfg.RateLimit.PerHour)
	assert.Equal(t, 20, cfg.Memory.MaxTurns)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "test", cfg.Version)
	assert.False(t, cfg.LLM.FallbackAvailable())
}

func TestLoadFrom_YAMLOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "9000"
log_level: debug
cache:
  backend: memory
  max_entries: 50
  ttl_seconds: 600
rate_limit:
  per_minute: 5
  per_hour: 50
database:
  type: sqlserver
  host: db.internal
  port: 1433
`)

	cfg, err := LoadFrom(path, "test")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)
	assert.Equal(t, 600, cfg.Cache.TTLSeconds)
	assert.Equal(t, 5, cfg.RateLimit.PerMinute)
	assert.Equal(t, "sqlserver", cfg.Database.Type)
	assert.Equal(t, 1433, cfg.Database.Port)
}

func TestLoadFrom_RejectsBadBackend(t *testing.T) {
	path := writeConfig(t, `
cache:
  backend: memcached
`)
	_, err := LoadFrom(path, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache backend")
}

func TestLoadFrom_RejectsNonPositiveCacheSize(t *testing.T) {
	t.Setenv("CACHE_MAX_ENTRIES", "0")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache max entries")
}

func TestLoadFrom_RejectsNonPositiveCacheTTL(t *testing.T) {
	path := writeConfig(t, `
cache:
  ttl_seconds: -60
`)
	_, err := LoadFrom(path, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache ttl")
}

func TestLoadFrom_RejectsInvertedLimits(t *testing.T) {
	path := writeConfig(t, `
rate_limit:
  per_minute: 500
  per_hour: 100
`)
	_, err := LoadFrom(path, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per-minute limit")
}

func TestFallbackAvailable(t *testing.T) {
	c := LLMConfig{FallbackModel: "claude-sonnet-4-20250514", FallbackAPIKey: "key"}
	assert.True(t, c.FallbackAvailable())

	c.FallbackAPIKey = ""
	assert.False(t, c.FallbackAvailable())
}
