package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "^GDAXI", cfg.IndexTicker)
	assert.Equal(t, "DAX", cfg.IndexName)
	assert.Equal(t, "Index_GER", cfg.Tables.Index)
	assert.Equal(t, "Equity_Prices_GER", cfg.Tables.Constituents)
	assert.Equal(t, "Index_DAX_Metadata", cfg.Tables.Metadata)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Floor())

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	dataDir, err := filepath.EvalSymlinks(filepath.Dir(cfg.DataDir))
	require.NoError(t, err)
	assert.Equal(t, resolved, dataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "prices.db"), cfg.PricesDBPath)
	assert.Equal(t, filepath.Join(cfg.DataDir, "cache.db"), cfg.CacheDBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("INDEX_TICKER", "^STOXX50E")
	t.Setenv("INDEX_TABLE", "Index_EU")
	t.Setenv("DATE_FLOOR", "2010-06-01")
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("CACHE_TTL", "10m")
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "^STOXX50E", cfg.IndexTicker)
	assert.Equal(t, "Index_EU", cfg.Tables.Index)
	assert.Equal(t, time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC), cfg.Floor())
	assert.Equal(t, "sqlite", cfg.CacheBackend)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "indexboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
index_name: "DAX 40"
sma_period: 12
cache_ttl: 30m
tables:
  metadata: DAX_Members
port: 7000
`), 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "DAX 40", cfg.IndexName)
	assert.Equal(t, 12, cfg.SMAPeriod)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "DAX_Members", cfg.Tables.Metadata)
	// Keys absent from the file keep their defaults
	assert.Equal(t, "Index_GER", cfg.Tables.Index)
	// Environment wins over the file
	assert.Equal(t, 7100, cfg.Port)
}

func TestLoad_MissingYAML(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/indexboard.yaml")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"index ticker", func(c *Config) { c.IndexTicker = "" }},
		{"table name", func(c *Config) { c.Tables.Constituents = "Equity Prices" }},
		{"date floor", func(c *Config) { c.DateFloor = "01/01/2000" }},
		{"data source", func(c *Config) { c.DataSource = "csv" }},
		{"cache backend", func(c *Config) { c.CacheBackend = "redis" }},
		{"cache ttl", func(c *Config) { c.CacheTTL = -time.Second }},
		{"sma period", func(c *Config) { c.SMAPeriod = -1 }},
		{"schedule", func(c *Config) { c.CleanupSchedule = "every now and then" }},
	}

	require.NoError(t, Defaults().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsConfigError(err))
		})
	}
}
