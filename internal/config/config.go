// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/indexboard/internal/cache"
	"github.com/aristath/indexboard/internal/domain"
	"github.com/aristath/indexboard/internal/modules/prices"
	"github.com/aristath/indexboard/internal/utils"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Data source backends
const (
	SourceSQLite  = "sqlite"
	SourceParquet = "parquet"
)

// Config holds application configuration.
// Values come from defaults, then an optional YAML file named by CONFIG_PATH,
// then environment variables (a .env file is loaded first if present).
type Config struct {
	DataDir      string `yaml:"data_dir"`     // Base directory for databases and snapshots (always absolute)
	DataSource   string `yaml:"data_source"`  // sqlite or parquet
	PricesDBPath string `yaml:"prices_db"`    // Read-only price store
	ParquetDir   string `yaml:"parquet_dir"`  // Snapshot directory for the parquet source
	IndexTicker  string `yaml:"index_ticker"` // e.g. ^GDAXI
	IndexName    string `yaml:"index_name"`   // Display name, e.g. DAX
	DateFloor    string `yaml:"date_floor"`   // YYYY-MM-DD; older rows are never loaded
	SMAPeriod    int    `yaml:"sma_period"`   // Moving average overlay on candlestick charts, 0 disables

	Tables prices.Tables `yaml:"tables"`

	CacheBackend       string        `yaml:"cache_backend"` // memory, sqlite or none
	CacheDBPath        string        `yaml:"cache_db"`
	CacheTTL           time.Duration `yaml:"cache_ttl"` // 0 keeps entries until invalidated
	CleanupSchedule    string        `yaml:"cleanup_schedule"`
	CheckpointSchedule string        `yaml:"checkpoint_schedule"`

	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`
	Port        int      `yaml:"port"`
	DevMode     bool     `yaml:"dev_mode"`

	floor time.Time
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		DataDir:            "./data",
		DataSource:         SourceSQLite,
		IndexTicker:        "^GDAXI",
		IndexName:          "DAX",
		DateFloor:          "2000-01-01",
		SMAPeriod:          0,
		Tables:             prices.DefaultTables(),
		CacheBackend:       cache.BackendMemory,
		CacheTTL:           time.Hour,
		CleanupSchedule:    "0 */15 * * * *", // Every 15 minutes
		CheckpointSchedule: "0 0 * * * *",    // Hourly
		CORSOrigins:        []string{"*"},
		LogLevel:           "info",
		Port:               8001,
	}
}

// Load builds the configuration and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path; keys absent from the file keep their value
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &domain.ConfigError{Op: "load config", Msg: "cannot read " + path, Err: err}
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &domain.ConfigError{Op: "load config", Msg: "cannot parse " + path, Err: err}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.DataSource = getEnv("DATA_SOURCE", c.DataSource)
	c.PricesDBPath = getEnv("PRICES_DB_PATH", c.PricesDBPath)
	c.ParquetDir = getEnv("PARQUET_DIR", c.ParquetDir)
	c.IndexTicker = getEnv("INDEX_TICKER", c.IndexTicker)
	c.IndexName = getEnv("INDEX_NAME", c.IndexName)
	c.DateFloor = getEnv("DATE_FLOOR", c.DateFloor)
	c.SMAPeriod = getEnvAsInt("SMA_PERIOD", c.SMAPeriod)

	c.Tables.Index = getEnv("INDEX_TABLE", c.Tables.Index)
	c.Tables.Constituents = getEnv("CONSTITUENTS_TABLE", c.Tables.Constituents)
	c.Tables.Metadata = getEnv("METADATA_TABLE", c.Tables.Metadata)

	c.CacheBackend = getEnv("CACHE_BACKEND", c.CacheBackend)
	c.CacheDBPath = getEnv("CACHE_DB_PATH", c.CacheDBPath)
	c.CacheTTL = getEnvAsDuration("CACHE_TTL", c.CacheTTL)
	c.CleanupSchedule = getEnv("CACHE_CLEANUP_SCHEDULE", c.CleanupSchedule)
	c.CheckpointSchedule = getEnv("WAL_CHECKPOINT_SCHEDULE", c.CheckpointSchedule)

	if origins := utils.ParseCSV(os.Getenv("CORS_ALLOWED_ORIGINS")); origins != nil {
		c.CORSOrigins = origins
	}
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnvAsInt("PORT", c.Port)
	c.DevMode = getEnvAsBool("DEV_MODE", c.DevMode)
}

// resolvePaths makes DataDir absolute and places unset files inside it
func (c *Config) resolvePaths() error {
	absDataDir, err := filepath.Abs(c.DataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	c.DataDir = absDataDir

	if c.PricesDBPath == "" {
		c.PricesDBPath = filepath.Join(c.DataDir, "prices.db")
	}
	if c.CacheDBPath == "" {
		c.CacheDBPath = filepath.Join(c.DataDir, "cache.db")
	}
	if c.ParquetDir == "" {
		c.ParquetDir = filepath.Join(c.DataDir, "snapshot")
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return domain.NewConfigError("validate config", "port %d out of range", c.Port)
	}
	if c.IndexTicker == "" {
		return domain.NewConfigError("validate config", "index ticker is required")
	}
	if err := c.Tables.Validate(); err != nil {
		return err
	}

	floor, err := domain.ParseDate(c.DateFloor)
	if err != nil {
		return &domain.ConfigError{Op: "validate config", Msg: "invalid date floor " + c.DateFloor, Err: err}
	}
	c.floor = floor

	switch c.DataSource {
	case SourceSQLite, SourceParquet:
	default:
		return domain.NewConfigError("validate config", "unknown data source %q", c.DataSource)
	}

	switch c.CacheBackend {
	case cache.BackendMemory, cache.BackendSQLite, cache.BackendNone:
	default:
		return domain.NewConfigError("validate config", "unknown cache backend %q", c.CacheBackend)
	}

	if c.CacheTTL < 0 {
		return domain.NewConfigError("validate config", "cache ttl must not be negative")
	}
	if c.SMAPeriod < 0 {
		return domain.NewConfigError("validate config", "sma period must not be negative")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, schedule := range map[string]string{
		"cleanup":    c.CleanupSchedule,
		"checkpoint": c.CheckpointSchedule,
	} {
		if _, err := parser.Parse(schedule); err != nil {
			return &domain.ConfigError{Op: "validate config", Msg: "invalid " + name + " schedule " + strconv.Quote(schedule), Err: err}
		}
	}

	return nil
}

// Floor returns the parsed date floor. Valid after Validate.
func (c *Config) Floor() time.Time {
	return c.floor
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
