package di

import (
	"fmt"

	"github.com/aristath/indexboard/internal/cache"
	"github.com/aristath/indexboard/internal/config"
	"github.com/aristath/indexboard/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the databases the configuration needs
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if cfg.DataSource == config.SourceSQLite {
		pricesDB, err := database.New(database.Config{
			Path:    cfg.PricesDBPath,
			Profile: database.ProfileReadOnly,
			Name:    "prices",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open price store: %w", err)
		}
		container.PricesDB = pricesDB
		log.Info().Str("path", cfg.PricesDBPath).Msg("Price store opened read-only")
	}

	if cfg.CacheBackend == cache.BackendSQLite {
		cacheDB, err := database.New(database.Config{
			Path:    cfg.CacheDBPath,
			Profile: database.ProfileCache,
			Name:    "cache",
		})
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		container.CacheDB = cacheDB

		if err := cacheDB.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate cache database: %w", err)
		}
		log.Info().Str("path", cfg.CacheDBPath).Msg("Cache database ready")
	}

	return container, nil
}
