package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/indexboard/internal/cache"
	"github.com/aristath/indexboard/internal/config"
	"github.com/aristath/indexboard/internal/modules/charts"
	"github.com/aristath/indexboard/internal/modules/dashboard"
	"github.com/aristath/indexboard/internal/modules/prices"
	"github.com/rs/zerolog"
)

// InitializeServices builds the price source, the cache and the services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.DataSource {
	case config.SourceSQLite:
		repo, err := prices.NewRepository(container.PricesDB.Conn(), cfg.Tables, log)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.CheckSchema(ctx); err != nil {
			return fmt.Errorf("price store schema check failed: %w", err)
		}
		container.PriceSource = repo

	case config.SourceParquet:
		src, err := prices.NewParquetSource(cfg.ParquetDir)
		if err != nil {
			return err
		}
		container.PriceSource = src
		log.Info().Str("dir", cfg.ParquetDir).Msg("Serving parquet snapshot")
	}

	switch cfg.CacheBackend {
	case cache.BackendSQLite:
		container.Cache = cache.NewSQLiteCache(container.CacheDB.Conn())
	case cache.BackendNone:
		container.Cache = cache.NoopCache{}
	default:
		container.Cache = cache.NewMemoryCache()
	}
	container.CachedSource = prices.NewCachedSource(container.PriceSource, container.Cache, cfg.CacheTTL, log)

	container.ChartService = charts.NewService(cfg.SMAPeriod, log)
	container.DashboardService = dashboard.NewService(
		container.CachedSource,
		container.ChartService,
		dashboard.Config{
			IndexTicker: cfg.IndexTicker,
			IndexName:   cfg.IndexName,
			DateFloor:   cfg.Floor(),
		},
		log,
	)

	log.Info().
		Str("source", container.PriceSource.Name()).
		Str("cache", cfg.CacheBackend).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Services initialized")

	return nil
}
