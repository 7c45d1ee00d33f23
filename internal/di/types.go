/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived dependency of the server and is the
 * single source of truth for service instances handed to the HTTP layer.
 */
package di

import (
	"github.com/aristath/indexboard/internal/cache"
	"github.com/aristath/indexboard/internal/database"
	"github.com/aristath/indexboard/internal/modules/charts"
	"github.com/aristath/indexboard/internal/modules/dashboard"
	"github.com/aristath/indexboard/internal/modules/prices"
	"github.com/aristath/indexboard/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: the read-only price store and the optional cache database
 * - Data access: the configured price Source, wrapped by the query cache
 * - Services: chart builder and dashboard service
 * - Scheduler: cron jobs for cache cleanup and WAL checkpoints
 */
type Container struct {
	// Databases (nil when unused by the configuration)
	PricesDB *database.DB // read-only; nil when serving a parquet snapshot
	CacheDB  *database.DB // only with the sqlite cache backend

	// Data access
	Cache        cache.Cache
	PriceSource  prices.Source        // backend without caching
	CachedSource *prices.CachedSource // what the services read through

	// Services
	ChartService     *charts.Service
	DashboardService *dashboard.Service

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	CacheCleanup  *cache.CleanupJob
	WALCheckpoint *scheduler.WALCheckpointJob
}

// Databases returns the opened databases, for health checks and stats
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	if c.PricesDB != nil {
		dbs = append(dbs, c.PricesDB)
	}
	if c.CacheDB != nil {
		dbs = append(dbs, c.CacheDB)
	}
	return dbs
}

// Close closes every opened database
func (c *Container) Close() {
	if c.PricesDB != nil {
		_ = c.PricesDB.Close()
	}
	if c.CacheDB != nil {
		_ = c.CacheDB.Close()
	}
}
