package di

import (
	"fmt"

	"github.com/aristath/indexboard/internal/cache"
	"github.com/aristath/indexboard/internal/config"
	"github.com/aristath/indexboard/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers the maintenance jobs.
// The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	container.Scheduler = scheduler.New(log)
	jobs := &JobInstances{}

	if cfg.CacheBackend != cache.BackendNone {
		jobs.CacheCleanup = cache.NewCleanupJob(container.Cache, log)
		if err := container.Scheduler.AddJob(cfg.CleanupSchedule, jobs.CacheCleanup); err != nil {
			return nil, fmt.Errorf("failed to register cache cleanup job: %w", err)
		}
	}

	if container.CacheDB != nil {
		jobs.WALCheckpoint = scheduler.NewWALCheckpointJob(log, container.CacheDB)
		if err := container.Scheduler.AddJob(cfg.CheckpointSchedule, jobs.WALCheckpoint); err != nil {
			return nil, fmt.Errorf("failed to register WAL checkpoint job: %w", err)
		}
	}

	return jobs, nil
}
