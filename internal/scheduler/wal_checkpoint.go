package scheduler

import (
	"github.com/aristath/indexboard/internal/database"
	"github.com/rs/zerolog"
)

// WALCheckpointJob truncates the write-ahead log of writable databases
type WALCheckpointJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a checkpoint job over the given databases.
// Nil and read-only databases are skipped.
func NewWALCheckpointJob(log zerolog.Logger, databases ...*database.DB) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints every database, continuing past failures
func (j *WALCheckpointJob) Run() error {
	var firstErr error
	checked := 0

	for _, db := range j.databases {
		if db == nil || db.Profile() == database.ProfileReadOnly {
			continue
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().
				Err(err).
				Str("database", db.Name()).
				Msg("Failed to checkpoint WAL")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if stats, err := db.GetStats(); err == nil {
			j.log.Debug().
				Str("database", db.Name()).
				Int64("wal_bytes", stats.WALSizeBytes).
				Int64("size_bytes", stats.SizeBytes).
				Msg("WAL checkpoint completed")
		}
		checked++
	}

	j.log.Info().Int("checked", checked).Msg("WAL checkpoint run completed")
	return firstErr
}
