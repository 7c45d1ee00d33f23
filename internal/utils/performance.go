// Package utils holds small helpers shared across the dashboard packages.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Slow thresholds above which measurements are logged at warn level
const (
	SlowQueryThreshold     = 2 * time.Second
	SlowOperationThreshold = 5 * time.Second
)

// OperationTimer provides a defer-friendly way to measure operation duration
//
// Usage:
//
//	func (s *Service) Contributions(ctx context.Context, ...) {
//	    defer utils.OperationTimer("contributions", s.log)()
//	}
func OperationTimer(operation string, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)

		if duration > SlowOperationThreshold {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Msg("Slow operation detected")
			return
		}

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")
	}
}

// MeasureDBQuery measures a query and the number of rows it produced
func MeasureDBQuery(queryName string, log zerolog.Logger) func(rows int) {
	start := time.Now()

	return func(rows int) {
		duration := time.Since(start)

		if duration > SlowQueryThreshold {
			log.Warn().
				Str("query", queryName).
				Dur("duration", duration).
				Int("rows", rows).
				Msg("Slow database query detected")
			return
		}

		log.Debug().
			Str("query", queryName).
			Dur("duration_ms", duration).
			Int("rows", rows).
			Msg("Database query completed")
	}
}
