// Package main is the entry point for the index contribution dashboard server.
// It serves the index history, date ranges and per-constituent contribution
// figures computed from a read-only price store.
//
// The application follows the same layering as the rest of the module:
// - Domain layer is pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Price sources behind a single interface (SQLite store or parquet snapshot)
// - Service layer for aggregation and contribution math
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/indexboard/internal/config"
	"github.com/aristath/indexboard/internal/di"
	"github.com/aristath/indexboard/internal/server"
	"github.com/aristath/indexboard/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration (defaults, optional YAML file, environment)
// 2. Initializes logging
// 3. Wires databases, price source, cache and services via the DI container
// 4. Starts the maintenance scheduler
// 5. Starts the HTTP server
// 6. Waits for a shutdown signal and shuts down gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger so the configuration error is still reported
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_source", cfg.DataSource).
		Str("index", cfg.IndexTicker).
		Str("date_floor", cfg.DateFloor).
		Msg("Starting index dashboard")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	// Closing flushes the cache database WAL
	defer container.Close()

	container.Scheduler.Start()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	// In-flight requests get up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
