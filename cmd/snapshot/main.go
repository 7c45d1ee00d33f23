// One-shot tool: export the price store into a parquet snapshot that the
// server can read with DATA_SOURCE=parquet.
//
// Usage:
//
//	go run ./cmd/snapshot [-out data/snapshot] [-all]
package main

import (
	"context"
	"flag"
	"time"

	"github.com/aristath/indexboard/internal/config"
	"github.com/aristath/indexboard/internal/database"
	"github.com/aristath/indexboard/internal/modules/prices"
	"github.com/aristath/indexboard/pkg/logger"
)

func main() {
	out := flag.String("out", "", "snapshot directory (default: PARQUET_DIR)")
	all := flag.Bool("all", false, "export rows older than the date floor too")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	dir := cfg.ParquetDir
	if *out != "" {
		dir = *out
	}
	since := cfg.Floor()
	if *all {
		since = time.Time{}
	}

	db, err := database.New(database.Config{
		Path:    cfg.PricesDBPath,
		Profile: database.ProfileReadOnly,
		Name:    "prices",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open price store")
	}
	defer db.Close()

	repo, err := prices.NewRepository(db.Conn(), cfg.Tables, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid table configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := repo.CheckSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Price store schema check failed")
	}

	index, err := repo.IndexSeries(ctx, cfg.IndexTicker, since)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read index series")
	}
	constituents, err := repo.ConstituentSeries(ctx, since)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read constituent series")
	}
	metadata, err := repo.Metadata(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read metadata")
	}

	if err := prices.WriteSnapshot(dir, index, constituents, metadata); err != nil {
		log.Fatal().Err(err).Msg("Failed to write snapshot")
	}

	log.Info().
		Str("dir", dir).
		Int("index_rows", len(index)).
		Int("constituent_rows", len(constituents)).
		Int("metadata_rows", len(metadata)).
		Msg("Snapshot written")
}
