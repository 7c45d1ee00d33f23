// Package testing provides test helpers for building price stores and cache databases.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aristath/indexboard/internal/database"
	_ "modernc.org/sqlite"
)

// PriceStoreSchema creates the three relations of the price store with their default names.
// Date is TEXT, as written by the ingestion pipeline.
const PriceStoreSchema = `
CREATE TABLE IF NOT EXISTS Index_GER (
	Date TEXT,
	Ticker TEXT,
	Open REAL,
	High REAL,
	Low REAL,
	Close REAL,
	Volume REAL
);

CREATE TABLE IF NOT EXISTS Equity_Prices_GER (
	Date TEXT,
	Ticker TEXT,
	Open REAL,
	High REAL,
	Low REAL,
	Close REAL,
	Volume REAL
);

CREATE TABLE IF NOT EXISTS Index_DAX_Metadata (
	Ticker TEXT,
	Name TEXT,
	Index_Price_Factor REAL
);
`

// NewTestDB creates a temporary SQLite database for testing with automatic schema migration.
// The database is closed when the test finishes.
//
// Supported schema names:
//   - "cache" - applies cache_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}

// NewPriceStore writes a price store file seeded with fx and returns its path.
// The writer connection is closed before returning, so callers can reopen the
// file read-only as the server does.
func NewPriceStore(t *testing.T, fx Fixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prices.db")
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileStandard,
		Name:    "prices_seed",
	})
	if err != nil {
		t.Fatalf("Failed to create price store: %v", err)
	}
	defer db.Close()

	if err := SeedPriceStore(db.Conn(), fx); err != nil {
		t.Fatalf("Failed to seed price store: %v", err)
	}
	if err := db.WALCheckpoint("TRUNCATE"); err != nil {
		t.Fatalf("Failed to checkpoint price store: %v", err)
	}
	return path
}

// SeedPriceStore creates the price store schema on db and inserts fx.
func SeedPriceStore(db *sql.DB, fx Fixture) error {
	if _, err := db.Exec(PriceStoreSchema); err != nil {
		return err
	}

	return database.WithTransaction(db, func(tx *sql.Tx) error {
		for table, bars := range map[string][]BarRow{
			"Index_GER":         fx.Index,
			"Equity_Prices_GER": fx.Constituents,
		} {
			stmt, err := tx.Prepare(`INSERT INTO ` + table + ` (Date, Ticker, Open, High, Low, Close, Volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
			if err != nil {
				return err
			}
			for _, b := range bars {
				if _, err := stmt.Exec(b.Date, b.Ticker, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
					_ = stmt.Close()
					return err
				}
			}
			_ = stmt.Close()
		}

		for _, m := range fx.Metadata {
			var name interface{} = m.Name
			if m.Name == "" {
				name = nil
			}
			if _, err := tx.Exec(`INSERT INTO Index_DAX_Metadata (Ticker, Name, Index_Price_Factor) VALUES (?, ?, ?)`,
				m.Ticker, name, m.IndexPriceFactor); err != nil {
				return err
			}
		}
		return nil
	})
}
