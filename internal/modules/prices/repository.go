package prices

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/aristath/indexboard/internal/utils"
	"github.com/guregu/null/v5"
	"github.com/rs/zerolog"
)

// Repository reads the price store from SQLite.
// The connection is expected to be query-only; nothing here writes.
type Repository struct {
	db     *sql.DB
	tables Tables
	log    zerolog.Logger
}

// NewRepository creates a repository over the given tables
func NewRepository(db *sql.DB, tables Tables, log zerolog.Logger) (*Repository, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return &Repository{
		db:     db,
		tables: tables,
		log:    log.With().Str("component", "prices_repository").Logger(),
	}, nil
}

// Name identifies the backend
func (r *Repository) Name() string {
	return "sqlite"
}

// CheckSchema verifies that every relation exposes the columns the queries need
func (r *Repository) CheckSchema(ctx context.Context) error {
	checks := []struct {
		table   string
		columns []string
	}{
		{r.tables.Index, barColumns},
		{r.tables.Constituents, barColumns},
		{r.tables.Metadata, metadataColumns},
	}

	for _, c := range checks {
		present, err := r.columns(ctx, c.table)
		if err != nil {
			return err
		}
		if len(present) == 0 {
			return domain.NewDataError("check schema", "table %s does not exist", c.table)
		}

		var missing []string
		for _, col := range c.columns {
			if !present[col] {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return domain.NewDataError("check schema",
				"table %s is missing columns: %s", c.table, strings.Join(missing, ", "))
		}
	}
	return nil
}

func (r *Repository) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info of %s: %w", table, err)
		}
		present[name] = true
	}
	return present, rows.Err()
}

// IndexSeries returns the bars of one index ticker since the floor date
func (r *Repository) IndexSeries(ctx context.Context, ticker string, since time.Time) ([]domain.PriceBar, error) {
	query := fmt.Sprintf(`
		SELECT Date, Ticker, Open, High, Low, Close, Volume
		FROM %s
		WHERE Ticker = ? AND Date >= ?
		ORDER BY Date ASC
	`, r.tables.Index)

	return r.queryBars(ctx, "index_series", r.tables.Index, query, ticker, since.Format(domain.DateLayout))
}

// ConstituentSeries returns the bars of every constituent since the floor date
func (r *Repository) ConstituentSeries(ctx context.Context, since time.Time) ([]domain.PriceBar, error) {
	query := fmt.Sprintf(`
		SELECT Date, Ticker, Open, High, Low, Close, Volume
		FROM %s
		WHERE Date >= ?
		ORDER BY Date ASC, Ticker ASC
	`, r.tables.Constituents)

	return r.queryBars(ctx, "constituent_series", r.tables.Constituents, query, since.Format(domain.DateLayout))
}

func (r *Repository) queryBars(ctx context.Context, name, table, query string, args ...interface{}) ([]domain.PriceBar, error) {
	done := utils.MeasureDBQuery(name, r.log)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	bars := []domain.PriceBar{}
	for rows.Next() {
		var date, ticker null.String
		var open, high, low, close_, volume null.Float
		if err := rows.Scan(&date, &ticker, &open, &high, &low, &close_, &volume); err != nil {
			return nil, domain.NewDataError("read "+table, "row %d: %v", len(bars)+1, err)
		}

		row := len(bars) + 1
		if err := requireValues(table, row,
			field{"Date", date.Valid}, field{"Ticker", ticker.Valid},
			field{"Open", open.Valid}, field{"High", high.Valid}, field{"Low", low.Valid},
			field{"Close", close_.Valid}, field{"Volume", volume.Valid},
		); err != nil {
			return nil, err
		}

		day, err := parseStoreDate(date.String)
		if err != nil {
			return nil, domain.NewDataError("read "+table, "row %d column Date: %v", row, err)
		}

		bars = append(bars, domain.PriceBar{
			Date:   day,
			Ticker: ticker.String,
			Open:   open.Float64,
			High:   high.Float64,
			Low:    low.Float64,
			Close:  close_.Float64,
			Volume: volume.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}

	done(len(bars))
	return bars, nil
}

// Metadata returns every constituent's reference row in store order.
// A NULL name is read as an empty name.
func (r *Repository) Metadata(ctx context.Context) ([]domain.ConstituentMetadata, error) {
	done := utils.MeasureDBQuery("metadata", r.log)

	query := fmt.Sprintf(`SELECT Ticker, Name, Index_Price_Factor FROM %s`, r.tables.Metadata)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.tables.Metadata, err)
	}
	defer rows.Close()

	metadata := []domain.ConstituentMetadata{}
	for rows.Next() {
		var (
			ticker, name null.String
			factor       null.Float
		)
		if err := rows.Scan(&ticker, &name, &factor); err != nil {
			return nil, domain.NewDataError("read "+r.tables.Metadata, "row %d: %v", len(metadata)+1, err)
		}
		if err := requireValues(r.tables.Metadata, len(metadata)+1,
			field{"Ticker", ticker.Valid}, field{"Index_Price_Factor", factor.Valid},
		); err != nil {
			return nil, err
		}

		metadata = append(metadata, domain.ConstituentMetadata{
			Ticker:           ticker.String,
			Name:             name.String,
			IndexPriceFactor: factor.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.tables.Metadata, err)
	}

	done(len(metadata))
	return metadata, nil
}

type field struct {
	column string
	valid  bool
}

func requireValues(table string, row int, fields ...field) error {
	for _, f := range fields {
		if !f.valid {
			return domain.NewDataError("read "+table, "row %d: NULL in required column %s", row, f.column)
		}
	}
	return nil
}
