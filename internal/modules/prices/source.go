// Package prices reads index and constituent price history from the price store.
package prices

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/aristath/indexboard/internal/domain"
)

// Source is the read-only query contract of the price store.
// Bars come back ordered by date, then ticker.
type Source interface {
	// IndexSeries returns the daily bars of one index ticker dated on or after since.
	IndexSeries(ctx context.Context, ticker string, since time.Time) ([]domain.PriceBar, error)
	// ConstituentSeries returns the daily bars of every constituent dated on or after since.
	ConstituentSeries(ctx context.Context, since time.Time) ([]domain.PriceBar, error)
	// Metadata returns the constituent reference rows in store order.
	Metadata(ctx context.Context) ([]domain.ConstituentMetadata, error)
	// Name identifies the backend in cache keys and logs.
	Name() string
}

// Tables names the three relations of the price store
type Tables struct {
	Index        string `yaml:"index"`
	Constituents string `yaml:"constituents"`
	Metadata     string `yaml:"metadata"`
}

// DefaultTables are the relation names of the German market store
func DefaultTables() Tables {
	return Tables{
		Index:        "Index_GER",
		Constituents: "Equity_Prices_GER",
		Metadata:     "Index_DAX_Metadata",
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that every table name is a plain SQL identifier.
// Table names are interpolated into queries, so nothing else is accepted.
func (t Tables) Validate() error {
	for role, name := range map[string]string{
		"index":        t.Index,
		"constituents": t.Constituents,
		"metadata":     t.Metadata,
	} {
		if !identifierPattern.MatchString(name) {
			return domain.NewConfigError("validate tables", "invalid %s table name %q", role, name)
		}
	}
	return nil
}

// Required columns per relation
var (
	barColumns      = []string{"Date", "Ticker", "Open", "High", "Low", "Close", "Volume"}
	metadataColumns = []string{"Ticker", "Name", "Index_Price_Factor"}
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// parseStoreDate parses a Date cell and keeps only its calendar date
func parseStoreDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
