// Package domain provides core domain models and types.
package domain

import "time"

// DateLayout is the calendar-date format used in APIs and query parameters
const DateLayout = "2006-01-02"

// PriceBar is one OHLCV observation for one ticker on one date
type PriceBar struct {
	Date   time.Time `json:"date" msgpack:"date"`
	Ticker string    `json:"ticker" msgpack:"ticker"`
	Open   float64   `json:"open" msgpack:"open"`
	High   float64   `json:"high" msgpack:"high"`
	Low    float64   `json:"low" msgpack:"low"`
	Close  float64   `json:"close" msgpack:"close"`
	Volume float64   `json:"volume" msgpack:"volume"`
}

// ConstituentMetadata is static per-ticker reference data for an index member
type ConstituentMetadata struct {
	Ticker string `json:"ticker" msgpack:"ticker"`
	Name   string `json:"name" msgpack:"name"`
	// IndexPriceFactor converts a raw price into index points
	IndexPriceFactor float64 `json:"index_price_factor" msgpack:"index_price_factor"`
}

// ContributionResult is one constituent's point contribution over an interval
type ContributionResult struct {
	Ticker           string  `json:"ticker"`
	Name             string  `json:"name"`
	StockPerformance float64 `json:"stock_performance"`
}

// ExclusionReason explains why a ticker has no contribution row
type ExclusionReason string

const (
	// ExcludedNoMetadata - price rows exist but the ticker has no metadata row
	ExcludedNoMetadata ExclusionReason = "no_metadata"
	// ExcludedMissingStart - no bar on exactly the start date
	ExcludedMissingStart ExclusionReason = "missing_start"
	// ExcludedMissingEnd - no bar on exactly the end date
	ExcludedMissingEnd ExclusionReason = "missing_end"
)

// Exclusion records a constituent dropped from a contribution computation
type Exclusion struct {
	Ticker string          `json:"ticker"`
	Reason ExclusionReason `json:"reason"`
}

// ContributionReport is the output of a contribution computation.
// Excluded lists tickers that were silently dropped by the joins.
type ContributionReport struct {
	Results  []ContributionResult `json:"results"`
	Excluded []Exclusion          `json:"excluded"`
}

// IndexSummary describes the index's own move over an interval
type IndexSummary struct {
	Ticker         string    `json:"ticker"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	OpenAtStart    float64   `json:"index_open_at_start"`
	CloseAtEnd     float64   `json:"index_close_at_end"`
	AbsoluteChange float64   `json:"absolute_change"`
	PercentChange  float64   `json:"percent_change"`
}

// Day truncates t to its calendar date at UTC midnight.
// The wall-clock date of t is kept; its location is discarded.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthStart truncates t to the first day of its calendar month at UTC midnight
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
