// Package aggregation converts daily OHLCV rows into monthly candles.
package aggregation

import (
	"math"
	"sort"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"gonum.org/v1/gonum/floats"
)

type groupKey struct {
	month  time.Time
	ticker string
}

// Monthly aggregates daily bars into one bar per (calendar month, ticker).
//
// Each group is ordered by its original dates and reduced to the first open,
// the highest high, the lowest low, the last close and the summed volume.
// The result carries the first day of the month as its date and is ordered
// by month, then ticker. Months without rows produce no bar.
func Monthly(daily []domain.PriceBar) ([]domain.PriceBar, error) {
	if len(daily) == 0 {
		return []domain.PriceBar{}, nil
	}

	groups := make(map[groupKey][]domain.PriceBar)
	for i, bar := range daily {
		if err := validate(i, bar); err != nil {
			return nil, err
		}
		k := groupKey{month: domain.MonthStart(bar.Date), ticker: bar.Ticker}
		groups[k] = append(groups[k], bar)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].month.Equal(keys[j].month) {
			return keys[i].month.Before(keys[j].month)
		}
		return keys[i].ticker < keys[j].ticker
	})

	out := make([]domain.PriceBar, 0, len(keys))
	seen := make(map[groupKey]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return nil, domain.NewDataError("aggregate monthly",
				"duplicate key (%s, %s) after aggregation", k.month.Format("2006-01"), k.ticker)
		}
		seen[k] = true
		out = append(out, reduce(k, groups[k]))
	}

	return out, nil
}

func reduce(k groupKey, rows []domain.PriceBar) domain.PriceBar {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	highs := make([]float64, len(rows))
	lows := make([]float64, len(rows))
	volumes := make([]float64, len(rows))
	for i, r := range rows {
		highs[i], lows[i], volumes[i] = r.High, r.Low, r.Volume
	}

	return domain.PriceBar{
		Date:   k.month,
		Ticker: k.ticker,
		Open:   rows[0].Open,
		High:   floats.Max(highs),
		Low:    floats.Min(lows),
		Close:  rows[len(rows)-1].Close,
		Volume: floats.Sum(volumes),
	}
}

// validate rejects rows that lack a required field
func validate(i int, bar domain.PriceBar) error {
	switch {
	case bar.Date.IsZero():
		return domain.NewDataError("aggregate monthly", "row %d: missing date", i)
	case bar.Ticker == "":
		return domain.NewDataError("aggregate monthly", "row %d: missing ticker", i)
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"open", bar.Open},
		{"high", bar.High},
		{"low", bar.Low},
		{"close", bar.Close},
		{"volume", bar.Volume},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) {
			return domain.NewDataError("aggregate monthly", "row %d (%s): missing %s", i, bar.Ticker, f.name)
		}
	}
	return nil
}
