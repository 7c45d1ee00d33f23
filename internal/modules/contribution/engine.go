// Package contribution decomposes an index's point change into additive
// per-constituent contributions.
package contribution

import (
	"sort"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/aristath/indexboard/pkg/formulas"
)

// Compute returns each constituent's contribution to the index between start
// and end.
//
// Only bars dated exactly start or end are used: a constituent's open on start
// and its close on end are converted to index points with its price factor
// before differencing. Constituents without a bar on both dates, or without
// metadata, are left out of Results and listed in Excluded instead.
// A metadata row without a name passes through with an empty name.
//
// Results are ordered by ticker; callers wanting another order sort themselves.
func Compute(
	history []domain.PriceBar,
	metadata []domain.ConstituentMetadata,
	start, end time.Time,
) (domain.ContributionReport, error) {
	start, end = domain.Day(start), domain.Day(end)

	meta, err := indexMetadata(metadata)
	if err != nil {
		return domain.ContributionReport{}, err
	}

	atStart, err := barsOn(history, start)
	if err != nil {
		return domain.ContributionReport{}, err
	}
	atEnd, err := barsOn(history, end)
	if err != nil {
		return domain.ContributionReport{}, err
	}

	if len(atStart) == 0 {
		return domain.ContributionReport{}, domain.NewDataError("compute contributions",
			"no price data on start date %s", start.Format(domain.DateLayout))
	}
	if len(atEnd) == 0 {
		return domain.ContributionReport{}, domain.NewDataError("compute contributions",
			"no price data on end date %s", end.Format(domain.DateLayout))
	}

	pointsStart := toPoints(atStart, meta, func(b domain.PriceBar) float64 { return b.Open })
	pointsEnd := toPoints(atEnd, meta, func(b domain.PriceBar) float64 { return b.Close })

	report := domain.ContributionReport{
		Results:  []domain.ContributionResult{},
		Excluded: []domain.Exclusion{},
	}

	for _, ticker := range unionTickers(atStart, atEnd, meta) {
		ps, okStart := pointsStart[ticker]
		pe, okEnd := pointsEnd[ticker]

		switch {
		case !hasMetadata(meta, ticker):
			report.Excluded = append(report.Excluded, domain.Exclusion{Ticker: ticker, Reason: domain.ExcludedNoMetadata})
		case !okStart:
			report.Excluded = append(report.Excluded, domain.Exclusion{Ticker: ticker, Reason: domain.ExcludedMissingStart})
		case !okEnd:
			report.Excluded = append(report.Excluded, domain.Exclusion{Ticker: ticker, Reason: domain.ExcludedMissingEnd})
		default:
			report.Results = append(report.Results, domain.ContributionResult{
				Ticker:           ticker,
				Name:             meta[ticker].Name,
				StockPerformance: pe - ps,
			})
		}
	}

	return report, nil
}

// Total sums the stock performances. When every constituent is present it
// approximates the index's absolute change.
func Total(results []domain.ContributionResult) float64 {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.StockPerformance
	}
	return formulas.Sum(values)
}

// SortByMagnitude orders results by absolute performance, smallest first,
// breaking ties by name. The input slice is left untouched.
func SortByMagnitude(results []domain.ContributionResult) []domain.ContributionResult {
	out := append([]domain.ContributionResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := abs(out[i].StockPerformance), abs(out[j].StockPerformance)
		if ai != aj {
			return ai < aj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func indexMetadata(metadata []domain.ConstituentMetadata) (map[string]domain.ConstituentMetadata, error) {
	meta := make(map[string]domain.ConstituentMetadata, len(metadata))
	for _, m := range metadata {
		if _, dup := meta[m.Ticker]; dup {
			return nil, domain.NewConfigError("compute contributions", "duplicate metadata for ticker %q", m.Ticker)
		}
		meta[m.Ticker] = m
	}
	return meta, nil
}

// barsOn selects the bars dated exactly on date, keyed by ticker
func barsOn(history []domain.PriceBar, date time.Time) (map[string]domain.PriceBar, error) {
	out := make(map[string]domain.PriceBar)
	for _, b := range history {
		if !domain.Day(b.Date).Equal(date) {
			continue
		}
		if _, dup := out[b.Ticker]; dup {
			return nil, domain.NewDataError("compute contributions",
				"more than one bar for %s on %s", b.Ticker, date.Format(domain.DateLayout))
		}
		out[b.Ticker] = b
	}
	return out, nil
}

func toPoints(
	bars map[string]domain.PriceBar,
	meta map[string]domain.ConstituentMetadata,
	price func(domain.PriceBar) float64,
) map[string]float64 {
	points := make(map[string]float64, len(bars))
	for ticker, b := range bars {
		m, ok := meta[ticker]
		if !ok {
			continue
		}
		points[ticker] = price(b) * m.IndexPriceFactor
	}
	return points
}

func hasMetadata(meta map[string]domain.ConstituentMetadata, ticker string) bool {
	_, ok := meta[ticker]
	return ok
}

// unionTickers lists every ticker seen on either date or in the metadata
func unionTickers(a, b map[string]domain.PriceBar, meta map[string]domain.ConstituentMetadata) []string {
	set := make(map[string]struct{}, len(meta))
	for t := range a {
		set[t] = struct{}{}
	}
	for t := range b {
		set[t] = struct{}{}
	}
	for t := range meta {
		set[t] = struct{}{}
	}
	tickers := make([]string, 0, len(set))
	for t := range set {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
