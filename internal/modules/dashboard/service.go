// Package dashboard composes price loading, monthly aggregation, the
// contribution engine and the chart builder into the views the UI shows.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/aristath/indexboard/internal/modules/aggregation"
	"github.com/aristath/indexboard/internal/modules/charts"
	"github.com/aristath/indexboard/internal/modules/contribution"
	"github.com/aristath/indexboard/internal/modules/prices"
	"github.com/aristath/indexboard/internal/utils"
	"github.com/rs/zerolog"
)

// Config selects the index shown by the dashboard
type Config struct {
	IndexTicker string    // e.g. ^GDAXI
	IndexName   string    // display name, e.g. DAX
	DateFloor   time.Time // rows before this date are never loaded
}

// Invalidator is implemented by sources that memoise rows
type Invalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// Service serves the dashboard views
type Service struct {
	source prices.Source
	charts *charts.Service
	cfg    Config
	log    zerolog.Logger
}

// NewService creates a dashboard service
func NewService(source prices.Source, chartService *charts.Service, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		charts: chartService,
		cfg:    cfg,
		log:    log.With().Str("service", "dashboard").Logger(),
	}
}

// ContributionsView is the contribution breakdown for a date range
type ContributionsView struct {
	StartDate time.Time                   `json:"start_date"`
	EndDate   time.Time                   `json:"end_date"`
	Results   []domain.ContributionResult `json:"results"` // ascending by absolute impact
	Excluded  []domain.Exclusion          `json:"excluded"`
	Total     float64                     `json:"total"`
	Summary   domain.IndexSummary         `json:"summary"`
	Residual  float64                     `json:"residual"` // index change minus Total
}

// DateOptions are the selectable range bounds
type DateOptions struct {
	Start []time.Time `json:"start"` // ascending
	End   []time.Time `json:"end"`   // descending
}

// IndexHistory returns the index's monthly bars since the date floor
func (s *Service) IndexHistory(ctx context.Context) ([]domain.PriceBar, error) {
	daily, err := s.source.IndexSeries(ctx, s.cfg.IndexTicker, s.cfg.DateFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to load index series: %w", err)
	}
	return aggregation.Monthly(daily)
}

// ConstituentHistory returns every constituent's monthly bars since the date floor
func (s *Service) ConstituentHistory(ctx context.Context) ([]domain.PriceBar, error) {
	daily, err := s.source.ConstituentSeries(ctx, s.cfg.DateFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to load constituent series: %w", err)
	}
	return aggregation.Monthly(daily)
}

// Metadata returns the constituent reference rows
func (s *Service) Metadata(ctx context.Context) ([]domain.ConstituentMetadata, error) {
	metadata, err := s.source.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	return metadata, nil
}

// AvailableDates returns the index's monthly dates, ascending
func (s *Service) AvailableDates(ctx context.Context) ([]time.Time, error) {
	bars, err := s.IndexHistory(ctx)
	if err != nil {
		return nil, err
	}
	return datesOf(bars), nil
}

// DateOptions returns the start choices ascending and the end choices descending
func (s *Service) DateOptions(ctx context.Context) (DateOptions, error) {
	dates, err := s.AvailableDates(ctx)
	if err != nil {
		return DateOptions{}, err
	}

	end := make([]time.Time, len(dates))
	for i, d := range dates {
		end[len(dates)-1-i] = d
	}
	return DateOptions{Start: dates, End: end}, nil
}

// StockNames returns the selectable constituent names in metadata order
func (s *Service) StockNames(ctx context.Context) ([]string, error) {
	metadata, err := s.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(metadata))
	for _, m := range metadata {
		if m.Name == "" {
			s.log.Debug().Str("ticker", m.Ticker).Msg("Constituent without a name is not selectable")
			continue
		}
		names = append(names, m.Name)
	}
	return names, nil
}

// Summary returns the index's own move between two selectable dates
func (s *Service) Summary(ctx context.Context, start, end time.Time) (domain.IndexSummary, error) {
	start, end = domain.Day(start), domain.Day(end)

	index, err := s.IndexHistory(ctx)
	if err != nil {
		return domain.IndexSummary{}, err
	}
	if err := checkSelection(datesOf(index), start, end); err != nil {
		return domain.IndexSummary{}, err
	}
	return contribution.Summarize(index, start, end)
}

// Contributions returns each constituent's point contribution between two
// selectable dates, sorted by absolute impact ascending.
func (s *Service) Contributions(ctx context.Context, start, end time.Time) (*ContributionsView, error) {
	defer utils.OperationTimer("contributions", s.log)()
	start, end = domain.Day(start), domain.Day(end)

	index, err := s.IndexHistory(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkSelection(datesOf(index), start, end); err != nil {
		return nil, err
	}

	summary, err := contribution.Summarize(index, start, end)
	if err != nil {
		return nil, err
	}

	history, err := s.ConstituentHistory(ctx)
	if err != nil {
		return nil, err
	}
	metadata, err := s.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	report, err := contribution.Compute(history, metadata, start, end)
	if err != nil {
		return nil, err
	}

	if len(report.Excluded) > 0 {
		tickers := make([]string, len(report.Excluded))
		for i, e := range report.Excluded {
			tickers[i] = e.Ticker + ":" + string(e.Reason)
		}
		s.log.Warn().
			Str("start", start.Format(domain.DateLayout)).
			Str("end", end.Format(domain.DateLayout)).
			Int("excluded", len(report.Excluded)).
			Str("tickers", strings.Join(tickers, ",")).
			Msg("Constituents left out of contribution breakdown")
	}

	total := contribution.Total(report.Results)
	return &ContributionsView{
		StartDate: start,
		EndDate:   end,
		Results:   contribution.SortByMagnitude(report.Results),
		Excluded:  report.Excluded,
		Total:     total,
		Summary:   summary,
		Residual:  summary.AbsoluteChange - total,
	}, nil
}

// StockHistory returns the monthly bars of the constituent with the given display name
func (s *Service) StockHistory(ctx context.Context, name string) ([]domain.PriceBar, error) {
	metadata, err := s.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	ticker := ""
	for _, m := range metadata {
		if m.Name != "" && m.Name == name {
			ticker = m.Ticker
			break
		}
	}
	if ticker == "" {
		return nil, domain.NewDataError("select stock", "unknown stock %q", name)
	}

	history, err := s.ConstituentHistory(ctx)
	if err != nil {
		return nil, err
	}

	bars := []domain.PriceBar{}
	for _, b := range history {
		if b.Ticker == ticker {
			bars = append(bars, b)
		}
	}
	return bars, nil
}

// IndexChart renders the index's monthly candlestick chart
func (s *Service) IndexChart(ctx context.Context) (*charts.Figure, error) {
	bars, err := s.IndexHistory(ctx)
	if err != nil {
		return nil, err
	}
	return s.charts.RenderCandlestick(bars, s.cfg.IndexName), nil
}

// StockChart renders one constituent's monthly candlestick chart
func (s *Service) StockChart(ctx context.Context, name string) (*charts.Figure, error) {
	bars, err := s.StockHistory(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.charts.RenderCandlestick(bars, name), nil
}

// ContributionsChart renders the contribution breakdown as horizontal bars
func (s *Service) ContributionsChart(ctx context.Context, start, end time.Time) (*charts.Figure, error) {
	view, err := s.Contributions(ctx, start, end)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Constituent impact on %s (%s - %s)",
		s.cfg.IndexName, view.StartDate.Format(domain.DateLayout), view.EndDate.Format(domain.DateLayout))
	return s.charts.RenderContributionBar(view.Results, title), nil
}

// InvalidateCache drops memoised source rows, if the source keeps any
func (s *Service) InvalidateCache(ctx context.Context) (int64, error) {
	inv, ok := s.source.(Invalidator)
	if !ok {
		return 0, nil
	}
	return inv.Invalidate(ctx)
}

func datesOf(bars []domain.PriceBar) []time.Time {
	seen := make(map[time.Time]bool, len(bars))
	dates := make([]time.Time, 0, len(bars))
	for _, b := range bars {
		if !seen[b.Date] {
			seen[b.Date] = true
			dates = append(dates, b.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// checkSelection enforces that both range bounds are offered dates
func checkSelection(dates []time.Time, start, end time.Time) error {
	offered := func(d time.Time) bool {
		i := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(d) })
		return i < len(dates) && dates[i].Equal(d)
	}

	if !offered(start) {
		return domain.NewDataError("select range", "start date %s is not an available date", start.Format(domain.DateLayout))
	}
	if !offered(end) {
		return domain.NewDataError("select range", "end date %s is not an available date", end.Format(domain.DateLayout))
	}
	return nil
}
