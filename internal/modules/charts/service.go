package charts

import (
	"fmt"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/aristath/indexboard/pkg/formulas"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	volumeColor = "#b3b3b3"
	smaColor    = "#1f77b4"
	transparent = "rgba(0,0,0,0)"
)

// Service renders price and contribution figures
type Service struct {
	smaPeriod int
	log       zerolog.Logger
}

// NewService creates a chart service. An smaPeriod below 2 disables the
// moving-average overlay on candlestick charts.
func NewService(smaPeriod int, log zerolog.Logger) *Service {
	return &Service{
		smaPeriod: smaPeriod,
		log:       log.With().Str("service", "charts").Logger(),
	}
}

// RenderCandlestick draws bars as candlesticks on a secondary price axis over
// volume bars on the primary axis, sharing one time axis.
func (s *Service) RenderCandlestick(bars []domain.PriceBar, label string) *Figure {
	n := len(bars)
	dates := make([]string, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		dates[i] = b.Date.Format(domain.DateLayout)
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
		volume[i] = b.Volume
	}

	traces := []Trace{
		{
			Type:  "candlestick",
			Name:  label,
			X:     dates,
			Open:  open,
			High:  high,
			Low:   low,
			Close: closes,
			YAxis: "y2",
		},
		{
			Type:   "bar",
			Name:   "Volume",
			X:      dates,
			Y:      volume,
			YAxis:  "y",
			Marker: &Marker{Color: volumeColor},
		},
	}

	if s.smaPeriod > 1 {
		if sma := formulas.SMASeries(closes, s.smaPeriod); sma != nil {
			traces = append(traces, Trace{
				Type:       "scatter",
				Name:       fmt.Sprintf("SMA %d", s.smaPeriod),
				Mode:       "lines",
				X:          dates,
				Y:          sma,
				YAxis:      "y2",
				Line:       &Line{Color: smaColor, Width: 1.5},
				ShowLegend: true,
			})
		} else {
			s.log.Debug().
				Str("label", label).
				Int("bars", n).
				Int("period", s.smaPeriod).
				Msg("Too few bars for moving average overlay")
		}
	}

	return &Figure{
		ID:   uuid.New().String(),
		Data: traces,
		Layout: Layout{
			Title:        "Price history - " + label,
			Height:       800,
			PaperBGColor: transparent,
			PlotBGColor:  transparent,
			XAxis:        Axis{Title: "Date", Type: "date"},
			YAxis:        Axis{Title: "Volume"},
			YAxis2:       &Axis{Title: "Price", Side: "right", Overlaying: "y", ShowGrid: true},
		},
	}
}

// RenderContributionBar draws one horizontal bar per constituent, in the given
// order, with length equal to its contribution in index points.
func (s *Service) RenderContributionBar(results []domain.ContributionResult, title string) *Figure {
	names := make([]string, len(results))
	values := make([]float64, len(results))
	for i, r := range results {
		names[i] = r.Name
		if names[i] == "" {
			names[i] = r.Ticker
		}
		values[i] = r.StockPerformance
	}

	return &Figure{
		ID: uuid.New().String(),
		Data: []Trace{
			{
				Type:        "bar",
				Orientation: "h",
				X:           values,
				Y:           names,
			},
		},
		Layout: Layout{
			Title:        title,
			Height:       1000,
			Width:        1000,
			PaperBGColor: transparent,
			PlotBGColor:  transparent,
			XAxis:        Axis{Title: "Index impact", ShowGrid: true},
			YAxis:        Axis{Title: ""},
		},
	}
}
