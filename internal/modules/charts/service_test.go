package charts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyBars(n int) []domain.PriceBar {
	bars := make([]domain.PriceBar, n)
	for i := range bars {
		bars[i] = domain.PriceBar{
			Date:   time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Ticker: "^GDAXI",
			Open:   100 + float64(i),
			High:   110 + float64(i),
			Low:    95 + float64(i),
			Close:  105 + float64(i),
			Volume: 1000 * float64(i+1),
		}
	}
	return bars
}

func TestRenderCandlestick(t *testing.T) {
	svc := NewService(0, zerolog.New(nil).Level(zerolog.Disabled))

	fig := svc.RenderCandlestick(monthlyBars(3), "DAX")

	_, err := uuid.Parse(fig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Price history - DAX", fig.Layout.Title)
	require.Len(t, fig.Data, 2)

	candles := fig.Data[0]
	assert.Equal(t, "candlestick", candles.Type)
	assert.Equal(t, "y2", candles.YAxis)
	assert.Equal(t, []string{"2020-01-01", "2020-02-01", "2020-03-01"}, candles.X)
	assert.Equal(t, []float64{100, 101, 102}, candles.Open)
	assert.Equal(t, []float64{105, 106, 107}, candles.Close)

	volume := fig.Data[1]
	assert.Equal(t, "bar", volume.Type)
	assert.Equal(t, "y", volume.YAxis)
	assert.Equal(t, "#b3b3b3", volume.Marker.Color)
	assert.Equal(t, []float64{1000, 2000, 3000}, volume.Y)

	require.NotNil(t, fig.Layout.YAxis2)
	assert.Equal(t, "Price", fig.Layout.YAxis2.Title)
	assert.Equal(t, "Volume", fig.Layout.YAxis.Title)
}

func TestRenderCandlestick_SMAOverlay(t *testing.T) {
	svc := NewService(3, zerolog.Nop())

	fig := svc.RenderCandlestick(monthlyBars(5), "SAP")
	require.Len(t, fig.Data, 3)

	sma := fig.Data[2]
	assert.Equal(t, "scatter", sma.Type)
	assert.Equal(t, "SMA 3", sma.Name)
	values, ok := sma.Y.([]*float64)
	require.True(t, ok)
	require.Len(t, values, 5)
	assert.Nil(t, values[1])
	require.NotNil(t, values[2])
	assert.InDelta(t, 106.0, *values[2], 1e-9)

	// Not enough bars: overlay is skipped
	fig = svc.RenderCandlestick(monthlyBars(2), "SAP")
	assert.Len(t, fig.Data, 2)
}

func TestRenderCandlestick_Empty(t *testing.T) {
	svc := NewService(3, zerolog.Nop())

	fig := svc.RenderCandlestick(nil, "DAX")
	require.Len(t, fig.Data, 2)
	assert.Empty(t, fig.Data[0].X)
}

func TestRenderContributionBar(t *testing.T) {
	svc := NewService(0, zerolog.Nop())
	results := []domain.ContributionResult{
		{Ticker: "ALV.DE", Name: "Allianz", StockPerformance: 1.5},
		{Ticker: "X.DE", Name: "", StockPerformance: -4},
		{Ticker: "SAP.DE", Name: "SAP", StockPerformance: 30},
	}

	fig := svc.RenderContributionBar(results, "Constituent impact on DAX (2020-01-01 - 2020-06-01)")

	require.Len(t, fig.Data, 1)
	bar := fig.Data[0]
	assert.Equal(t, "h", bar.Orientation)
	assert.Equal(t, []string{"Allianz", "X.DE", "SAP"}, bar.Y)
	assert.Equal(t, []float64{1.5, -4, 30}, bar.X)
	assert.Equal(t, "Index impact", fig.Layout.XAxis.Title)
	assert.Equal(t, "Constituent impact on DAX (2020-01-01 - 2020-06-01)", fig.Layout.Title)

	raw, err := json.Marshal(fig)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"orientation":"h"`)
	assert.NotContains(t, string(raw), "yaxis2")
}

func TestFigureIDsAreUnique(t *testing.T) {
	svc := NewService(0, zerolog.Nop())
	a := svc.RenderContributionBar(nil, "a")
	b := svc.RenderContributionBar(nil, "a")
	assert.NotEqual(t, a.ID, b.ID)
}
