package aggregation

import (
	"math"
	"testing"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthly_ReducesOneMonth(t *testing.T) {
	// Deliberately out of order: the reduction must follow the dates.
	daily := []domain.PriceBar{
		{Date: day(2020, 1, 15), Ticker: "SAP.DE", Open: 105, High: 112, Low: 101, Close: 110, Volume: 300},
		{Date: day(2020, 1, 2), Ticker: "SAP.DE", Open: 100, High: 106, Low: 99, Close: 104, Volume: 100},
		{Date: day(2020, 1, 31), Ticker: "SAP.DE", Open: 111, High: 115, Low: 95, Close: 113, Volume: 200},
	}

	got, err := Monthly(daily)
	require.NoError(t, err)
	require.Len(t, got, 1)

	bar := got[0]
	assert.Equal(t, day(2020, 1, 1), bar.Date)
	assert.Equal(t, "SAP.DE", bar.Ticker)
	assert.Equal(t, 100.0, bar.Open, "open comes from the earliest day")
	assert.Equal(t, 113.0, bar.Close, "close comes from the latest day")
	assert.Equal(t, 115.0, bar.High)
	assert.Equal(t, 95.0, bar.Low)
	assert.Equal(t, 600.0, bar.Volume)
}

func TestMonthly_GroupsByMonthAndTicker(t *testing.T) {
	daily := []domain.PriceBar{
		{Date: day(2020, 2, 3), Ticker: "BMW.DE", Open: 60, High: 61, Low: 59, Close: 60.5, Volume: 10},
		{Date: day(2020, 1, 6), Ticker: "SAP.DE", Open: 120, High: 121, Low: 119, Close: 120.5, Volume: 20},
		{Date: day(2020, 1, 7), Ticker: "BMW.DE", Open: 70, High: 72, Low: 69, Close: 71, Volume: 30},
		{Date: day(2020, 1, 8), Ticker: "BMW.DE", Open: 71, High: 73, Low: 70, Close: 72, Volume: 40},
		{Date: day(2020, 2, 4), Ticker: "SAP.DE", Open: 121, High: 125, Low: 118, Close: 124, Volume: 50},
	}

	got, err := Monthly(daily)
	require.NoError(t, err)
	require.Len(t, got, 4)

	want := []struct {
		date   time.Time
		ticker string
		volume float64
	}{
		{day(2020, 1, 1), "BMW.DE", 70},
		{day(2020, 1, 1), "SAP.DE", 20},
		{day(2020, 2, 1), "BMW.DE", 10},
		{day(2020, 2, 1), "SAP.DE", 50},
	}
	for i, w := range want {
		assert.Equal(t, w.date, got[i].Date, "row %d date", i)
		assert.Equal(t, w.ticker, got[i].Ticker, "row %d ticker", i)
		assert.Equal(t, w.volume, got[i].Volume, "row %d volume", i)
	}

	// No cross-ticker bleed in January BMW.
	assert.Equal(t, 70.0, got[0].Open)
	assert.Equal(t, 72.0, got[0].Close)
	assert.Equal(t, 73.0, got[0].High)
	assert.Equal(t, 69.0, got[0].Low)
}

func TestMonthly_SingleRowCollapses(t *testing.T) {
	daily := []domain.PriceBar{
		{Date: day(2021, 5, 20), Ticker: "ALV.DE", Open: 200, High: 210, Low: 190, Close: 205, Volume: 7},
	}

	got, err := Monthly(daily)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.PriceBar{
		Date: day(2021, 5, 1), Ticker: "ALV.DE", Open: 200, High: 210, Low: 190, Close: 205, Volume: 7,
	}, got[0])
}

func TestMonthly_EmptyInput(t *testing.T) {
	got, err := Monthly(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMonthly_NoGapFilling(t *testing.T) {
	daily := []domain.PriceBar{
		{Date: day(2020, 1, 10), Ticker: "SAP.DE", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Date: day(2020, 4, 10), Ticker: "SAP.DE", Open: 2, High: 2, Low: 2, Close: 2, Volume: 1},
	}

	got, err := Monthly(daily)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2020, 1, 1), got[0].Date)
	assert.Equal(t, day(2020, 4, 1), got[1].Date)
}

func TestMonthly_DoesNotMutateInput(t *testing.T) {
	daily := []domain.PriceBar{
		{Date: day(2020, 1, 20), Ticker: "SAP.DE", Open: 2, High: 2, Low: 2, Close: 2, Volume: 1},
		{Date: day(2020, 1, 10), Ticker: "SAP.DE", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
	}
	snapshot := append([]domain.PriceBar(nil), daily...)

	_, err := Monthly(daily)
	require.NoError(t, err)
	assert.Equal(t, snapshot, daily)
}

func TestMonthly_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		bar  domain.PriceBar
	}{
		{"missing date", domain.PriceBar{Ticker: "SAP.DE", Open: 1, High: 1, Low: 1, Close: 1}},
		{"missing ticker", domain.PriceBar{Date: day(2020, 1, 2), Open: 1, High: 1, Low: 1, Close: 1}},
		{"NaN close", domain.PriceBar{Date: day(2020, 1, 2), Ticker: "SAP.DE", Open: 1, High: 1, Low: 1, Close: math.NaN()}},
		{"NaN volume", domain.PriceBar{Date: day(2020, 1, 2), Ticker: "SAP.DE", Open: 1, High: 1, Low: 1, Close: 1, Volume: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Monthly([]domain.PriceBar{tt.bar})
			require.Error(t, err)
			assert.True(t, domain.IsDataError(err))
		})
	}
}
