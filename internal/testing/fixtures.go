package testing

import (
	"fmt"

	"github.com/aristath/indexboard/internal/domain"
)

// BarRow is one price store row as stored, with its Date as text
type BarRow struct {
	Date   string
	Ticker string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Fixture is the content of a price store
type Fixture struct {
	Index        []BarRow
	Constituents []BarRow
	Metadata     []domain.ConstituentMetadata
}

// FixtureIndexTicker is the index ticker used by NewDAXFixture
const FixtureIndexTicker = "^GDAXI"

type fixtureStock struct {
	ticker string
	name   string
	factor float64
	base   float64
	drift  float64
}

var fixtureStocks = []fixtureStock{
	{ticker: "SAP.DE", name: "SAP", factor: 1.5, base: 120, drift: 4},
	{ticker: "SIE.DE", name: "Siemens", factor: 2.0, base: 100, drift: -3},
	{ticker: "ALV.DE", name: "Allianz", factor: 0.5, base: 200, drift: 1.5},
}

// Trading days used in every fixture month
var fixtureDays = []int{2, 15, 28}

// NewDAXFixture builds a small store for January to June 2020, three trading
// days a month, plus one December 1999 day that lies before the default floor.
//
// The index level is exactly the factor-weighted sum of the three constituents,
// so contributions add up to the index change. ORPHAN.DE trades without a
// metadata row and stays out of the index.
func NewDAXFixture() Fixture {
	var fx Fixture
	for _, s := range fixtureStocks {
		fx.Metadata = append(fx.Metadata, domain.ConstituentMetadata{
			Ticker:           s.ticker,
			Name:             s.name,
			IndexPriceFactor: s.factor,
		})
	}

	addDay := func(date string, step float64) {
		idx := BarRow{Date: date, Ticker: FixtureIndexTicker}
		for _, s := range fixtureStocks {
			open := s.base + s.drift*step
			bar := BarRow{
				Date:   date,
				Ticker: s.ticker,
				Open:   open,
				High:   open + 2,
				Low:    open - 1,
				Close:  open + 1,
				Volume: 1000 + 10*step,
			}
			fx.Constituents = append(fx.Constituents, bar)

			idx.Open += s.factor * bar.Open
			idx.High += s.factor * bar.High
			idx.Low += s.factor * bar.Low
			idx.Close += s.factor * bar.Close
			idx.Volume += bar.Volume
		}
		fx.Index = append(fx.Index, idx)

		fx.Constituents = append(fx.Constituents, BarRow{
			Date: date, Ticker: "ORPHAN.DE", Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 50,
		})
	}

	addDay("1999-12-15 00:00:00", -1)
	step := 0.0
	for month := 1; month <= 6; month++ {
		for _, day := range fixtureDays {
			addDay(fmt.Sprintf("2020-%02d-%02d 00:00:00", month, day), step)
			step++
		}
	}
	return fx
}
