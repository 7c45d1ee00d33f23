package formulas

import (
	"github.com/markcheno/go-talib"
)

// SMASeries calculates a simple moving average aligned with values.
// Entries before the first full window are nil, so chart overlays start
// at the first point where the average is defined.
//
// Returns nil if period < 1 or there are fewer values than period.
func SMASeries(values []float64, period int) []*float64 {
	if period < 1 || len(values) < period {
		return nil
	}

	sma := talib.Sma(values, period)

	out := make([]*float64, len(values))
	for i := period - 1; i < len(values) && i < len(sma); i++ {
		if isNaN(sma[i]) {
			continue
		}
		v := sma[i]
		out[i] = &v
	}

	return out
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
