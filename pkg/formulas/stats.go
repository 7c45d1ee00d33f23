// Package formulas holds small numeric helpers shared by the analysis modules.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sum adds up values. An empty slice sums to 0.
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// RoundTo rounds v half away from zero to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// PercentChange returns 100 * (to - from) / from. The caller must ensure from != 0.
func PercentChange(from, to float64) float64 {
	return 100 * (to - from) / from
}
