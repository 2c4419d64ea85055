// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Rounding is done in decimal space so that values like 2.675 round half away
// from zero instead of being subject to binary representation error.
func Round(val float64) float64 {
	return RoundPlaces(val, constants.CurrencyPlaces)
}

// RoundRatio rounds a ratio such as a profit margin to four decimals.
func RoundRatio(val float64) float64 {
	return RoundPlaces(val, constants.RatioPlaces)
}

// RoundPlaces rounds val to the given number of decimal places.
func RoundPlaces(val float64, places int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}

// SafeDivide returns numerator/denominator, or 0 when the denominator is zero.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
