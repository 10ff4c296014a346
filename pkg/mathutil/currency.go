// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/investment-calculator/pkg/constants"
)

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// SafePercent calculates what percentage value is of total. The second
// return is false when total is zero and no ratio exists.
func SafePercent(value, total float64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return (value / total) * constants.PercentageMultiplier, true
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// GrowthFactor returns (1 + rate%)^periods.
func GrowthFactor(ratePercent float64, periods int) float64 {
	return math.Pow(1+ratePercent/constants.PercentageMultiplier, float64(periods))
}
