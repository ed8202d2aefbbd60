// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/ofzlab/ofz-planner/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for cash residuals and logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// RoundCoupon rounds a per-unit coupon value to four decimals, matching the
// precision the MOEX ISS reports coupon accruals with.
func RoundCoupon(val float64) float64 {
	return math.Round(val*constants.CouponPrecision) / constants.CouponPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}
