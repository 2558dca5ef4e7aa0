// Package money owns the boundary between decimal amounts and their
// integer minor-unit (cents) representation. Everything above this layer
// works on int64 cents only; floats exist solely at the edges.
package money

import (
	"math"
	"strconv"
)

const scale = 100

// ToMinorUnits converts a decimal amount to cents, rounding half away
// from zero at the two-decimal boundary. Non-finite input yields 0 so the
// conversion is safe to apply directly to untrusted request values.
func ToMinorUnits(value float64) int64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return int64(math.Round(value * scale))
}

// ParseMinorUnits converts the textual form of a decimal amount to cents.
// Non-numeric input yields 0, never an error.
func ParseMinorUnits(value string) int64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return ToMinorUnits(v)
}

// ToDecimal is the exact inverse of ToMinorUnits for integer cents.
func ToDecimal(cents int64) float64 {
	return float64(cents) / scale
}

// ToBase converts cents in a transaction currency to cents in the base
// currency using the supplied exchange rate. A non-finite rate yields 0;
// a rate of 1.0 is the no-op conversion.
func ToBase(cents int64, fxRate float64) int64 {
	if math.IsNaN(fxRate) || math.IsInf(fxRate, 0) {
		return 0
	}
	return int64(math.Round(float64(cents) * fxRate))
}
