// Package money holds the fixed-point helpers shared by fee and wallet code.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places money is stored with.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two places.
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(Scale)
}

// FromFloat converts a float, degrading NaN and ±Inf to zero.
func FromFloat(value float64) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}

// FromPtr dereferences an optional decimal.
func FromPtr(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return *value
}

// Percent returns value * pct / 100.
func Percent(value, pct decimal.Decimal) decimal.Decimal {
	return value.Mul(pct).Div(hundred)
}

// ClampPercent bounds pct to [0, 100].
func ClampPercent(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// Float returns the float64 view used in JSON payloads.
func Float(value decimal.Decimal) float64 {
	f, _ := value.Float64()
	return f
}
