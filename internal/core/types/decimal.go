// Package types provides the numeric types shared by invoices and the product ledger.
package types

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// Quantity is a stock quantity. Fractional quantities are allowed.
type Quantity = decimal.Decimal

// ErrNotFinite is returned for NaN and infinite inputs.
var ErrNotFinite = errors.New("value is not a finite number")

// FromFloat converts a decoded JSON number, rejecting NaN and ±Inf.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrNotFinite
	}
	return decimal.NewFromFloat(f), nil
}

// MustDecimal parses a decimal literal, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Percent returns v × rate / 100.
func Percent(v, rate decimal.Decimal) decimal.Decimal {
	return v.Mul(rate).Div(hundred)
}

var hundred = decimal.NewFromInt(100)

// Hundred is the upper bound of tax rates.
func Hundred() decimal.Decimal {
	return hundred
}
