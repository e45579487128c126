// Package types provides common quantity and money arithmetic.
//
// All stock quantities and costs are decimal.Decimal end to end. Floating
// point never touches ledger math: a rounding error smaller than a gram is
// still enough to break the movement/lot conservation invariant.
package types

import (
	"github.com/shopspring/decimal"
)

// QuantityPlaces is the scale persisted for quantities and unit costs,
// matching NUMERIC(15,4) column semantics. Intermediate calculations
// (recipe scaling, loss adjustment) keep full precision; rounding happens
// only at the point a movement or lot quantity is written.
const QuantityPlaces int32 = 4

// Quantity is a stock quantity with full decimal precision.
type Quantity = decimal.Decimal

// Money is a monetary value with full decimal precision.
type Money = decimal.Decimal

// Zero returns the zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// Qty builds a quantity from an int64, convenient in tests and seeds.
func Qty(v int64) Quantity {
	return decimal.NewFromInt(v)
}

// MustQty parses a decimal string, panicking on malformed input.
// Use only for constants and tests.
func MustQty(s string) Quantity {
	return decimal.RequireFromString(s)
}

// RoundQty rounds a quantity to the persisted scale (half away from zero).
func RoundQty(q Quantity) Quantity {
	return q.Round(QuantityPlaces)
}

// IsPositive reports whether q > 0.
func IsPositive(q Quantity) bool {
	return q.IsPositive()
}

// Min returns the smaller of a and b.
func Min(a, b Quantity) Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Percent applies a percentage multiplier: v * (1 + pct/100).
// Used for loss-factor adjustment of recipe quantities.
func Percent(v Quantity, pct decimal.Decimal) Quantity {
	hundred := decimal.NewFromInt(100)
	return v.Mul(hundred.Add(pct)).Div(hundred)
}
