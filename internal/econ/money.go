// Package econ provides the economic model: demand curves, macro-indicator
// drift, and fixed-precision money arithmetic.
package econ

import (
	"github.com/shopspring/decimal"
)

// Money is a monetary amount held at two decimal places. Every arithmetic
// helper below re-rounds so precision never drifts across rounds.
type Money = decimal.Decimal

// NewMoney returns a Money value rounded to cents.
func NewMoney(v float64) Money {
	return decimal.NewFromFloat(v).Round(2)
}

// Zero is the zero monetary amount.
func Zero() Money {
	return decimal.Zero
}

// Add returns a+b rounded to cents.
func Add(a, b Money) Money {
	return a.Add(b).Round(2)
}

// Sub returns a-b rounded to cents.
func Sub(a, b Money) Money {
	return a.Sub(b).Round(2)
}

// Scale returns a*f rounded to cents. Used for rate and factor application
// where the factor itself is a ratio, not money.
func Scale(a Money, f float64) Money {
	return a.Mul(decimal.NewFromFloat(f)).Round(2)
}

// MulUnits returns price*units rounded to cents.
func MulUnits(price Money, units float64) Money {
	return price.Mul(decimal.NewFromFloat(units)).Round(2)
}

// Float returns the closest float64 to a monetary amount. Demand and
// elasticity math runs on float64; only bookkeeping stays decimal.
func Float(a Money) float64 {
	return a.InexactFloat64()
}
