// Package money holds the integer-cent representation used on every public
// amount in the service, plus the decimal conversions the commission math
// needs.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount of US currency in minor units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// FromDecimal rounds a decimal amount of cents to whole cents, half away
// from zero.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(0).IntPart())
}

// FromDollars converts a decimal dollar amount to cents.
func FromDollars(d decimal.Decimal) Cents {
	return FromDecimal(d.Shift(2))
}

// ParseDollars parses a dollar string such as "1.25" into cents.
func ParseDollars(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse dollars %q: %w", s, err)
	}
	return FromDollars(d), nil
}

// Decimal returns the amount as a decimal number of cents.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c))
}

// Dollars returns the amount as decimal dollars.
func (c Cents) Dollars() decimal.Decimal {
	return c.Decimal().Shift(-2)
}

// Times multiplies the amount by an integer quantity.
func (c Cents) Times(qty int64) Cents {
	return c * Cents(qty)
}

// Percent returns c × rate/100 without rounding.
func (c Cents) Percent(rate decimal.Decimal) decimal.Decimal {
	return c.Decimal().Mul(rate).Div(hundred)
}

// Scale returns c × factor without rounding.
func (c Cents) Scale(factor decimal.Decimal) decimal.Decimal {
	return c.Decimal().Mul(factor)
}

// NonNegative clamps negative amounts to zero.
func (c Cents) NonNegative() Cents {
	if c < 0 {
		return 0
	}
	return c
}

// String formats the amount as dollars with two decimals, e.g. "-3.05".
func (c Cents) String() string {
	return c.Dollars().StringFixed(2)
}

// Max returns the larger of a and b.
func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}
