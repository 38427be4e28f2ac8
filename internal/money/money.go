// Package money wraps shopspring/decimal with the parsing and rounding
// conventions of Brazilian fiscal documents.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the fixed number of decimal places for monetary values.
const Scale = 2

// Zero is decimal zero
var Zero = decimal.Zero

// FromString parses a decimal, accepting a comma as the decimal
// separator when no dot is present ("1234,56" -> 1234.56).
func FromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// ParseLenient parses like FromString but defaults to Zero on absent or
// malformed input instead of failing, to support partial extraction.
func ParseLenient(s string) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return Zero
	}
	d, err := FromString(s)
	if err != nil {
		return Zero
	}
	return d
}

// MustFromString parses a decimal, panics on error. Intended for
// constants and tests.
func MustFromString(s string) decimal.Decimal {
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round rounds to the fixed monetary scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Mul multiplies two decimals and rounds to the monetary scale.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Round(Scale)
}

// Sum sums a slice of decimals.
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// WithinTolerance reports whether |a-b| <= tol.
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// Percent converts a fraction to a percentage rounded to the monetary
// scale (0.2345 -> 23.45).
func Percent(fraction decimal.Decimal) decimal.Decimal {
	return fraction.Mul(decimal.NewFromInt(100)).Round(Scale)
}
