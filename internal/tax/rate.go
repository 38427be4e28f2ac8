// Package tax computes effective contribution rates, nets declared
// contributions against what single-phase classification says was
// actually due, and restates the resulting credit with the monetary
// index.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/reference"
)

// RateSource selects where the effective rate comes from.
type RateSource string

const (
	// RateSourceBracket derives the rate from the progressive bracket
	// table and the trailing twelve-month revenue.
	RateSourceBracket RateSource = "bracket"
	// RateSourceFiling trusts the effective rate declared in the filing.
	RateSourceFiling RateSource = "filing"
)

// Rate is a resolved effective rate with its bracket provenance. When
// the rate comes from the filing, NominalRate and Deduction are zero.
type Rate struct {
	Effective   decimal.Decimal
	NominalRate decimal.Decimal
	Deduction   decimal.Decimal
}

// Resolver resolves the period's effective rate.
type Resolver struct {
	table  *reference.BracketTable
	source RateSource
}

// NewResolver creates a resolver over a bracket table.
func NewResolver(table *reference.BracketTable, source RateSource) *Resolver {
	if source == "" {
		source = RateSourceBracket
	}
	return &Resolver{table: table, source: source}
}

// Resolve computes the effective rate for a filing. Under the bracket
// source the formula is (trailing*nominal - deduction) / trailing,
// which fails when the trailing revenue is zero or negative.
func (r *Resolver) Resolve(filing model.FilingRecord) (Rate, error) {
	if r.source == RateSourceFiling {
		if filing.DeclaredEffectiveRate.IsZero() {
			return Rate{}, model.NewRateResolutionError(filing.TrailingRevenue,
				"filing carries no declared effective rate")
		}
		return Rate{Effective: filing.DeclaredEffectiveRate}, nil
	}

	trailing := filing.TrailingRevenue
	if trailing.LessThanOrEqual(decimal.Zero) {
		return Rate{}, model.NewRateResolutionError(trailing,
			"trailing revenue must be positive to resolve a bracket")
	}
	bracket, ok := r.table.Find(trailing)
	if !ok {
		return Rate{}, model.NewRateResolutionError(trailing, "no bracket covers the trailing revenue")
	}

	effective := trailing.Mul(bracket.NominalRate).Sub(bracket.Deduction).Div(trailing)
	if effective.IsNegative() {
		return Rate{}, model.NewRateResolutionError(trailing,
			"bracket deduction exceeds the nominal amount due")
	}
	return Rate{
		Effective:   effective,
		NominalRate: bracket.NominalRate,
		Deduction:   bracket.Deduction,
	}, nil
}

// Proportions splits the unified rate into its PIS and COFINS shares.
type Proportions struct {
	PIS    decimal.Decimal
	COFINS decimal.Decimal
}

// DefaultProportions returns the statutory commerce split.
func DefaultProportions() Proportions {
	return Proportions{
		PIS:    decimal.RequireFromString("0.0276"),
		COFINS: decimal.RequireFromString("0.1274"),
	}
}

// SubRates applies the proportions to an effective rate.
func (p Proportions) SubRates(effective decimal.Decimal) (pis, cofins decimal.Decimal) {
	return effective.Mul(p.PIS), effective.Mul(p.COFINS)
}
