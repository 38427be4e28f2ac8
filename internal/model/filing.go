package model

import "github.com/shopspring/decimal"

// FilingRecord is the periodic simplified-regime declaration (PGDAS)
// against which computed amounts are reconciled. It arrives as a JSON
// document produced by the external filing extractor.
type FilingRecord struct {
	TaxpayerID string `json:"taxpayer_id"`
	Name       string `json:"name,omitempty"`
	Period     Period `json:"period"`

	// GrossRevenuePeriod is the declared gross revenue of the filing
	// period itself, used for the aggregate consistency check.
	GrossRevenuePeriod decimal.Decimal `json:"gross_revenue_period"`
	// TrailingRevenue is the RBT12 figure used to resolve the bracket.
	TrailingRevenue decimal.Decimal `json:"trailing_revenue"`

	DeclaredPIS    decimal.Decimal `json:"declared_pis"`
	DeclaredCOFINS decimal.Decimal `json:"declared_cofins"`

	// PISShare and COFINSShare are the proportions of the effective rate
	// attributed to each contribution. They are independent and do not
	// sum to 1; other tributes absorb the remainder.
	PISShare    decimal.Decimal `json:"pis_share"`
	COFINSShare decimal.Decimal `json:"cofins_share"`

	// DeclaredEffectiveRate is the rate printed on the filing. Only
	// consulted when the run is configured to trust the filing over the
	// bracket formula.
	DeclaredEffectiveRate decimal.Decimal `json:"declared_effective_rate,omitempty"`
}
