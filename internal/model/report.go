package model

import "github.com/shopspring/decimal"

// ContributionCredit is the credit computation for a single contribution
// (PIS or COFINS) within a period.
type ContributionCredit struct {
	Contribution string          `json:"contribution"`
	SubRate      decimal.Decimal `json:"sub_rate"`
	Declared     decimal.Decimal `json:"declared"`
	Due          decimal.Decimal `json:"due"`
	// Credit = Declared - Due. Negative means the filer under-collected
	// and owes more; the sign is preserved, never clamped.
	Credit decimal.Decimal `json:"credit"`
}

// ReportCounts are the batch statistics carried on every report, even
// for partial runs.
type ReportCounts struct {
	DocumentsScanned  int `json:"documents_scanned"`
	DocumentErrors    int `json:"document_errors"`
	InvoicesValid     int `json:"invoices_valid"`
	InvoicesInvalid   int `json:"invoices_invalid"`
	InvoicesCancelled int `json:"invoices_cancelled"`
	ItemsSinglePhase  int `json:"items_single_phase"`
	ItemsRegular      int `json:"items_regular"`
}

// PeriodCreditReport is the consolidated output of one processing run.
// It is assembled once and never mutated after emission.
type PeriodCreditReport struct {
	Period string `json:"period"`

	SinglePhaseRevenue decimal.Decimal `json:"single_phase_revenue"`
	RegularRevenue     decimal.Decimal `json:"regular_revenue"`
	// SinglePhaseShare is the single-phase portion of total revenue,
	// in percent.
	SinglePhaseShare decimal.Decimal `json:"single_phase_share"`

	NominalRate   decimal.Decimal `json:"nominal_rate"`
	Deduction     decimal.Decimal `json:"deduction"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`

	PIS    ContributionCredit `json:"pis"`
	COFINS ContributionCredit `json:"cofins"`

	TotalCredit    decimal.Decimal `json:"total_credit"`
	AccrualFactor  decimal.Decimal `json:"accrual_factor"`
	AdjustedCredit decimal.Decimal `json:"adjusted_credit"`

	Counts ReportCounts `json:"counts"`

	// Inconsistencies holds non-fatal divergences found while
	// aggregating, such as item totals drifting from declared totals.
	Inconsistencies []string `json:"inconsistencies,omitempty"`
	// Degraded is set when the run proceeded without the regime
	// reference table, classifying by CST fallback only.
	Degraded bool `json:"degraded,omitempty"`
}
