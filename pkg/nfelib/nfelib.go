// Package nfelib provides a public API for NFe tax-credit recovery.
//
// This package exposes the core types for parsing NFe documents,
// classifying line items by contribution regime, and computing the
// recoverable PIS/COFINS credit for a filing period.
//
// Example usage:
//
//	proc := nfelib.NewProcessor(nfelib.DefaultOptions())
//	inv, err := proc.ParseInvoice(ctx, xmlBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(inv.AccessKey)
package nfelib

import "github.com/larachristiea/bumerangue/internal/model"

// Re-export core types for public API
type (
	Invoice            = model.Invoice
	LineItem           = model.LineItem
	TaxDetail          = model.TaxDetail
	CancellationEvent  = model.CancellationEvent
	FilingRecord       = model.FilingRecord
	Period             = model.Period
	PeriodCreditReport = model.PeriodCreditReport
	ContributionCredit = model.ContributionCredit
	Regime             = model.Regime
	Status             = model.Status
)

// Re-export regimes
const (
	RegimeSinglePhase = model.RegimeSinglePhase
	RegimeRegular     = model.RegimeRegular
)

// Re-export statuses
const (
	StatusActive    = model.StatusActive
	StatusCancelled = model.StatusCancelled
)

// Re-export error types
type (
	ParseError          = model.ParseError
	StructuralError     = model.StructuralError
	RateResolutionError = model.RateResolutionError
	ReferenceDataError  = model.ReferenceDataError
)

// ParsePeriod parses "YYYY-MM" or "MM/YYYY" period strings.
var ParsePeriod = model.ParsePeriod
