// Package model defines the domain types for fiscal document processing:
// invoices, line items, cancellation events, filing records, and the
// per-period credit report.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regime is the tax treatment of a line item for PIS/COFINS purposes.
type Regime string

const (
	// RegimeSinglePhase marks items whose contributions were collected
	// upstream and are not owed again at the retail stage.
	RegimeSinglePhase Regime = "single-phase"
	// RegimeRegular marks items taxed normally.
	RegimeRegular Regime = "regular"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// TaxDetail holds the declared values of one contribution on a line item.
type TaxDetail struct {
	CST    string          `json:"cst"`
	Base   decimal.Decimal `json:"base"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
	Group  string          `json:"group,omitempty"` // source sub-block, e.g. PISAliq, PISNT
}

// LineItem is one product entry of an invoice.
type LineItem struct {
	Number      int    `json:"number"`
	Code        string `json:"code"`
	EAN         string `json:"ean,omitempty"`
	Description string `json:"description"`
	NCM         string `json:"ncm"`
	CFOP        string `json:"cfop"`
	Unit        string `json:"unit,omitempty"`

	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Gross     decimal.Decimal `json:"gross"`
	Discount  decimal.Decimal `json:"discount"`
	// Net is always recomputed as Gross - Discount, never copied from
	// the source document.
	Net decimal.Decimal `json:"net"`

	PIS    TaxDetail `json:"pis"`
	COFINS TaxDetail `json:"cofins"`

	Regime      Regime `json:"regime,omitempty"`
	RegimeByNCM bool   `json:"regime_by_ncm,omitempty"`
	RegimeByCST bool   `json:"regime_by_cst,omitempty"`

	Valid       bool     `json:"valid"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ComputeNet recalculates the net value from gross and discount and
// stores it on the item.
func (it *LineItem) ComputeNet() decimal.Decimal {
	it.Net = it.Gross.Sub(it.Discount)
	return it.Net
}

// AddDiagnostic records a validation problem and degrades the item's
// validity flag. The offending value is kept.
func (it *LineItem) AddDiagnostic(msg string) {
	it.Diagnostics = append(it.Diagnostics, msg)
	it.Valid = false
}

var exemptCSTs = map[string]bool{
	"04": true, "05": true, "06": true,
	"07": true, "08": true, "09": true,
}

// IsExempt reports whether either contribution carries a CST from the
// exempt range 04-09.
func (it *LineItem) IsExempt() bool {
	return exemptCSTs[it.PIS.CST] || exemptCSTs[it.COFINS.CST]
}

// Invoice is one electronic fiscal document (NFe).
type Invoice struct {
	AccessKey       string    `json:"access_key"`
	Number          string    `json:"number"`
	Series          string    `json:"series"`
	ModelCode       string    `json:"model_code,omitempty"`
	OperationNature string    `json:"operation_nature,omitempty"`
	StateCode       string    `json:"state_code,omitempty"`
	IssuedAt        time.Time `json:"issued_at"`

	IssuerTaxID    string `json:"issuer_tax_id"`
	IssuerName     string `json:"issuer_name"`
	IssuerStateReg string `json:"issuer_state_reg,omitempty"`

	RecipientTaxID string `json:"recipient_tax_id,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`

	GrossTotal    decimal.Decimal `json:"gross_total"`    // vProd
	DiscountTotal decimal.Decimal `json:"discount_total"` // vDesc
	InvoiceTotal  decimal.Decimal `json:"invoice_total"`  // vNF
	PISTotal      decimal.Decimal `json:"pis_total"`
	COFINSTotal   decimal.Decimal `json:"cofins_total"`

	Items []LineItem `json:"items"`

	Status      Status   `json:"status"`
	Valid       bool     `json:"valid"`
	Diagnostics []string `json:"diagnostics,omitempty"`

	AdditionalInfo string    `json:"additional_info,omitempty"`
	SourceFile     string    `json:"source_file,omitempty"`
	ProcessedAt    time.Time `json:"processed_at,omitempty"`
}

// AddDiagnostic records a validation problem and degrades the invoice's
// validity flag.
func (inv *Invoice) AddDiagnostic(msg string) {
	inv.Diagnostics = append(inv.Diagnostics, msg)
	inv.Valid = false
}

// Cancel marks the invoice as cancelled.
func (inv *Invoice) Cancel() {
	inv.Status = StatusCancelled
}

// Cancelled reports whether the invoice is cancelled.
func (inv *Invoice) Cancelled() bool {
	return inv.Status == StatusCancelled
}

// ItemGrossSum sums the gross values of all line items. Used to
// cross-check the declared invoice totals.
func (inv *Invoice) ItemGrossSum() decimal.Decimal {
	sum := decimal.Zero
	for i := range inv.Items {
		sum = sum.Add(inv.Items[i].Gross)
	}
	return sum
}

// ItemNetSum sums the recomputed net values of all line items.
func (inv *Invoice) ItemNetSum() decimal.Decimal {
	sum := decimal.Zero
	for i := range inv.Items {
		sum = sum.Add(inv.Items[i].Net)
	}
	return sum
}

// RevenueByRegime returns the net revenue of items tagged with the given
// regime.
func (inv *Invoice) RevenueByRegime(r Regime) decimal.Decimal {
	sum := decimal.Zero
	for i := range inv.Items {
		if inv.Items[i].Regime == r {
			sum = sum.Add(inv.Items[i].Net)
		}
	}
	return sum
}
