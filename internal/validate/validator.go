// Package validate implements format checks for Brazilian fiscal
// identifiers. Validation never fails a document: problems are
// accumulated as diagnostics on the invoice and its items, degrading
// their validity flags, so credit estimation can proceed even when a
// secondary identifier is malformed.
package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/money"
)

// validCSTs enumerates the PIS/COFINS situation codes admitted by the
// tax authority.
var validCSTs = map[string]bool{
	"01": true, "02": true, "03": true, "04": true, "05": true,
	"06": true, "07": true, "08": true, "09": true, "49": true,
	"50": true, "51": true, "52": true, "53": true, "54": true,
	"55": true, "56": true, "60": true, "61": true, "62": true,
	"63": true, "64": true, "65": true, "66": true, "67": true,
	"70": true, "71": true, "72": true, "73": true, "74": true,
	"75": true, "98": true, "99": true,
}

// cfopFirstDigits are the admissible leading digits of an operation
// code.
var cfopFirstDigits = map[byte]bool{'1': true, '2': true, '3': true, '5': true, '6': true, '7': true}

// Validator annotates invoices with field diagnostics.
type Validator struct {
	totalTolerance decimal.Decimal
}

// New creates a validator. totalTolerance bounds the accepted drift
// between the declared invoice total and the sum of its items.
func New(totalTolerance decimal.Decimal) *Validator {
	return &Validator{totalTolerance: totalTolerance}
}

// ValidateInvoice checks every field of the invoice and its items,
// appending diagnostics in place. It never returns an error.
func (v *Validator) ValidateInvoice(inv *model.Invoice) {
	if !ValidAccessKey(inv.AccessKey) {
		inv.AddDiagnostic(fmt.Sprintf("invalid access key %q", inv.AccessKey))
	}
	if !ValidTaxID(inv.IssuerTaxID) {
		inv.AddDiagnostic(fmt.Sprintf("invalid issuer tax id %q", inv.IssuerTaxID))
	}
	if inv.RecipientTaxID != "" && !ValidTaxID(inv.RecipientTaxID) {
		inv.AddDiagnostic(fmt.Sprintf("invalid recipient tax id %q", inv.RecipientTaxID))
	}

	for i := range inv.Items {
		v.validateItem(&inv.Items[i])
	}

	// Cross-check: declared gross total should match the item sum. The
	// divergence is flagged, never corrected.
	itemSum := inv.ItemGrossSum()
	if !inv.GrossTotal.IsZero() && !money.WithinTolerance(inv.GrossTotal, itemSum, v.totalTolerance) {
		inv.AddDiagnostic(fmt.Sprintf("declared gross total %s diverges from item sum %s",
			inv.GrossTotal.String(), itemSum.String()))
	}
}

func (v *Validator) validateItem(it *model.LineItem) {
	if !ValidNCM(it.NCM) {
		it.AddDiagnostic(fmt.Sprintf("invalid NCM %q", it.NCM))
	}
	if !ValidCFOP(it.CFOP) {
		it.AddDiagnostic(fmt.Sprintf("invalid CFOP %q", it.CFOP))
	}
	if it.PIS.CST != "" && !ValidCST(it.PIS.CST) {
		it.AddDiagnostic(fmt.Sprintf("invalid PIS CST %q", it.PIS.CST))
	}
	if it.COFINS.CST != "" && !ValidCST(it.COFINS.CST) {
		it.AddDiagnostic(fmt.Sprintf("invalid COFINS CST %q", it.COFINS.CST))
	}
}

// ValidTaxID accepts a 14-digit CNPJ or an 11-digit CPF, rejecting the
// known-invalid all-equal-digit sentinels.
func ValidTaxID(s string) bool {
	digits := digitsOf(s)
	if len(digits) != 14 && len(digits) != 11 {
		return false
	}
	return !allEqual(digits)
}

// ValidAccessKey accepts a 44-digit access key, tolerating the "NFe"
// prefix some emitters include.
func ValidAccessKey(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "NFe")
	digits := digitsOf(s)
	return len(digits) == 44 && len(digits) == len(s)
}

// ValidNCM accepts exactly 8 numeric digits.
func ValidNCM(s string) bool {
	return len(s) == 8 && allDigits(s)
}

// ValidCFOP accepts exactly 4 numeric digits with an admissible leading
// digit.
func ValidCFOP(s string) bool {
	if len(s) != 4 || !allDigits(s) {
		return false
	}
	return cfopFirstDigits[s[0]]
}

// ValidCST accepts a 2-digit code from the enumerated PIS/COFINS set.
func ValidCST(s string) bool {
	return validCSTs[s]
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allEqual(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
