// Package classify assigns a PIS/COFINS regime to each line item. The
// decision is hierarchical: a product whose NCM appears in the
// single-phase table is single-phase regardless of how the emitter
// filled the tax blocks; otherwise an exempt-family CST marks the item
// single-phase as a fallback; everything else is taxed under the
// regular regime.
package classify

import (
	"github.com/larachristiea/bumerangue/internal/model"
)

// RegimeTable answers whether an NCM code is listed as single-phase.
type RegimeTable interface {
	SinglePhase(ncm string) bool
}

// fallbackCSTs are the situation codes that mark an item single-phase
// when its NCM is not in the table. Only the monophasic subset of the
// exempt family qualifies.
var fallbackCSTs = map[string]bool{"04": true, "05": true, "06": true}

// Classifier stamps items with their regime.
type Classifier struct {
	table RegimeTable
}

// New creates a classifier backed by the given regime table.
func New(table RegimeTable) *Classifier {
	return &Classifier{table: table}
}

// ClassifyInvoice classifies every item of the invoice in place.
func (c *Classifier) ClassifyInvoice(inv *model.Invoice) {
	for i := range inv.Items {
		c.ClassifyItem(&inv.Items[i])
	}
}

// ClassifyItem decides the item's regime and records which rule fired.
func (c *Classifier) ClassifyItem(it *model.LineItem) {
	it.RegimeByNCM = false
	it.RegimeByCST = false

	if c.table != nil && c.table.SinglePhase(it.NCM) {
		it.Regime = model.RegimeSinglePhase
		it.RegimeByNCM = true
		return
	}
	if fallbackCSTs[it.PIS.CST] || fallbackCSTs[it.COFINS.CST] {
		it.Regime = model.RegimeSinglePhase
		it.RegimeByCST = true
		return
	}
	it.Regime = model.RegimeRegular
}
