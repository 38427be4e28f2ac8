package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/money"
)

// Engine folds classified invoices into per-regime revenue totals and
// nets the declared contributions against what was actually due on the
// regular portion. Cancelled invoices are counted but contribute no
// revenue.
type Engine struct {
	proportions Proportions

	singlePhase decimal.Decimal
	regular     decimal.Decimal

	counts          model.ReportCounts
	inconsistencies []string
}

// NewEngine creates a credit engine with the given rate split.
func NewEngine(proportions Proportions) *Engine {
	return &Engine{
		proportions: proportions,
		singlePhase: decimal.Zero,
		regular:     decimal.Zero,
	}
}

// Add folds one invoice into the totals.
func (e *Engine) Add(inv *model.Invoice) {
	if inv.Cancelled() {
		e.counts.InvoicesCancelled++
		return
	}
	if inv.Valid {
		e.counts.InvoicesValid++
	} else {
		e.counts.InvoicesInvalid++
	}

	for i := range inv.Items {
		switch inv.Items[i].Regime {
		case model.RegimeSinglePhase:
			e.counts.ItemsSinglePhase++
		case model.RegimeRegular:
			e.counts.ItemsRegular++
		}
	}
	e.singlePhase = e.singlePhase.Add(inv.RevenueByRegime(model.RegimeSinglePhase))
	e.regular = e.regular.Add(inv.RevenueByRegime(model.RegimeRegular))
}

// AddInconsistency records a non-fatal divergence for the report.
func (e *Engine) AddInconsistency(msg string) {
	e.inconsistencies = append(e.inconsistencies, msg)
}

// SinglePhaseRevenue returns the accumulated single-phase revenue.
func (e *Engine) SinglePhaseRevenue() decimal.Decimal { return e.singlePhase }

// RegularRevenue returns the accumulated regular revenue.
func (e *Engine) RegularRevenue() decimal.Decimal { return e.regular }

// Counts returns a copy of the accumulated batch statistics.
func (e *Engine) Counts() model.ReportCounts { return e.counts }

// CheckAgainstFiling compares the accumulated total revenue against the
// filed gross revenue for the period. A divergence beyond tolerance is
// recorded as an inconsistency, never an error.
func (e *Engine) CheckAgainstFiling(filing model.FilingRecord, tolerance decimal.Decimal) {
	total := e.singlePhase.Add(e.regular)
	if filing.GrossRevenuePeriod.IsZero() {
		return
	}
	if !money.WithinTolerance(total, filing.GrossRevenuePeriod, tolerance) {
		e.AddInconsistency(fmt.Sprintf(
			"aggregated revenue %s diverges from filed gross revenue %s",
			total.StringFixed(money.Scale), filing.GrossRevenuePeriod.StringFixed(money.Scale)))
	}
}

// Compute assembles the period report from the accumulated totals, the
// resolved rate, and the filing's declared contributions. The accrual
// fields are left at factor one for the caller to restate.
func (e *Engine) Compute(period model.Period, filing model.FilingRecord, rate Rate) *model.PeriodCreditReport {
	pisRate, cofinsRate := e.proportions.SubRates(rate.Effective)

	pis := contributionCredit("PIS", pisRate, e.regular, filing.DeclaredPIS)
	cofins := contributionCredit("COFINS", cofinsRate, e.regular, filing.DeclaredCOFINS)
	total := pis.Credit.Add(cofins.Credit)

	report := &model.PeriodCreditReport{
		Period:             period.String(),
		SinglePhaseRevenue: money.Round(e.singlePhase),
		RegularRevenue:     money.Round(e.regular),
		NominalRate:        rate.NominalRate,
		Deduction:          rate.Deduction,
		EffectiveRate:      rate.Effective,
		PIS:                pis,
		COFINS:             cofins,
		TotalCredit:        money.Round(total),
		AccrualFactor:      decimal.NewFromInt(1),
		AdjustedCredit:     money.Round(total),
		Counts:             e.counts,
		Inconsistencies:    e.inconsistencies,
	}

	if grand := e.singlePhase.Add(e.regular); grand.IsPositive() {
		report.SinglePhaseShare = money.Percent(e.singlePhase.Div(grand))
	}
	return report
}

func contributionCredit(name string, subRate, regularRevenue, declared decimal.Decimal) model.ContributionCredit {
	due := money.Round(regularRevenue.Mul(subRate))
	return model.ContributionCredit{
		Contribution: name,
		SubRate:      subRate,
		Declared:     declared,
		Due:          due,
		Credit:       money.Round(declared.Sub(due)),
	}
}
