package tax_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/reference"
	"github.com/larachristiea/bumerangue/internal/tax"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolver_BracketFormula(t *testing.T) {
	// One band covering the revenue keeps the expectation exact:
	// (1000000 * 0.095 - 13860) / 1000000 = 0.08114
	table := reference.NewBracketTable([]reference.Bracket{
		{Floor: dec("0"), Ceiling: dec("2000000"), NominalRate: dec("0.095"), Deduction: dec("13860")},
	})
	resolver := tax.NewResolver(table, tax.RateSourceBracket)

	rate, err := resolver.Resolve(model.FilingRecord{TrailingRevenue: dec("1000000")})
	require.NoError(t, err)

	assert.Equal(t, "0.08114", rate.Effective.String())
	assert.Equal(t, "0.095", rate.NominalRate.String())
	assert.Equal(t, "13860", rate.Deduction.String())
}

func TestResolver_ZeroRevenue(t *testing.T) {
	resolver := tax.NewResolver(reference.DefaultBracketTable(), tax.RateSourceBracket)

	_, err := resolver.Resolve(model.FilingRecord{TrailingRevenue: decimal.Zero})
	require.Error(t, err)

	var rateErr *model.RateResolutionError
	assert.True(t, errors.As(err, &rateErr))
}

func TestResolver_AboveTableCeiling(t *testing.T) {
	resolver := tax.NewResolver(reference.DefaultBracketTable(), tax.RateSourceBracket)

	_, err := resolver.Resolve(model.FilingRecord{TrailingRevenue: dec("5000000")})
	require.Error(t, err)

	var rateErr *model.RateResolutionError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, "5000000", rateErr.Revenue.String())
}

func TestResolver_NegativeEffectiveFails(t *testing.T) {
	table := reference.NewBracketTable([]reference.Bracket{
		{Floor: dec("0"), Ceiling: dec("1000"), NominalRate: dec("0.04"), Deduction: dec("500")},
	})
	resolver := tax.NewResolver(table, tax.RateSourceBracket)

	_, err := resolver.Resolve(model.FilingRecord{TrailingRevenue: dec("100")})
	require.Error(t, err)

	var rateErr *model.RateResolutionError
	assert.True(t, errors.As(err, &rateErr))
}

func TestResolver_BoundaryContinuity(t *testing.T) {
	// The deductions are constructed so the effective rate carries over
	// smoothly from one band into the next. The top band is the
	// exception: it pulls ICMS and ISS out of the unified rate, so the
	// walk stops at the fifth band's floor.
	resolver := tax.NewResolver(reference.DefaultBracketTable(), tax.RateSourceBracket)

	boundaries := []struct {
		ceiling   string
		nextFloor string
	}{
		{"180000", "180000.01"},
		{"360000", "360000.01"},
		{"720000", "720000.01"},
		{"1800000", "1800000.01"},
	}

	for _, b := range boundaries {
		below, err := resolver.Resolve(model.FilingRecord{TrailingRevenue: dec(b.ceiling)})
		require.NoError(t, err, "ceiling %s", b.ceiling)
		above, err := resolver.Resolve(model.FilingRecord{TrailingRevenue: dec(b.nextFloor)})
		require.NoError(t, err, "floor %s", b.nextFloor)

		assert.True(t, above.Effective.GreaterThanOrEqual(below.Effective),
			"effective rate dropped across %s -> %s: %s < %s",
			b.ceiling, b.nextFloor, above.Effective.String(), below.Effective.String())
	}
}

func TestResolver_FilingSource(t *testing.T) {
	resolver := tax.NewResolver(nil, tax.RateSourceFiling)

	rate, err := resolver.Resolve(model.FilingRecord{
		TrailingRevenue:       dec("1000000"),
		DeclaredEffectiveRate: dec("0.081"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.081", rate.Effective.String())

	_, err = resolver.Resolve(model.FilingRecord{TrailingRevenue: dec("1000000")})
	require.Error(t, err)
}

func TestProportions_SubRates(t *testing.T) {
	p := tax.DefaultProportions()
	pis, cofins := p.SubRates(dec("0.08114"))

	assert.Equal(t, "0.002239464", pis.String())
	assert.Equal(t, "0.010337236", cofins.String())
}

func TestEngine_CreditNetting(t *testing.T) {
	// Engineered so PIS due = 400 on a declared 1000, leaving 600.
	engine := tax.NewEngine(tax.Proportions{PIS: dec("0.4"), COFINS: dec("0.8")})

	inv := &model.Invoice{
		Status: model.StatusActive,
		Valid:  true,
		Items: []model.LineItem{
			{Regime: model.RegimeRegular, Net: dec("10000")},
			{Regime: model.RegimeSinglePhase, Net: dec("30000")},
		},
	}
	engine.Add(inv)

	filing := model.FilingRecord{
		Period:         model.Period{Year: 2024, Month: 1},
		DeclaredPIS:    dec("1000"),
		DeclaredCOFINS: dec("1000"),
	}
	report := engine.Compute(filing.Period, filing, tax.Rate{Effective: dec("0.1")})

	// PIS: due = 10000 * 0.1 * 0.4 = 400, credit = 1000 - 400 = 600
	assert.Equal(t, "400", report.PIS.Due.String())
	assert.Equal(t, "600", report.PIS.Credit.String())
	// COFINS: due = 10000 * 0.1 * 0.8 = 800, credit = 200
	assert.Equal(t, "800", report.COFINS.Due.String())
	assert.Equal(t, "200", report.COFINS.Credit.String())
	assert.Equal(t, "800", report.TotalCredit.String())

	assert.Equal(t, "30000", report.SinglePhaseRevenue.String())
	assert.Equal(t, "10000", report.RegularRevenue.String())
	assert.Equal(t, "75", report.SinglePhaseShare.String())
	assert.Equal(t, 1, report.Counts.InvoicesValid)
}

func TestEngine_NegativeCreditPreserved(t *testing.T) {
	engine := tax.NewEngine(tax.Proportions{PIS: dec("0.4"), COFINS: dec("0.8")})
	engine.Add(&model.Invoice{
		Status: model.StatusActive,
		Valid:  true,
		Items:  []model.LineItem{{Regime: model.RegimeRegular, Net: dec("10000")}},
	})

	filing := model.FilingRecord{DeclaredPIS: dec("100"), DeclaredCOFINS: dec("100")}
	report := engine.Compute(model.Period{Year: 2024, Month: 1}, filing, tax.Rate{Effective: dec("0.1")})

	assert.Equal(t, "-300", report.PIS.Credit.String())
	assert.Equal(t, "-700", report.COFINS.Credit.String())
	assert.Equal(t, "-1000", report.TotalCredit.String())
}

func TestEngine_CancelledInvoiceExcluded(t *testing.T) {
	engine := tax.NewEngine(tax.DefaultProportions())

	cancelled := &model.Invoice{
		Status: model.StatusCancelled,
		Valid:  true,
		Items:  []model.LineItem{{Regime: model.RegimeRegular, Net: dec("5000")}},
	}
	engine.Add(cancelled)

	assert.True(t, engine.RegularRevenue().IsZero())
	assert.Equal(t, 1, engine.Counts().InvoicesCancelled)
	assert.Equal(t, 0, engine.Counts().InvoicesValid)
	assert.Equal(t, 0, engine.Counts().ItemsRegular)
}

func TestEngine_CheckAgainstFiling(t *testing.T) {
	engine := tax.NewEngine(tax.DefaultProportions())
	engine.Add(&model.Invoice{
		Status: model.StatusActive,
		Valid:  true,
		Items:  []model.LineItem{{Regime: model.RegimeRegular, Net: dec("100")}},
	})

	filing := model.FilingRecord{GrossRevenuePeriod: dec("500")}
	engine.CheckAgainstFiling(filing, dec("0.01"))

	report := engine.Compute(model.Period{Year: 2024, Month: 1}, filing, tax.Rate{Effective: dec("0.1")})
	require.Len(t, report.Inconsistencies, 1)
	assert.Contains(t, report.Inconsistencies[0], "diverges")
}

func TestAccrual_Factor(t *testing.T) {
	series := reference.NewIndexSeries()
	series.Set(model.Period{Year: 2024, Month: 2}, dec("0.01"))
	series.Set(model.Period{Year: 2024, Month: 3}, dec("0.02"))
	accrual := tax.NewAccrual(series)

	res := accrual.Factor(model.Period{Year: 2024, Month: 1}, model.Period{Year: 2024, Month: 3})
	// (1 + 0.01) * (1 + 0.02) = 1.0302
	assert.Equal(t, "1.0302", res.Factor.String())
	assert.Empty(t, res.MissingMonths)
}

func TestAccrual_SamePeriod(t *testing.T) {
	accrual := tax.NewAccrual(reference.NewIndexSeries())
	p := model.Period{Year: 2024, Month: 1}

	res := accrual.Factor(p, p)
	assert.Equal(t, "1", res.Factor.String())
}

func TestAccrual_MissingMonths(t *testing.T) {
	series := reference.NewIndexSeries()
	series.Set(model.Period{Year: 2024, Month: 2}, dec("0.01"))
	accrual := tax.NewAccrual(series)

	res := accrual.Factor(model.Period{Year: 2024, Month: 1}, model.Period{Year: 2024, Month: 3})
	assert.Equal(t, "1.01", res.Factor.String())
	require.Len(t, res.MissingMonths, 1)
	assert.Equal(t, model.Period{Year: 2024, Month: 3}, res.MissingMonths[0])
}

func TestAccrual_Restate(t *testing.T) {
	series := reference.NewIndexSeries()
	series.Set(model.Period{Year: 2024, Month: 2}, dec("0.04"))
	accrual := tax.NewAccrual(series)

	adjusted, res := accrual.Restate(dec("600"),
		model.Period{Year: 2024, Month: 1}, model.Period{Year: 2024, Month: 2})
	assert.Equal(t, "1.04", res.Factor.String())
	assert.Equal(t, "624", adjusted.String())
}

func TestAccrual_NilSeries(t *testing.T) {
	accrual := tax.NewAccrual(nil)
	res := accrual.Factor(model.Period{Year: 2024, Month: 1}, model.Period{Year: 2025, Month: 1})
	assert.Equal(t, "1", res.Factor.String())
}
