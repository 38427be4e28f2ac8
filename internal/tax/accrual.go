package tax

import (
	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/money"
	"github.com/larachristiea/bumerangue/internal/reference"
)

// Accrual restates a credit from its origin period to a target period
// by compounding the monthly monetary index.
type Accrual struct {
	series *reference.IndexSeries
}

// NewAccrual creates an accrual calculator over an index series. A nil
// series yields factor one for every interval.
func NewAccrual(series *reference.IndexSeries) *Accrual {
	return &Accrual{series: series}
}

// AccrualResult is a compounded factor plus the months the series did
// not cover. Missing months compound at zero, understating the
// restatement rather than failing it.
type AccrualResult struct {
	Factor        decimal.Decimal
	MissingMonths []model.Period
}

// Factor compounds (1 + rate) over every month strictly after origin up
// to and including target. When target does not follow origin the
// factor is one.
func (a *Accrual) Factor(origin, target model.Period) AccrualResult {
	result := AccrualResult{Factor: decimal.NewFromInt(1)}
	if a.series == nil || !origin.Before(target) {
		return result
	}

	one := decimal.NewFromInt(1)
	for p := origin.Next(); ; p = p.Next() {
		rate, ok := a.series.Rate(p)
		if !ok {
			result.MissingMonths = append(result.MissingMonths, p)
		} else {
			result.Factor = result.Factor.Mul(one.Add(rate))
		}
		if p == target {
			break
		}
	}
	return result
}

// Restate applies the accrual factor to an amount, rounded to the
// monetary scale.
func (a *Accrual) Restate(amount decimal.Decimal, origin, target model.Period) (decimal.Decimal, AccrualResult) {
	result := a.Factor(origin, target)
	return money.Round(amount.Mul(result.Factor)), result
}
