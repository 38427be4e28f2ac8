package reference

import (
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/model"
)

// IndexSeries holds monthly monetary index rates keyed by period. Rates
// are monthly fractions (0.0104 for 1.04%).
type IndexSeries struct {
	rates map[model.Period]decimal.Decimal
}

// LoadIndexSeries reads a rate series from a JSON object mapping
// "YYYY-MM" (or "MM/YYYY") keys to monthly rates.
func LoadIndexSeries(path string) (*IndexSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewReferenceDataError("index", path, err)
	}
	var byKey map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, model.NewReferenceDataError("index", path, err)
	}

	series := NewIndexSeries()
	for key, rate := range byKey {
		p, err := model.ParsePeriod(key)
		if err != nil {
			return nil, model.NewReferenceDataError("index", path, err)
		}
		series.Set(p, rate)
	}
	return series, nil
}

// NewIndexSeries creates an empty series.
func NewIndexSeries() *IndexSeries {
	return &IndexSeries{rates: make(map[model.Period]decimal.Decimal)}
}

// Set records the rate for a period.
func (s *IndexSeries) Set(p model.Period, rate decimal.Decimal) {
	s.rates[p] = rate
}

// Rate returns the monthly rate for a period. Missing months yield a
// zero rate, degrading the accrual rather than failing it.
func (s *IndexSeries) Rate(p model.Period) (decimal.Decimal, bool) {
	rate, ok := s.rates[p]
	return rate, ok
}

// Len returns the number of months loaded.
func (s *IndexSeries) Len() int {
	return len(s.rates)
}
