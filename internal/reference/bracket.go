package reference

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/model"
)

// Bracket is one band of the progressive rate table. A zero Ceiling
// marks an open-ended top band.
type Bracket struct {
	Floor       decimal.Decimal `json:"floor"`
	Ceiling     decimal.Decimal `json:"ceiling"`
	NominalRate decimal.Decimal `json:"nominal_rate"`
	Deduction   decimal.Decimal `json:"deduction"`
}

// Contains reports whether revenue falls inside the bracket.
func (b Bracket) Contains(revenue decimal.Decimal) bool {
	if revenue.LessThan(b.Floor) {
		return false
	}
	return b.Ceiling.IsZero() || revenue.LessThanOrEqual(b.Ceiling)
}

// BracketTable is an ordered progressive rate table.
type BracketTable struct {
	brackets []Bracket
}

// DefaultBracketTable returns the commerce table in force, used when no
// external table is configured.
func DefaultBracketTable() *BracketTable {
	mk := func(floor, ceiling, rate, deduction string) Bracket {
		return Bracket{
			Floor:       decimal.RequireFromString(floor),
			Ceiling:     decimal.RequireFromString(ceiling),
			NominalRate: decimal.RequireFromString(rate),
			Deduction:   decimal.RequireFromString(deduction),
		}
	}
	return NewBracketTable([]Bracket{
		mk("0", "180000", "0.04", "0"),
		mk("180000.01", "360000", "0.073", "5940"),
		mk("360000.01", "720000", "0.095", "13860"),
		mk("720000.01", "1800000", "0.107", "22500"),
		mk("1800000.01", "3600000", "0.143", "87300"),
		mk("3600000.01", "4800000", "0.19", "378000"),
	})
}

// LoadBracketTable reads a bracket table from a JSON file holding a
// list of brackets.
func LoadBracketTable(path string) (*BracketTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewReferenceDataError("brackets", path, err)
	}
	var brackets []Bracket
	if err := json.Unmarshal(raw, &brackets); err != nil {
		return nil, model.NewReferenceDataError("brackets", path, err)
	}
	if len(brackets) == 0 {
		return nil, model.NewReferenceDataError("brackets", path, nil)
	}
	return NewBracketTable(brackets), nil
}

// NewBracketTable builds a table, sorting bands by floor.
func NewBracketTable(brackets []Bracket) *BracketTable {
	sorted := make([]Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Floor.LessThan(sorted[j].Floor)
	})
	return &BracketTable{brackets: sorted}
}

// Find returns the bracket containing the given trailing revenue.
// Revenue above the last ceiling finds nothing: past that point the
// taxpayer has left the regime and no rate applies.
func (t *BracketTable) Find(revenue decimal.Decimal) (Bracket, bool) {
	for _, b := range t.brackets {
		if b.Contains(revenue) {
			return b, true
		}
	}
	return Bracket{}, false
}

// Brackets returns the ordered bands.
func (t *BracketTable) Brackets() []Bracket {
	return t.brackets
}
