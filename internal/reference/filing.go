package reference

import (
	"encoding/json"
	"os"

	"github.com/larachristiea/bumerangue/internal/model"
)

// Filings holds the taxpayer's declared revenue records by period.
type Filings struct {
	records map[model.Period]model.FilingRecord
}

// LoadFilings reads filing records from a JSON file holding either a
// single record or a list.
func LoadFilings(path string) (*Filings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewReferenceDataError("filings", path, err)
	}

	var records []model.FilingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		var one model.FilingRecord
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, model.NewReferenceDataError("filings", path, err)
		}
		records = []model.FilingRecord{one}
	}

	f := &Filings{records: make(map[model.Period]model.FilingRecord, len(records))}
	for _, r := range records {
		f.records[r.Period] = r
	}
	return f, nil
}

// Get returns the filing for a period.
func (f *Filings) Get(p model.Period) (model.FilingRecord, bool) {
	r, ok := f.records[p]
	return r, ok
}

// Len returns the number of periods loaded.
func (f *Filings) Len() int {
	return len(f.records)
}
