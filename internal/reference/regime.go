// Package reference loads the lookup tables the engine depends on: the
// single-phase NCM table, the progressive rate brackets, the monetary
// index series, and the taxpayer's filed revenue declarations. Tables
// load from JSON files; the bracket table additionally ships a built-in
// default so the engine works without external configuration.
package reference

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/larachristiea/bumerangue/internal/model"
)

// RegimeTable holds the NCM codes subject to single-phase taxation.
// Codes may be exact 8-digit entries or shorter prefixes covering a
// whole chapter.
type RegimeTable struct {
	exact    map[string]struct{}
	prefixes []string
}

// regimeFile is the on-disk shape: a flat list of codes, or an object
// with a "ncms" list.
type regimeFile struct {
	NCMs []string `json:"ncms"`
}

// LoadRegimeTable reads a regime table from a JSON file.
func LoadRegimeTable(path string) (*RegimeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewReferenceDataError("regime", path, err)
	}

	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		var f regimeFile
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, model.NewReferenceDataError("regime", path, err)
		}
		codes = f.NCMs
	}
	return NewRegimeTable(codes), nil
}

// NewRegimeTable builds a table from a list of NCM codes or prefixes.
func NewRegimeTable(codes []string) *RegimeTable {
	t := &RegimeTable{exact: make(map[string]struct{})}
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if len(c) == 8 {
			t.exact[c] = struct{}{}
		} else {
			t.prefixes = append(t.prefixes, c)
		}
	}
	return t
}

// SinglePhase reports whether the NCM is listed, by exact match or by
// prefix.
func (t *RegimeTable) SinglePhase(ncm string) bool {
	if ncm == "" {
		return false
	}
	if _, ok := t.exact[ncm]; ok {
		return true
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(ncm, p) {
			return true
		}
	}
	return false
}

// Len returns the number of entries loaded.
func (t *RegimeTable) Len() int {
	return len(t.exact) + len(t.prefixes)
}
