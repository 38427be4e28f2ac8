package reference_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/reference"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegimeTable(t *testing.T) {
	table := reference.NewRegimeTable([]string{"22021000", "2203", " ", ""})

	assert.True(t, table.SinglePhase("22021000"))
	assert.True(t, table.SinglePhase("22030010")) // prefix match
	assert.False(t, table.SinglePhase("10063021"))
	assert.False(t, table.SinglePhase(""))
	assert.Equal(t, 2, table.Len())
}

func TestLoadRegimeTable(t *testing.T) {
	t.Run("flat list", func(t *testing.T) {
		path := writeTemp(t, "regime.json", `["22021000", "2203"]`)
		table, err := reference.LoadRegimeTable(path)
		require.NoError(t, err)
		assert.True(t, table.SinglePhase("22021000"))
	})

	t.Run("object form", func(t *testing.T) {
		path := writeTemp(t, "regime.json", `{"ncms": ["22021000"]}`)
		table, err := reference.LoadRegimeTable(path)
		require.NoError(t, err)
		assert.True(t, table.SinglePhase("22021000"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := reference.LoadRegimeTable("/does/not/exist.json")
		require.Error(t, err)
		var refErr *model.ReferenceDataError
		assert.ErrorAs(t, err, &refErr)
	})
}

func TestDefaultBracketTable(t *testing.T) {
	table := reference.DefaultBracketTable()
	require.Len(t, table.Brackets(), 6)

	tests := []struct {
		revenue   string
		rate      string
		deduction string
	}{
		{"100000", "0.04", "0"},
		{"180000", "0.04", "0"},
		{"180000.01", "0.073", "5940"},
		{"500000", "0.095", "13860"},
		{"1000000", "0.107", "22500"},
		{"2000000", "0.143", "87300"},
		{"4800000", "0.19", "378000"},
	}

	for _, tt := range tests {
		b, ok := table.Find(decimal.RequireFromString(tt.revenue))
		require.True(t, ok, "revenue %s", tt.revenue)
		assert.Equal(t, tt.rate, b.NominalRate.String(), "revenue %s", tt.revenue)
		assert.Equal(t, tt.deduction, b.Deduction.String(), "revenue %s", tt.revenue)
	}
}

func TestBracketTable_AboveCeiling(t *testing.T) {
	table := reference.DefaultBracketTable()
	_, ok := table.Find(decimal.RequireFromString("4800000.01"))
	assert.False(t, ok)

	_, ok = table.Find(decimal.RequireFromString("5000000"))
	assert.False(t, ok)
}

func TestBracketTable_OpenTopBand(t *testing.T) {
	// A zero ceiling marks an explicitly open top band.
	table := reference.NewBracketTable([]reference.Bracket{
		{Floor: decimal.Zero, Ceiling: decimal.RequireFromString("100000"), NominalRate: decimal.RequireFromString("0.04")},
		{Floor: decimal.RequireFromString("100000.01"), NominalRate: decimal.RequireFromString("0.08")},
	})

	b, ok := table.Find(decimal.RequireFromString("99000000"))
	require.True(t, ok)
	assert.Equal(t, "0.08", b.NominalRate.String())
}

func TestLoadBracketTable(t *testing.T) {
	path := writeTemp(t, "brackets.json", `[
	  {"floor": "0", "ceiling": "100000", "nominal_rate": "0.05", "deduction": "0"},
	  {"floor": "100000.01", "ceiling": "200000", "nominal_rate": "0.08", "deduction": "3000"}
	]`)
	table, err := reference.LoadBracketTable(path)
	require.NoError(t, err)

	b, ok := table.Find(decimal.RequireFromString("150000"))
	require.True(t, ok)
	assert.Equal(t, "0.08", b.NominalRate.String())

	_, err = reference.LoadBracketTable(writeTemp(t, "empty.json", `[]`))
	require.Error(t, err)
}

func TestIndexSeries(t *testing.T) {
	series := reference.NewIndexSeries()
	jan := model.Period{Year: 2024, Month: 1}
	series.Set(jan, decimal.RequireFromString("0.01"))

	rate, ok := series.Rate(jan)
	require.True(t, ok)
	assert.Equal(t, "0.01", rate.String())

	_, ok = series.Rate(model.Period{Year: 2024, Month: 2})
	assert.False(t, ok)
}

func TestLoadIndexSeries(t *testing.T) {
	path := writeTemp(t, "selic.json", `{"2024-01": "0.0097", "02/2024": "0.008"}`)
	series, err := reference.LoadIndexSeries(path)
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())

	rate, ok := series.Rate(model.Period{Year: 2024, Month: 2})
	require.True(t, ok)
	assert.Equal(t, "0.008", rate.String())
}

func TestLoadFilings(t *testing.T) {
	content := `[{
	  "taxpayer_id": "12345678000190",
	  "period": "2024-01",
	  "gross_revenue_period": "85000.00",
	  "trailing_revenue": "1000000.00",
	  "declared_pis": "1000.00",
	  "declared_cofins": "4600.00"
	}]`
	path := writeTemp(t, "filings.json", content)

	filings, err := reference.LoadFilings(path)
	require.NoError(t, err)
	assert.Equal(t, 1, filings.Len())

	rec, ok := filings.Get(model.Period{Year: 2024, Month: 1})
	require.True(t, ok)
	assert.Equal(t, "12345678000190", rec.TaxpayerID)
	assert.Equal(t, "1000000", rec.TrailingRevenue.String())

	_, ok = filings.Get(model.Period{Year: 2024, Month: 2})
	assert.False(t, ok)
}

func TestLoadFilings_SingleRecord(t *testing.T) {
	content := `{"taxpayer_id": "1", "period": "2024-03", "trailing_revenue": "100"}`
	path := writeTemp(t, "filing.json", content)

	filings, err := reference.LoadFilings(path)
	require.NoError(t, err)

	_, ok := filings.Get(model.Period{Year: 2024, Month: 3})
	assert.True(t, ok)
}
