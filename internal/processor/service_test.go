package processor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larachristiea/bumerangue/internal/config"
	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/processor"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	filings := `[{
	  "taxpayer_id": "12345678000190",
	  "period": "2024-01",
	  "gross_revenue_period": "150.00",
	  "trailing_revenue": "150000.00",
	  "declared_pis": "100.00",
	  "declared_cofins": "400.00"
	}]`
	selic := `{"2024-02": "0.04"}`
	regime := `["22021000"]`

	return &config.Config{
		RegimeTablePath:      writeTemp(t, dir, "regime.json", regime),
		IndexSeriesPath:      writeTemp(t, dir, "selic.json", selic),
		FilingsPath:          writeTemp(t, dir, "filings.json", filings),
		RateSource:           "bracket",
		ConsistencyTolerance: decimal.RequireFromString("0.01"),
		PISProportion:        decimal.RequireFromString("0.0276"),
		COFINSProportion:     decimal.RequireFromString("0.1274"),
		Workers:              2,
	}
}

func TestService_RunPeriod(t *testing.T) {
	cfg := testConfig(t)
	service, err := processor.NewService(cfg)
	require.NoError(t, err)
	assert.False(t, service.Degraded())

	dir := writeFiles(t, map[string]string{
		"nota1.xml": invoiceXML(testAccessKey, "1", "22021000", "01", "100.00"),
		"nota2.xml": invoiceXML(
			"35240112345678000190550010000004561000004567", "2", "10063021", "01", "50.00"),
	})

	period := model.Period{Year: 2024, Month: 1}
	target := model.Period{Year: 2024, Month: 2}
	report, err := service.RunPeriod(context.Background(), dir, period, target)
	require.NoError(t, err)

	assert.Equal(t, "2024-01", report.Period)
	assert.Equal(t, "100", report.SinglePhaseRevenue.String())
	assert.Equal(t, "50", report.RegularRevenue.String())
	// Trailing revenue 150000 sits in the first band: flat 4%.
	assert.Equal(t, "0.04", report.EffectiveRate.String())
	assert.Equal(t, 2, report.Counts.DocumentsScanned)
	assert.False(t, report.Degraded)

	// PIS due = 50 * 0.04 * 0.0276 = 0.0552 -> 0.06 rounded
	assert.Equal(t, "0.06", report.PIS.Due.String())
	assert.Equal(t, "99.94", report.PIS.Credit.String())

	assert.Equal(t, "1.04", report.AccrualFactor.String())
}

func TestService_MissingFiling(t *testing.T) {
	cfg := testConfig(t)
	service, err := processor.NewService(cfg)
	require.NoError(t, err)

	dir := writeFiles(t, map[string]string{
		"nota.xml": invoiceXML(testAccessKey, "1", "22021000", "01", "100.00"),
	})

	_, err = service.RunPeriod(context.Background(), dir,
		model.Period{Year: 2030, Month: 1}, model.Period{})
	require.Error(t, err)

	var refErr *model.ReferenceDataError
	assert.ErrorAs(t, err, &refErr)
}

func TestService_DegradedWithoutRegimeTable(t *testing.T) {
	cfg := testConfig(t)
	cfg.RegimeTablePath = ""

	service, err := processor.NewService(cfg)
	require.NoError(t, err)
	assert.True(t, service.Degraded())

	dir := writeFiles(t, map[string]string{
		"nota.xml": invoiceXML(testAccessKey, "1", "22021000", "01", "100.00"),
	})

	report, err := service.RunPeriod(context.Background(), dir,
		model.Period{Year: 2024, Month: 1}, model.Period{})
	require.NoError(t, err)

	assert.True(t, report.Degraded)
	// Without the table and with CST 01, the item falls back to regular.
	assert.Equal(t, "100", report.RegularRevenue.String())
	assert.True(t, report.SinglePhaseRevenue.IsZero())
}

func TestService_MandatoryFilings(t *testing.T) {
	cfg := testConfig(t)
	cfg.FilingsPath = ""

	_, err := processor.NewService(cfg)
	require.Error(t, err)
}
