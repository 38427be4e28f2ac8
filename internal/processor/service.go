package processor

import (
	"context"
	"fmt"

	"github.com/larachristiea/bumerangue/internal/classify"
	"github.com/larachristiea/bumerangue/internal/config"
	"github.com/larachristiea/bumerangue/internal/logger"
	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/reference"
	"github.com/larachristiea/bumerangue/internal/tax"
	"github.com/larachristiea/bumerangue/internal/validate"
)

// Service wires the reference tables, the batch runner, and the credit
// engine into one credit-recovery run per period.
type Service struct {
	cfg      *config.Config
	regime   *reference.RegimeTable
	brackets *reference.BracketTable
	index    *reference.IndexSeries
	filings  *reference.Filings
	degraded bool
}

// NewService loads the reference tables named by the configuration.
// The filing records are mandatory. The regime table and index series
// are optional; their absence degrades classification and accrual but
// does not block the run. The bracket table falls back to the built-in
// default.
func NewService(cfg *config.Config) (*Service, error) {
	log := logger.WithComponent("service")
	s := &Service{cfg: cfg}

	if cfg.FilingsPath == "" {
		return nil, model.NewReferenceDataError("filings", "", fmt.Errorf("no filings path configured"))
	}
	filings, err := reference.LoadFilings(cfg.FilingsPath)
	if err != nil {
		return nil, err
	}
	s.filings = filings

	if cfg.RegimeTablePath != "" {
		regime, err := reference.LoadRegimeTable(cfg.RegimeTablePath)
		if err != nil {
			return nil, err
		}
		s.regime = regime
	} else {
		s.degraded = true
		log.Warn().Msg("no regime table configured, classifying by CST only")
	}

	if cfg.BracketTablePath != "" {
		brackets, err := reference.LoadBracketTable(cfg.BracketTablePath)
		if err != nil {
			return nil, err
		}
		s.brackets = brackets
	} else {
		s.brackets = reference.DefaultBracketTable()
	}

	if cfg.IndexSeriesPath != "" {
		index, err := reference.LoadIndexSeries(cfg.IndexSeriesPath)
		if err != nil {
			return nil, err
		}
		s.index = index
	} else {
		log.Warn().Msg("no index series configured, credits will not be restated")
	}

	return s, nil
}

// Degraded reports whether the service runs without the regime table.
func (s *Service) Degraded() bool { return s.degraded }

// RunPeriod processes the XML directory for one filing period and
// restates the resulting credit to the target period. A zero target
// skips restatement.
func (s *Service) RunPeriod(ctx context.Context, dir string, period, target model.Period) (*model.PeriodCreditReport, error) {
	log := logger.WithComponent("service")

	filing, ok := s.filings.Get(period)
	if !ok {
		return nil, model.NewReferenceDataError("filings", s.cfg.FilingsPath,
			fmt.Errorf("no filing for period %s", period))
	}

	resolver := tax.NewResolver(s.brackets, tax.RateSource(s.cfg.RateSource))
	rate, err := resolver.Resolve(filing)
	if err != nil {
		return nil, err
	}

	pipeline := NewPipeline(
		WithValidator(validate.New(s.cfg.ConsistencyTolerance)),
		WithClassifier(classify.New(s.RegimeTable())),
	)
	runner := NewRunner(pipeline, s.cfg.Workers)
	batch, err := runner.Run(ctx, dir)
	if err != nil {
		return nil, err
	}

	// The filing's own rate split wins over the configured defaults.
	proportions := tax.Proportions{
		PIS:    s.cfg.PISProportion,
		COFINS: s.cfg.COFINSProportion,
	}
	if filing.PISShare.IsPositive() && filing.COFINSShare.IsPositive() {
		proportions = tax.Proportions{PIS: filing.PISShare, COFINS: filing.COFINSShare}
	}

	engine := tax.NewEngine(proportions)
	for _, inv := range batch.Invoices {
		engine.Add(inv)
	}
	engine.CheckAgainstFiling(filing, s.cfg.ConsistencyTolerance)

	report := engine.Compute(period, filing, rate)
	report.Counts.DocumentsScanned = batch.DocumentsScanned
	report.Counts.DocumentErrors = batch.DocumentErrors
	report.Degraded = s.degraded

	if !target.IsZero() && s.index != nil {
		accrual := tax.NewAccrual(s.index)
		adjusted, res := accrual.Restate(report.TotalCredit, period, target)
		report.AccrualFactor = res.Factor
		report.AdjustedCredit = adjusted
		for _, missing := range res.MissingMonths {
			report.Inconsistencies = append(report.Inconsistencies,
				fmt.Sprintf("no index rate for %s, month compounded at zero", missing))
		}
	}

	log.Info().
		Str("period", period.String()).
		Str("effective_rate", report.EffectiveRate.String()).
		Str("total_credit", report.TotalCredit.String()).
		Str("adjusted_credit", report.AdjustedCredit.String()).
		Msg("run complete")
	return report, nil
}

// RegimeTable adapts the optional table to the classifier interface
// without handing it a typed nil.
func (s *Service) RegimeTable() classify.RegimeTable {
	if s.regime == nil {
		return nil
	}
	return s.regime
}
