package nfelib

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/classify"
	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/processor"
	"github.com/larachristiea/bumerangue/internal/reference"
	"github.com/larachristiea/bumerangue/internal/tax"
	"github.com/larachristiea/bumerangue/internal/validate"
)

// Options configures a Processor.
type Options struct {
	// SinglePhaseNCMs lists NCM codes or prefixes classified as
	// single-phase. Empty degrades classification to CST fallback only.
	SinglePhaseNCMs []string

	// TotalTolerance bounds accepted drift between declared and
	// computed totals.
	TotalTolerance decimal.Decimal

	// PISProportion and COFINSProportion split the unified effective
	// rate between the two contributions.
	PISProportion    decimal.Decimal
	COFINSProportion decimal.Decimal

	// Workers sizes the batch worker pool.
	Workers int
}

// DefaultOptions returns the statutory commerce defaults.
func DefaultOptions() Options {
	p := tax.DefaultProportions()
	return Options{
		TotalTolerance:   decimal.RequireFromString("0.01"),
		PISProportion:    p.PIS,
		COFINSProportion: p.COFINS,
		Workers:          4,
	}
}

// Processor is the embeddable front door to the engine.
type Processor struct {
	options  Options
	pipeline *processor.Pipeline
	brackets *reference.BracketTable
}

// NewProcessor creates a processor with the given options.
func NewProcessor(opts Options) *Processor {
	var table classify.RegimeTable
	if len(opts.SinglePhaseNCMs) > 0 {
		table = reference.NewRegimeTable(opts.SinglePhaseNCMs)
	}

	pipeline := processor.NewPipeline(
		processor.WithValidator(validate.New(opts.TotalTolerance)),
		processor.WithClassifier(classify.New(table)),
	)
	return &Processor{
		options:  opts,
		pipeline: pipeline,
		brackets: reference.DefaultBracketTable(),
	}
}

// ParseInvoice parses, validates, and classifies one NFe document.
func (p *Processor) ParseInvoice(ctx context.Context, content []byte) (*Invoice, error) {
	res := p.pipeline.ProcessBytes(ctx, content, "input")
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Invoice == nil {
		return nil, model.NewParseError("input", "document is not an invoice", nil)
	}
	return res.Invoice, nil
}

// ProcessDirectory runs the two-phase batch over a directory and
// returns the parsed invoices with cancellation status applied.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) ([]*Invoice, error) {
	runner := processor.NewRunner(p.pipeline, p.options.Workers)
	batch, err := runner.Run(ctx, dir)
	if err != nil {
		return nil, err
	}
	return batch.Invoices, nil
}

// ComputeCredit nets the filing's declared contributions against the
// amount due on the invoices' regular revenue, using the built-in
// bracket table.
func (p *Processor) ComputeCredit(invoices []*Invoice, filing FilingRecord) (*PeriodCreditReport, error) {
	resolver := tax.NewResolver(p.brackets, tax.RateSourceBracket)
	rate, err := resolver.Resolve(filing)
	if err != nil {
		return nil, err
	}

	engine := tax.NewEngine(tax.Proportions{
		PIS:    p.options.PISProportion,
		COFINS: p.options.COFINSProportion,
	})
	for _, inv := range invoices {
		engine.Add(inv)
	}
	engine.CheckAgainstFiling(filing, p.options.TotalTolerance)
	return engine.Compute(filing.Period, filing, rate), nil
}
