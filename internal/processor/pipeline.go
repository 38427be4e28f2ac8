// Package processor runs documents through the parse, validate, and
// classify stages, and orchestrates whole-directory batches.
package processor

import (
	"context"

	"github.com/larachristiea/bumerangue/internal/classify"
	"github.com/larachristiea/bumerangue/internal/model"
	nfexml "github.com/larachristiea/bumerangue/internal/parser/xml"
	"github.com/larachristiea/bumerangue/internal/validate"
)

// Pipeline processes one document at a time.
type Pipeline struct {
	validator  *validate.Validator
	classifier *classify.Classifier
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithValidator sets the field validator.
func WithValidator(v *validate.Validator) Option {
	return func(p *Pipeline) { p.validator = v }
}

// WithClassifier sets the regime classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(p *Pipeline) { p.classifier = c }
}

// NewPipeline creates a pipeline. Without options it only parses:
// validation and classification stages run when configured.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of processing one document. Exactly one of
// Invoice, Event, or Err is set, except for KindOtherEvent where all
// three are nil.
type Result struct {
	Kind       nfexml.DocKind
	SourceFile string
	Invoice    *model.Invoice
	Event      *model.CancellationEvent
	Err        error
}

// ProcessBytes detects the document kind and runs the matching stages.
// Context cancellation aborts before any work is done.
func (p *Pipeline) ProcessBytes(ctx context.Context, content []byte, sourceFile string) Result {
	if err := ctx.Err(); err != nil {
		return Result{Kind: nfexml.KindUnknown, SourceFile: sourceFile, Err: err}
	}

	res := Result{Kind: nfexml.Detect(content), SourceFile: sourceFile}
	switch res.Kind {
	case nfexml.KindInvoice:
		inv, err := nfexml.ParseInvoice(content, sourceFile)
		if err != nil {
			res.Err = err
			return res
		}
		if p.validator != nil {
			p.validator.ValidateInvoice(inv)
		}
		if p.classifier != nil {
			p.classifier.ClassifyInvoice(inv)
		}
		res.Invoice = inv
	case nfexml.KindCancellation:
		ev, err := nfexml.ParseCancellation(content, sourceFile)
		if err != nil {
			res.Err = err
			return res
		}
		res.Event = ev
	case nfexml.KindOtherEvent:
		// Ignored, but counted by the batch runner.
	default:
		res.Err = model.NewParseError(sourceFile, "unrecognized document structure", nil)
	}
	return res
}
