package processor

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/larachristiea/bumerangue/internal/logger"
	"github.com/larachristiea/bumerangue/internal/model"
	nfexml "github.com/larachristiea/bumerangue/internal/parser/xml"
)

// Runner executes a two-phase batch over a directory of XML files.
// Phase one scans every document and builds the cancellation map; phase
// two parses the invoices concurrently and applies the map. The split
// guarantees an invoice's status does not depend on file ordering.
type Runner struct {
	pipeline *Pipeline
	workers  int
}

// NewRunner creates a batch runner. workers below one is raised to one.
func NewRunner(pipeline *Pipeline, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{pipeline: pipeline, workers: workers}
}

// BatchResult is the outcome of one directory run. Per-document
// failures are collected in Errors; only a missing directory fails the
// run itself.
type BatchResult struct {
	Invoices      []*model.Invoice
	Cancellations map[string]*model.CancellationEvent
	OtherEvents   int

	DocumentsScanned int
	DocumentErrors   int
	Errors           []error
}

// Run processes every .xml file under dir.
func (r *Runner) Run(ctx context.Context, dir string) (*BatchResult, error) {
	log := logger.WithComponent("batch")

	files, err := listXMLFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		Cancellations:    make(map[string]*model.CancellationEvent),
		DocumentsScanned: len(files),
	}

	// Phase one: single pass over all files to collect cancellation
	// events. The map is immutable once phase two starts.
	invoiceFiles := make([]string, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(file)
		if err != nil {
			result.recordError(model.NewParseError(file, "unreadable file", err))
			continue
		}
		switch nfexml.Detect(content) {
		case nfexml.KindInvoice:
			invoiceFiles = append(invoiceFiles, file)
		case nfexml.KindCancellation:
			ev, err := nfexml.ParseCancellation(content, file)
			if err != nil {
				result.recordError(err)
				continue
			}
			if ev.Supersedes(result.Cancellations[ev.AccessKey]) {
				result.Cancellations[ev.AccessKey] = ev
			}
		case nfexml.KindOtherEvent:
			result.OtherEvents++
		default:
			result.recordError(model.NewParseError(file, "unrecognized document structure", nil))
		}
	}
	log.Info().
		Int("files", len(files)).
		Int("invoices", len(invoiceFiles)).
		Int("cancellations", len(result.Cancellations)).
		Msg("scan complete")

	// Phase two: parse invoices on a worker pool, fold results on this
	// goroutine.
	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				content, err := os.ReadFile(file)
				if err != nil {
					results <- Result{SourceFile: file, Err: model.NewParseError(file, "unreadable file", err)}
					continue
				}
				results <- r.pipeline.ProcessBytes(ctx, content, file)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, file := range invoiceFiles {
			select {
			case jobs <- file:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.Err != nil {
			result.recordError(res.Err)
			continue
		}
		if res.Invoice == nil {
			continue
		}
		res.Invoice.ProcessedAt = time.Now()
		if ev, ok := result.Cancellations[res.Invoice.AccessKey]; ok {
			res.Invoice.Cancel()
			log.Debug().
				Str("access_key", res.Invoice.AccessKey).
				Time("cancelled_at", ev.OccurredAt).
				Msg("invoice cancelled by event")
		}
		result.Invoices = append(result.Invoices, res.Invoice)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Deterministic output order regardless of worker scheduling.
	sort.Slice(result.Invoices, func(i, j int) bool {
		return result.Invoices[i].SourceFile < result.Invoices[j].SourceFile
	})

	log.Info().
		Int("parsed", len(result.Invoices)).
		Int("errors", result.DocumentErrors).
		Msg("batch complete")
	return result, nil
}

func (b *BatchResult) recordError(err error) {
	b.DocumentErrors++
	b.Errors = append(b.Errors, err)
}

func listXMLFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, model.NewReferenceDataError("input", dir, err)
	}
	if !info.IsDir() {
		return nil, model.NewReferenceDataError("input", dir, os.ErrInvalid)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
