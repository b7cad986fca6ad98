// Package pipeline runs table extraction over many pages concurrently.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/ocr"
	"github.com/tsawler/gridscan/record"
	"github.com/tsawler/gridscan/source"
	"github.com/tsawler/gridscan/tables"
)

// DefaultConcurrency is the number of pages processed at once unless
// WithConcurrency says otherwise.
const DefaultConcurrency = 4

// Result is the outcome of one page. Err is set when the page failed; the
// other pages of the batch are unaffected.
type Result struct {
	Page    int
	Table   *model.Table
	Records [][]string
	Stats   record.Stats
	Err     error
}

// Skipped reports whether the page produced no table rows
func (r Result) Skipped() bool {
	return r.Err == nil && r.Table.Empty()
}

// Batch extracts tables from pages with a bounded number of goroutines.
// Each page gets a fresh detector from the factory.
type Batch struct {
	factory     tables.Factory
	recognizer  ocr.Recognizer
	aligned     bool
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a Batch
type Option func(*Batch)

// WithLogger sets the logger for page progress
func WithLogger(logger *slog.Logger) Option {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithConcurrency sets how many pages run at once. Values below 1 are
// ignored.
func WithConcurrency(n int) Option {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithPageTimeout bounds the time spent on each page. Zero means no limit.
func WithPageTimeout(d time.Duration) Option {
	return func(b *Batch) {
		if d >= 0 {
			b.timeout = d
		}
	}
}

// WithRecognizer turns cell images into records with rec
func WithRecognizer(rec ocr.Recognizer) Option {
	return func(b *Batch) {
		b.recognizer = rec
	}
}

// WithAlignedRecords places record fields at their grid columns instead of
// compacting them.
func WithAlignedRecords(aligned bool) Option {
	return func(b *Batch) {
		b.aligned = aligned
	}
}

// NewBatch creates a Batch building detectors with factory
func NewBatch(factory tables.Factory, opts ...Option) *Batch {
	b := &Batch{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Process extracts every page. Results are returned in input order whatever
// the completion order. Page failures, including per-page timeouts, are
// stored on their Result. The error is non-nil only when ctx ends, in which
// case unfinished pages have a zero Result.
func (b *Batch) Process(ctx context.Context, pages []source.Page) ([]Result, error) {
	b.logger.Debug("starting batch", "pages", len(pages), "concurrency", b.concurrency)
	start := time.Now()

	results := make([]Result, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b.logger.Info("processing page", "page", page.Number)

			res := b.processPage(gctx, page)
			if res.Err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			// Each goroutine owns its slot.
			results[i] = res

			switch {
			case res.Err != nil:
				b.logger.Warn("page failed", "page", page.Number, "error", res.Err)
			case res.Skipped():
				b.logger.Info("skipping page", "page", page.Number, "reason", "no table found")
			default:
				b.logger.Debug("page done",
					"page", page.Number,
					"rows", res.Table.RowCount(),
					"records", len(res.Records),
					"failed_cells", res.Stats.Failed,
				)
			}
			return nil
		})
	}

	err := g.Wait()
	b.logger.Debug("batch complete", "pages", len(pages), "elapsed", time.Since(start))
	return results, err
}

func (b *Batch) processPage(ctx context.Context, page source.Page) Result {
	res := Result{Page: page.Number}
	if page.Image == nil && page.Err != nil {
		res.Err = page.Err
		return res
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	table, err := b.factory().Extract(ctx, page.Image)
	if err != nil {
		res.Err = err
		return res
	}
	res.Table = table

	if b.recognizer == nil || table.Empty() {
		return res
	}
	convert := record.FromTable
	if b.aligned {
		convert = record.FromTableAligned
	}
	res.Records, res.Stats, res.Err = convert(ctx, table, b.recognizer)
	return res
}
