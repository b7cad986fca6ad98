package gridscan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/tsawler/gridscan/internal/pipeline"
	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/ocr"
	"github.com/tsawler/gridscan/overlay"
	"github.com/tsawler/gridscan/raster"
	"github.com/tsawler/gridscan/record"
	"github.com/tsawler/gridscan/source"
	"github.com/tsawler/gridscan/tables"
)

// ErrNoInput is returned when an Extractor has neither a file nor images.
var ErrNoInput = errors.New("no input: use Open or FromImages")

// PageResult is the table extracted from one page. Records is filled by
// Recognize; Tables leaves it empty.
type PageResult struct {
	Page    int
	Table   *model.Table
	Records [][]string
	Err     error
}

// Extractor provides a fluent interface for extracting tables from scanned
// pages. Each configuration method returns a new Extractor instance, making
// it safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	images   []image.Image

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		images:   e.images,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages specifies which pages to extract from (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	results, _, err := gridscan.Open("doc.pdf").Pages(1, 3).Tables(ctx)
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to extract (1-indexed, inclusive).
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Workers sets how many pages are processed at once.
func (e *Extractor) Workers(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		newExt.err = errors.Join(newExt.err, fmt.Errorf("workers must be positive, got %d", n))
	}
	newExt.options.workers = n
	return newExt
}

// CellWorkers sets how many cells of a page are refined at once.
func (e *Extractor) CellWorkers(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		newExt.err = errors.Join(newExt.err, fmt.Errorf("cell workers must be positive, got %d", n))
	}
	newExt.options.cellWorkers = n
	return newExt
}

// PageTimeout bounds the time spent on each page. A page that runs out of
// time is reported as a warning. Zero disables the limit.
func (e *Extractor) PageTimeout(d time.Duration) *Extractor {
	newExt := e.clone()
	newExt.options.pageTimeout = d
	return newExt
}

// Detector selects a registered table detector by name.
//
// Example:
//
//	gridscan.Open("scan.png").Detector("morph")
func (e *Extractor) Detector(name string) *Extractor {
	newExt := e.clone()
	newExt.options.detector = name
	return newExt
}

// Config replaces the engine tuning. CellWorkers and the debug fields of
// cfg are ignored in favour of CellWorkers and Debug.
func (e *Extractor) Config(cfg tables.Config) *Extractor {
	newExt := e.clone()
	newExt.options.config = cfg
	return newExt
}

// Debug sends the detected grid lines of every page to sink.
//
// Example:
//
//	gridscan.Open("scan.png").Debug(overlay.NewPNGSink("debug"))
func (e *Extractor) Debug(sink overlay.Sink) *Extractor {
	newExt := e.clone()
	newExt.options.sink = sink
	return newExt
}

// Recognizer sets the engine that turns cell images into text. Without
// one, Records uses a Tesseract client, which needs the "ocr" build tag.
func (e *Extractor) Recognizer(rec ocr.Recognizer) *Extractor {
	newExt := e.clone()
	newExt.options.recognizer = rec
	return newExt
}

// Language sets the language of the default Tesseract client, for example
// "eng+deu".
func (e *Extractor) Language(lang string) *Extractor {
	newExt := e.clone()
	newExt.options.language = lang
	return newExt
}

// KeepGridIndices places record fields at their grid columns, leaving
// empty fields for missing cells, instead of compacting each row.
func (e *Extractor) KeepGridIndices() *Extractor {
	newExt := e.clone()
	newExt.options.keepGridIndices = true
	return newExt
}

// Logger sets the logger for page progress. The default discards logs.
func (e *Extractor) Logger(logger *slog.Logger) *Extractor {
	newExt := e.clone()
	if logger != nil {
		newExt.options.logger = logger
	}
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// IsScanned reports whether the input has no text layer. Images are always
// scanned. For PDFs an unreadable document counts as scanned.
func (e *Extractor) IsScanned() (bool, error) {
	if e.filename == "" || !source.IsPDF(e.filename) {
		return true, nil
	}
	return source.IsScanned(e.filename)
}

// Tables extracts the table of every selected page, in page order. Pages
// that fail or hold no table are reported as warnings and keep their
// PageResult, with Err set for failures.
//
// Example:
//
//	results, warnings, err := gridscan.Open("scan.pdf").Tables(ctx)
//	for _, r := range results {
//	    fmt.Println(r.Page, r.Table.RowCount(), r.Table.ColCount())
//	}
func (e *Extractor) Tables(ctx context.Context) ([]PageResult, []Warning, error) {
	return e.run(ctx, nil)
}

// Recognize is Tables with every cell recognized: each PageResult carries
// the records of its table. Without a Recognizer a Tesseract client is
// created for the call.
func (e *Extractor) Recognize(ctx context.Context) ([]PageResult, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	rec, closeRec, err := e.recognizer()
	if err != nil {
		return nil, nil, err
	}
	defer closeRec()
	return e.run(ctx, rec)
}

// Records recognizes the cells of every page and returns one record per
// table row, pages in order. Empty texts are dropped from each row, and rows
// left empty are dropped. With KeepGridIndices fields stay at their grid
// columns instead.
func (e *Extractor) Records(ctx context.Context) ([][]string, []Warning, error) {
	results, warnings, err := e.Recognize(ctx)
	if err != nil {
		return nil, warnings, err
	}
	var records [][]string
	for _, r := range results {
		records = append(records, r.Records...)
	}
	return records, warnings, nil
}

// WriteCSV writes the records of all pages to w as CSV.
func (e *Extractor) WriteCSV(ctx context.Context, w io.Writer) ([]Warning, error) {
	return e.write(ctx, record.NewCSVWriter(w))
}

// WriteMarkdown writes the records of all pages to w as a Markdown table.
func (e *Extractor) WriteMarkdown(ctx context.Context, w io.Writer) ([]Warning, error) {
	return e.write(ctx, record.NewMarkdownWriter(w))
}

func (e *Extractor) write(ctx context.Context, w record.Writer) ([]Warning, error) {
	records, warnings, err := e.Records(ctx)
	if err != nil {
		return warnings, err
	}
	return warnings, w.Write(records)
}

// ============================================================================
// Internal helpers
// ============================================================================

// recognizer returns the configured recognizer, or a new Tesseract client
// together with its close function.
func (e *Extractor) recognizer() (ocr.Recognizer, func(), error) {
	if e.options.recognizer != nil {
		return e.options.recognizer, func() {}, nil
	}
	client, err := ocr.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OCR client: %w", err)
	}
	if err := client.SetLanguage(e.options.language); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// factory validates the detector settings once and returns a factory of
// identically configured detectors.
func (e *Extractor) factory() (tables.Factory, error) {
	cfg := e.options.engineConfig()
	name := e.options.detector

	d, err := tables.NewDetector(name)
	if err != nil {
		return nil, err
	}
	if err := d.Configure(cfg); err != nil {
		return nil, err
	}
	return func() tables.Detector {
		d, _ := tables.NewDetector(name)
		_ = d.Configure(cfg)
		return d
	}, nil
}

func (e *Extractor) run(ctx context.Context, rec ocr.Recognizer) ([]PageResult, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	factory, err := e.factory()
	if err != nil {
		return nil, nil, err
	}
	pages, err := e.loadPages()
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithConcurrency(e.options.workers),
		pipeline.WithPageTimeout(e.options.pageTimeout),
		pipeline.WithLogger(e.options.logger),
		pipeline.WithAlignedRecords(e.options.keepGridIndices),
	}
	if rec != nil {
		opts = append(opts, pipeline.WithRecognizer(rec))
	}

	out, err := pipeline.NewBatch(factory, opts...).Process(ctx, pages)
	if err != nil {
		return nil, nil, err
	}

	results := make([]PageResult, len(out))
	var warnings []Warning
	for i, r := range out {
		results[i] = PageResult{Page: r.Page, Table: r.Table, Records: r.Records, Err: r.Err}
		switch {
		case r.Err != nil:
			warnings = append(warnings, Warning{Page: r.Page, Message: "page failed", Err: r.Err})
		case r.Skipped():
			warnings = append(warnings, Warning{Page: r.Page, Message: "no table found"})
		case r.Stats.Failed > 0:
			warnings = append(warnings, Warning{
				Page:    r.Page,
				Message: fmt.Sprintf("%d of %d cells could not be recognized", r.Stats.Failed, r.Stats.Cells),
			})
		}
	}
	return results, warnings, nil
}

// loadPages reads the selected pages of the file or wraps the images.
func (e *Extractor) loadPages() ([]source.Page, error) {
	if e.filename != "" {
		pages, err := source.Load(e.filename, e.selectedPages())
		if err != nil {
			return nil, err
		}
		return pages, nil
	}
	if len(e.images) == 0 {
		return nil, ErrNoInput
	}

	numbers, err := e.resolvePages(len(e.images))
	if err != nil {
		return nil, err
	}
	pages := make([]source.Page, 0, len(numbers))
	for _, n := range numbers {
		page := source.Page{Number: n}
		if img := e.images[n-1]; img != nil && !img.Bounds().Empty() {
			page.Image = raster.ToGray(img)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// selectedPages returns the sorted, de-duplicated page selection or nil.
func (e *Extractor) selectedPages() []int {
	if len(e.options.pages) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var pages []int
	for _, p := range e.options.pages {
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

// resolvePages validates the selection against pageCount. If no pages are
// specified, returns all pages.
func (e *Extractor) resolvePages(pageCount int) ([]int, error) {
	selected := e.selectedPages()
	if selected == nil {
		all := make([]int, pageCount)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	for _, p := range selected {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
	}
	return selected, nil
}
