package gridscan

import (
	"log/slog"
	"time"

	"github.com/tsawler/gridscan/internal/log"
	"github.com/tsawler/gridscan/internal/pipeline"
	"github.com/tsawler/gridscan/ocr"
	"github.com/tsawler/gridscan/overlay"
	"github.com/tsawler/gridscan/tables"
)

// ExtractOptions holds configuration for table extraction.
type ExtractOptions struct {
	// Page selection (1-indexed)
	pages []int

	// Concurrency
	workers     int
	cellWorkers int
	pageTimeout time.Duration

	// Engine
	detector string
	config   tables.Config
	sink     overlay.Sink

	// Recognition
	recognizer      ocr.Recognizer
	language        string
	keepGridIndices bool

	logger *slog.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:       nil, // nil means all pages
		workers:     pipeline.DefaultConcurrency,
		cellWorkers: 1,
		detector:    "morph",
		config:      tables.DefaultConfig(),
		language:    ocr.DefaultLanguage,
		logger:      log.Discard(),
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}

// engineConfig is the detector configuration with the extractor's cell
// workers and debug sink applied.
func (o ExtractOptions) engineConfig() tables.Config {
	cfg := o.config
	cfg.CellWorkers = o.cellWorkers
	cfg.Debug = o.sink != nil
	cfg.Sink = o.sink
	return cfg
}
