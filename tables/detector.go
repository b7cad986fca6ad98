package tables

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/raster"
	"github.com/tsawler/gridscan/rectify"
)

// Detector is the interface for table extraction algorithms
type Detector interface {
	// Extract finds the table on a page image and segments it into cells
	Extract(ctx context.Context, page *image.Gray) (*model.Table, error)

	// Name returns the detector name
	Name() string

	// Configure sets detector parameters
	Configure(config Config) error
}

// MorphDetector locates the dominant table with contour geometry and finds
// its rulings with morphological line filtering.
type MorphDetector struct {
	config Config
}

// NewMorphDetector creates a detector with the default configuration
func NewMorphDetector() *MorphDetector {
	return &MorphDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("morph")
func (d *MorphDetector) Name() string {
	return "morph"
}

// Configure validates and sets the detector configuration
func (d *MorphDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	return nil
}

// Config returns the current configuration
func (d *MorphDetector) Config() Config {
	return d.config
}

// Extract runs the whole engine on one page. A zero-area page fails with
// raster.ErrEmptyImage. A page without a table region, or whose table has
// fewer than two rulings on an axis, yields an empty table and no error.
func (d *MorphDetector) Extract(ctx context.Context, page *image.Gray) (*model.Table, error) {
	if raster.IsEmpty(page) {
		return nil, raster.ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = raster.ToGray(page)

	mask, err := raster.Binarize(page)
	if err != nil {
		return nil, err
	}
	tableImg, _, err := rectify.LocateLargestQuad(mask, page)
	if errors.Is(err, rectify.ErrNoRegion) || errors.Is(err, rectify.ErrDegenerateQuad) {
		return model.NewTable(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to locate table: %w", err)
	}

	horizontal, vertical, err := DetectGridLines(tableImg, d.config)
	if err != nil {
		return nil, err
	}

	showLines(ctx, d.config, tableImg, horizontal, vertical)
	return SegmentCells(ctx, tableImg, horizontal, vertical, d.config)
}

// showLines hands the boundary rectangles to the configured sink, if any.
// Sink failures never affect the extraction result.
func showLines(ctx context.Context, cfg Config, table *image.Gray, horizontal, vertical []model.Boundary) {
	sink := cfg.sink()
	if sink == nil {
		return
	}
	rects := make([]image.Rectangle, 0, len(horizontal)+len(vertical))
	for _, b := range horizontal {
		rects = append(rects, b.Bounds())
	}
	for _, b := range vertical {
		rects = append(rects, b.Bounds())
	}
	_ = sink.Show(ctx, "Detected Table Lines", table, rects)
}

// Factory creates a fresh detector. Detectors carry configuration, so each
// caller gets its own instance.
type Factory func() Detector

// DetectorRegistry holds registered detector factories
type DetectorRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new detector registry
func NewRegistry() *DetectorRegistry {
	return &DetectorRegistry{
		factories: make(map[string]Factory),
	}
}

// Register registers a factory under the name of the detector it builds
func (r *DetectorRegistry) Register(factory Factory) {
	name := factory().Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New creates a detector by name
func (r *DetectorRegistry) New(name string) (Detector, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown detector %q", name)
	}
	return factory(), nil
}

// List returns all registered detector names, sorted
func (r *DetectorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry
var globalRegistry = NewRegistry()

// RegisterDetector registers a detector factory globally
func RegisterDetector(factory Factory) {
	globalRegistry.Register(factory)
}

// NewDetector creates a globally registered detector by name
func NewDetector(name string) (Detector, error) {
	return globalRegistry.New(name)
}

// ListDetectors returns all registered detector names
func ListDetectors() []string {
	return globalRegistry.List()
}

func init() {
	RegisterDetector(func() Detector { return NewMorphDetector() })
	RegisterDetector(func() Detector { return NewOpenCVDetector() })
}
