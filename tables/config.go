package tables

import (
	"errors"
	"fmt"

	"github.com/tsawler/gridscan/overlay"
)

var (
	// ErrInsufficientGrid reports fewer than two boundaries on an axis. The
	// engine turns it into an empty table rather than a failure.
	ErrInsufficientGrid = errors.New("insufficient grid lines")

	// ErrCellRefinementFailed reports a candidate cell whose content could
	// not be located or rectified. The cell is dropped.
	ErrCellRefinementFailed = errors.New("cell refinement failed")

	// ErrDegenerateGeometry reports a candidate cell with zero width or
	// height. The cell is dropped.
	ErrDegenerateGeometry = errors.New("degenerate cell geometry")

	// ErrInvalidConfig is returned by Config.Validate
	ErrInvalidConfig = errors.New("invalid table config")

	// ErrOpenCVNotEnabled is returned by the opencv detector in builds
	// without the gocv tag
	ErrOpenCVNotEnabled = errors.New("OpenCV support not enabled; rebuild with -tags gocv")
)

// Config holds detector configuration
type Config struct {
	// Line kernel length as a fraction of the table's extent on that axis
	LineScale float64

	// Number of erosions, then of dilations, in the line opening
	MorphIterations int

	// Minimum boundary span as a fraction of the table's extent
	MinSpanRatio float64

	// Fixed threshold applied to rectified cell content
	CellThreshold uint8

	// Pixels removed from each edge of a rectified cell
	BorderTrim int

	// Goroutines used to refine the cells of one table (<= 1 is sequential)
	CellWorkers int

	// Whether detected boundaries are sent to Sink
	Debug bool

	// Receives boundary rectangles when Debug is set; nil disables it
	Sink overlay.Sink
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		LineScale:       0.2,
		MorphIterations: 2,
		MinSpanRatio:    0.7,
		CellThreshold:   165,
		BorderTrim:      1,
		CellWorkers:     1,
	}
}

// Validate checks that every tuning value is in range
func (c Config) Validate() error {
	switch {
	case c.LineScale <= 0 || c.LineScale > 1:
		return fmt.Errorf("%w: line scale %v not in (0, 1]", ErrInvalidConfig, c.LineScale)
	case c.MorphIterations < 1:
		return fmt.Errorf("%w: morph iterations %d < 1", ErrInvalidConfig, c.MorphIterations)
	case c.MinSpanRatio < 0 || c.MinSpanRatio > 1:
		return fmt.Errorf("%w: min span ratio %v not in [0, 1]", ErrInvalidConfig, c.MinSpanRatio)
	case c.BorderTrim < 0:
		return fmt.Errorf("%w: border trim %d < 0", ErrInvalidConfig, c.BorderTrim)
	case c.CellWorkers < 0:
		return fmt.Errorf("%w: cell workers %d < 0", ErrInvalidConfig, c.CellWorkers)
	}
	return nil
}

// sink returns the configured debug sink, or nil when debugging is off
func (c Config) sink() overlay.Sink {
	if !c.Debug {
		return nil
	}
	return c.Sink
}
