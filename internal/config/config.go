package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"

	"github.com/tsawler/gridscan/tables"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "gridscan"

	// DefaultFile is the configuration file name inside the config directory.
	DefaultFile = "config.yaml"

	// DefaultOutputDir is where CSV files are written.
	DefaultOutputDir = "outputs"

	// DefaultWorkers is the number of pages processed at once.
	DefaultWorkers = 4

	// DefaultPageTimeout bounds the work on one page.
	DefaultPageTimeout = 2 * time.Minute

	// DefaultLanguage is the OCR language.
	DefaultLanguage = "eng"
)

// Config is the command configuration
type Config struct {
	// OutputDir receives one <stem>_scanned.csv per input.
	OutputDir string `yaml:"output_dir"`

	// Workers is the number of pages processed concurrently.
	Workers int `yaml:"workers"`

	// CellWorkers is the number of cells refined concurrently per page.
	CellWorkers int `yaml:"cell_workers"`

	// PageTimeout bounds the time spent on a page; zero disables it.
	PageTimeout time.Duration `yaml:"page_timeout"`

	// Language is the OCR language, for example "eng" or "eng+deu".
	Language string `yaml:"language"`

	// Markdown also writes a <stem>_scanned.md preview.
	Markdown bool `yaml:"markdown"`

	// AlignColumns keeps empty fields so record columns follow the grid.
	AlignColumns bool `yaml:"align_columns"`

	// DebugDir, when set, receives PNG overlays of the detected lines.
	DebugDir string `yaml:"debug_dir"`

	// DebugWindow shows the detected lines of every page in an OpenCV
	// window. It needs a build with the gocv tag and processes one page at
	// a time.
	DebugWindow bool `yaml:"debug_window"`

	// Database, when set, is the directory of the results database.
	Database string `yaml:"database"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`

	Detector Detector `yaml:"detector"`
}

// Detector mirrors the tunable fields of tables.Config
type Detector struct {
	Name            string  `yaml:"name"`
	LineScale       float64 `yaml:"line_scale"`
	MorphIterations int     `yaml:"morph_iterations"`
	MinSpanRatio    float64 `yaml:"min_span_ratio"`
	CellThreshold   int     `yaml:"cell_threshold"`
	BorderTrim      int     `yaml:"border_trim"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	tc := tables.DefaultConfig()
	return &Config{
		OutputDir:   DefaultOutputDir,
		Workers:     DefaultWorkers,
		CellWorkers: tc.CellWorkers,
		PageTimeout: DefaultPageTimeout,
		Language:    DefaultLanguage,
		Detector: Detector{
			Name:            "morph",
			LineScale:       tc.LineScale,
			MorphIterations: tc.MorphIterations,
			MinSpanRatio:    tc.MinSpanRatio,
			CellThreshold:   int(tc.CellThreshold),
			BorderTrim:      tc.BorderTrim,
		},
	}
}

// Dir returns the XDG config directory for gridscan.
// On Linux: ~/.config/gridscan
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPath returns the default configuration file path
func DefaultPath() string {
	return filepath.Join(Dir(), DefaultFile)
}

// DataDir returns the XDG data directory for gridscan, the default home of
// the results database.
// On Linux: ~/.local/share/gridscan
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.CellWorkers <= 0 {
		return ErrInvalidCellWorkers
	}
	if c.PageTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Detector.CellThreshold < 0 || c.Detector.CellThreshold > 255 {
		return ErrInvalidThreshold
	}
	if !slices.Contains(tables.ListDetectors(), c.Detector.Name) {
		return fmt.Errorf("%w: unknown detector %q", ErrInvalidDetector, c.Detector.Name)
	}
	if err := c.Tables().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDetector, err)
	}
	return nil
}

// Tables converts the detector settings into an engine configuration.
// Debug output is left to the caller.
func (c *Config) Tables() tables.Config {
	return tables.Config{
		LineScale:       c.Detector.LineScale,
		MorphIterations: c.Detector.MorphIterations,
		MinSpanRatio:    c.Detector.MinSpanRatio,
		CellThreshold:   uint8(min(max(c.Detector.CellThreshold, 0), 255)),
		BorderTrim:      c.Detector.BorderTrim,
		CellWorkers:     c.CellWorkers,
	}
}
