package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
var (
	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidWorkers is returned when the page worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidCellWorkers is returned when the cell worker count is not positive.
	ErrInvalidCellWorkers = errors.New("invalid cell workers: must be positive")

	// ErrInvalidTimeout is returned when the page timeout is negative. Zero
	// disables the timeout.
	ErrInvalidTimeout = errors.New("invalid page timeout: must be non-negative")

	// ErrInvalidThreshold is returned when the cell threshold is outside 0..255.
	ErrInvalidThreshold = errors.New("invalid cell threshold: must be between 0 and 255")

	// ErrInvalidDetector is returned when the detector settings are rejected
	// by the detector itself.
	ErrInvalidDetector = errors.New("invalid detector settings")

	// ErrConfigNotFound is returned by Load when the file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
