//go:build !gocv

package tables

import (
	"context"
	"image"

	"github.com/tsawler/gridscan/model"
)

// OpenCVDetector is a stub detector that fails every extraction.
// To enable it, rebuild with: go build -tags gocv
type OpenCVDetector struct {
	config Config
}

// NewOpenCVDetector creates the stub detector
func NewOpenCVDetector() *OpenCVDetector {
	return &OpenCVDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("opencv")
func (d *OpenCVDetector) Name() string {
	return "opencv"
}

// Configure validates and sets the detector configuration
func (d *OpenCVDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	return nil
}

// Extract returns ErrOpenCVNotEnabled
func (d *OpenCVDetector) Extract(ctx context.Context, page *image.Gray) (*model.Table, error) {
	return nil, ErrOpenCVNotEnabled
}
