//go:build !gocv

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridscan/overlay"
)

// errNoWindow is returned when debug_window is set in a build without gocv.
var errNoWindow = errors.New("debug window not available; rebuild with -tags gocv")

// registerWindowFlag adds nothing: the window needs OpenCV.
func registerWindowFlag(*cobra.Command) {}

func newWindowSink() (overlay.Sink, error) {
	return nil, errNoWindow
}
