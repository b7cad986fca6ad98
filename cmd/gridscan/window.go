//go:build gocv

package main

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/gridscan/overlay"
)

func registerWindowFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("debug-window", false, "Show detected grid lines in a window; press a key to continue")
}

func newWindowSink() (overlay.Sink, error) {
	return overlay.NewWindowSink(), nil
}
