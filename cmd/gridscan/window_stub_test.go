//go:build !gocv

package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tsawler/gridscan/internal/config"
	"github.com/tsawler/gridscan/internal/log"
)

func TestDebugWindowNeedsOpenCV(t *testing.T) {
	if NewExtractCmd().Flags().Lookup("debug-window") != nil {
		t.Error("debug-window flag should only exist in gocv builds")
	}

	dir := t.TempDir()
	input := tablePNG(t, dir, "page.png")

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.DebugWindow = true
	err := extractInput(context.Background(), cfg, input, nil, nil, nil, log.Discard())
	if !errors.Is(err, errNoWindow) {
		t.Errorf("Expected errNoWindow, got %v", err)
	}
}
