package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/gridscan/internal/config"
)

func TestConfigInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	run := func(args ...string) (string, error) {
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append([]string{"config", "init", "-o", path}, args...))
		err := root.Execute()
		return out.String(), err
	}

	out, err := run()
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected the path in the output, got %q", out)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written file does not load: %v", err)
	}
	if cfg.Workers != config.DefaultWorkers {
		t.Errorf("expected default workers, got %d", cfg.Workers)
	}

	if _, err := run(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected an already exists error, got %v", err)
	}
	if _, err := run("-f"); err != nil {
		t.Errorf("forced init failed: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 9\nlanguage: fra\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "show", "-c", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"workers: 9", "language: fra", "output_dir: outputs"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output, got %q", want, out.String())
		}
	}
}
