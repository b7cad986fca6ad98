package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "gridscan" {
		t.Errorf("expected use 'gridscan', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("expected non-empty descriptions")
	}
	if cmd.Version == "" {
		t.Error("expected non-empty version")
	}

	flag := cmd.PersistentFlags().Lookup("verbose")
	if flag == nil {
		t.Fatal("expected verbose flag")
	}
	if flag.Shorthand != "v" || flag.DefValue != "false" {
		t.Errorf("unexpected verbose flag: shorthand %q default %q", flag.Shorthand, flag.DefValue)
	}

	want := map[string]bool{"extract": false, "config": false, "history": false, "version": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %q subcommand", name)
		}
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	extract, _, err := root.Find([]string{"extract"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	var buf bytes.Buffer
	root.SetErr(&buf)

	logger, err := newLogger(extract, false)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), "level=INFO msg=hello") {
		t.Errorf("expected text output, got %q", buf.String())
	}

	buf.Reset()
	if err := root.PersistentFlags().Set("log-format", "json"); err != nil {
		t.Fatal(err)
	}
	logger, err = newLogger(extract, false)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}

	if err := root.PersistentFlags().Set("log-format", "xml"); err != nil {
		t.Fatal(err)
	}
	if _, err := newLogger(extract, false); err == nil {
		t.Error("expected an error for an unknown log format")
	}
}

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	extract, _, err := root.Find([]string{"extract"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if getVerboseFlag(extract) {
		t.Error("expected verbose to default to false")
	}
	if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
		t.Fatal(err)
	}
	if !getVerboseFlag(extract) {
		t.Error("expected verbose to be read from the root command")
	}
}
