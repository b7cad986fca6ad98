// Package log builds the slog loggers used by the command line tool.
// Library packages never log; they return errors and results.
package log

import (
	"io"
	"log/slog"
)

// New creates a text logger writing to w. Verbose mode logs at debug level,
// otherwise only informational messages and above are written.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSON is New with JSON output, for machine-read logs
func NewJSON(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
