package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// Writer serializes records
type Writer interface {
	Write(records [][]string) error
}

// CSVWriter writes comma-separated records with minimal quoting. Records
// may differ in length.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSVWriter on w
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write writes all records and flushes
func (c *CSVWriter) Write(records [][]string) error {
	if err := c.w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// MarkdownWriter renders records as a Markdown table preview. The first
// record is the header row, and shorter rows are padded to the widest.
type MarkdownWriter struct {
	output io.Writer

	// Title, when set, is written as a level-2 heading above the table.
	Title string
}

// NewMarkdownWriter creates a MarkdownWriter on w
func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: w}
}

// Write renders the table. Nothing but the title is written for an empty
// record set.
func (m *MarkdownWriter) Write(records [][]string) error {
	md := markdown.NewMarkdown(m.output)
	if m.Title != "" {
		md.H2(m.Title)
		md.PlainText("")
	}

	if rows := pad(records); len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: rows[0],
			Rows:   rows[1:],
		})
		md.PlainText("")
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

// pad copies records into rows of equal width with newlines flattened
func pad(records [][]string) [][]string {
	width := 0
	for _, r := range records {
		width = max(width, len(r))
	}
	if width == 0 {
		return nil
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, width)
		for j, s := range r {
			row[j] = strings.ReplaceAll(s, "\n", " ")
		}
		rows[i] = row
	}
	return rows
}
