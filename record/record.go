// Package record turns segmented tables into rows of recognized text and
// writes them out as CSV or Markdown.
package record

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/ocr"
)

// Clean NFKC-normalizes and trims every text and drops the ones left
// empty. The order of the survivors is preserved.
func Clean(texts []string) []string {
	var out []string
	for _, s := range texts {
		if s = CleanText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CleanText NFKC-normalizes a single text and trims surrounding whitespace
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// Stats counts what happened while recognizing a table
type Stats struct {
	Cells       int // cells handed to the recognizer
	Failed      int // cells whose recognition returned an error
	DroppedRows int // rows left empty after cleanup
}

// Add accumulates other into s
func (s *Stats) Add(other Stats) {
	s.Cells += other.Cells
	s.Failed += other.Failed
	s.DroppedRows += other.DroppedRows
}

// FromTable recognizes every cell and returns one record per table row,
// texts in column order. Empty texts are removed from their row and rows
// with nothing left are dropped. A recognition error only loses its cell.
// The returned error is non-nil only when ctx is cancelled.
func FromTable(ctx context.Context, t *model.Table, rec ocr.Recognizer) ([][]string, Stats, error) {
	var records [][]string
	var stats Stats
	if t.Empty() {
		return nil, stats, nil
	}
	for _, row := range t.Rows {
		texts, err := recognizeRow(ctx, row, rec, &stats)
		if err != nil {
			return nil, stats, err
		}
		cleaned := Clean(texts)
		if len(cleaned) == 0 {
			stats.DroppedRows++
			continue
		}
		records = append(records, cleaned)
	}
	return records, stats, nil
}

// FromTableAligned is FromTable with every text placed at its cell's grid
// column. Records have one field per grid column and missing or empty
// cells stay as empty fields, so columns line up across rows. Rows with no
// text at all are dropped.
func FromTableAligned(ctx context.Context, t *model.Table, rec ocr.Recognizer) ([][]string, Stats, error) {
	var records [][]string
	var stats Stats
	if t.Empty() {
		return nil, stats, nil
	}
	width := gridWidth(t)
	for _, row := range t.Rows {
		texts, err := recognizeRow(ctx, row, rec, &stats)
		if err != nil {
			return nil, stats, err
		}
		fields := make([]string, width)
		empty := true
		for j, c := range row.Cells {
			if c.GridCol < 0 || c.GridCol >= width {
				continue
			}
			if s := CleanText(texts[j]); s != "" {
				fields[c.GridCol] = s
				empty = false
			}
		}
		if empty {
			stats.DroppedRows++
			continue
		}
		records = append(records, fields)
	}
	return records, stats, nil
}

func gridWidth(t *model.Table) int {
	n := len(t.Vertical) - 1
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			n = max(n, c.GridCol+1)
		}
	}
	return max(n, 0)
}

// recognizeRow returns one raw text per cell; failed cells give "".
func recognizeRow(ctx context.Context, row model.Row, rec ocr.Recognizer, stats *Stats) ([]string, error) {
	texts := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats.Cells++
		if c.Image == nil {
			stats.Failed++
			continue
		}
		text, err := rec.Recognize(c.Image)
		if err != nil {
			stats.Failed++
			continue
		}
		texts[j] = text
	}
	return texts, nil
}
