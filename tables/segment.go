package tables

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/raster"
	"github.com/tsawler/gridscan/rectify"
)

// CellResult is the outcome of refining one candidate cell. Exactly one of
// Cell and Err is meaningful.
type CellResult struct {
	GridRow int
	GridCol int
	Bounds  image.Rectangle
	Cell    model.Cell
	Err     error
}

// OK reports whether the candidate produced a cell
func (r CellResult) OK() bool {
	return r.Err == nil
}

// CheckGrid returns ErrInsufficientGrid unless both axes have at least two
// boundaries.
func CheckGrid(horizontal, vertical []model.Boundary) error {
	if len(horizontal) < 2 || len(vertical) < 2 {
		return fmt.Errorf("%w: %d horizontal, %d vertical", ErrInsufficientGrid, len(horizontal), len(vertical))
	}
	return nil
}

// CandidateRect returns the candidate cell between boundaries i-1 and i of
// horizontal and j-1 and j of vertical. It runs from the start of the
// earlier line to the end of the later one, so both lines belong to it.
func CandidateRect(horizontal, vertical []model.Boundary, i, j int) image.Rectangle {
	return image.Rect(
		vertical[j-1].Position, horizontal[i-1].Position,
		vertical[j].End(), horizontal[i].End(),
	)
}

// SegmentCells cuts the table image into cells along the given boundaries.
// Every candidate is refined independently; a row is appended only after
// all of its candidates resolved and only if at least one survived. Fewer
// than two boundaries on an axis yield an empty table. The only error is a
// cancelled context.
func SegmentCells(ctx context.Context, table *image.Gray, horizontal, vertical []model.Boundary, cfg Config) (*model.Table, error) {
	out := model.NewTable(table)
	out.Horizontal = horizontal
	out.Vertical = vertical
	if raster.IsEmpty(table) || CheckGrid(horizontal, vertical) != nil {
		return out, nil
	}
	table = raster.ToGray(table)

	rows := len(horizontal) - 1
	cols := len(vertical) - 1
	results := make([][]CellResult, rows)
	for i := range results {
		results[i] = make([]CellResult, cols)
	}

	resolve := func(i, j int) {
		r := CandidateRect(horizontal, vertical, i+1, j+1)
		cell, err := RefineCell(table, r, cfg)
		cell.GridRow, cell.GridCol = i, j
		results[i][j] = CellResult{GridRow: i, GridCol: j, Bounds: r, Cell: cell, Err: err}
	}

	if cfg.CellWorkers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.CellWorkers)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					resolve(i, j)
					return nil
				})
			}
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < rows; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for j := 0; j < cols; j++ {
				resolve(i, j)
			}
		}
	}

	for _, row := range results {
		out.AppendRow(FoldRow(row))
	}
	return out, nil
}

// FoldRow keeps the cells of the successful results in column order. It
// returns nil when no candidate survived.
func FoldRow(results []CellResult) []model.Cell {
	var cells []model.Cell
	for _, r := range results {
		if !r.OK() {
			continue
		}
		cells = append(cells, r.Cell)
	}
	return cells
}

// RefineCell crops r from the table, finds the largest bright region inside
// it (the cell interior between the rulings), rectifies that region, trims
// BorderTrim pixels from each edge and re-binarizes at CellThreshold.
func RefineCell(table *image.Gray, r image.Rectangle, cfg Config) (model.Cell, error) {
	r = r.Intersect(table.Rect)
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return model.Cell{}, fmt.Errorf("%w: %v", ErrDegenerateGeometry, r)
	}
	crop := raster.Crop(table, r)

	mask, err := raster.BinarizeOtsu(crop, false)
	if err != nil {
		return model.Cell{}, fmt.Errorf("%w: %w", ErrCellRefinementFailed, err)
	}
	content, quad, err := rectify.LocateLargestQuad(mask, crop)
	if err != nil {
		return model.Cell{}, fmt.Errorf("%w: %w", ErrCellRefinementFailed, err)
	}
	trimmed, ok := raster.Trim(content, cfg.BorderTrim)
	if !ok {
		return model.Cell{}, fmt.Errorf("%w: %dx%d content cannot lose %d pixels per edge",
			ErrCellRefinementFailed, content.Rect.Dx(), content.Rect.Dy(), cfg.BorderTrim)
	}

	return model.Cell{
		Bounds: r,
		Region: quad.Bounds().Add(r.Min).Intersect(r),
		Image:  raster.Threshold(trimmed, cfg.CellThreshold),
	}, nil
}
