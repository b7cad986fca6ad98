package tables

import (
	"fmt"
	"image"
	"sort"

	"github.com/tsawler/gridscan/contour"
	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/raster"
)

// DetectGridLines finds the long horizontal and vertical rulings of a
// rectified table image. Each axis is isolated with a morphological opening
// using a one-pixel-thick kernel sized relative to the table, the surviving
// strokes are boxed, sorted and filtered to those spanning at least
// MinSpanRatio of the table. Horizontal boundaries are ordered top to bottom
// and vertical ones left to right, with strictly increasing positions.
func DetectGridLines(table *image.Gray, cfg Config) (horizontal, vertical []model.Boundary, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	mask, err := raster.Binarize(table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to binarize table: %w", err)
	}
	w, h := mask.Rect.Dx(), mask.Rect.Dy()

	vKernel := raster.LineKernel(true, h, cfg.LineScale)
	hKernel := raster.LineKernel(false, w, cfg.LineScale)

	vertical = boundaries(model.Vertical, raster.Open(mask, vKernel, cfg.MorphIterations), h, cfg.MinSpanRatio)
	horizontal = boundaries(model.Horizontal, raster.Open(mask, hKernel, cfg.MorphIterations), w, cfg.MinSpanRatio)
	return horizontal, vertical, nil
}

// boundaries boxes every external stroke of a line mask and filters the
// boxes with filterBoundaries.
func boundaries(axis model.Axis, lines *image.Gray, span int, ratio float64) []model.Boundary {
	var all []model.Boundary
	for _, c := range contour.FindExternal(lines) {
		all = append(all, model.BoundaryFromRect(axis, c.BoundingRect()))
	}
	return filterBoundaries(all, span, ratio)
}

// filterBoundaries sorts boxes along the axis and keeps those spanning at
// least ratio*span with a strictly increasing position.
func filterBoundaries(all []model.Boundary, span int, ratio float64) []model.Boundary {
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Position < all[j].Position
	})

	minExtent := ratio * float64(span)
	kept := make([]model.Boundary, 0, len(all))
	for _, b := range all {
		if float64(b.Extent) < minExtent {
			continue
		}
		if n := len(kept); n > 0 && b.Position <= kept[n-1].Position {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}
