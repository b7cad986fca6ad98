package rectify

import (
	"errors"
	"image"

	"github.com/tsawler/gridscan/contour"
	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/raster"
)

var (
	// ErrNoRegion is returned when the mask holds no usable foreground region
	ErrNoRegion = errors.New("no region found")

	// ErrDegenerateQuad is returned when a quadrilateral has no area or its
	// corners cannot define a perspective mapping
	ErrDegenerateQuad = errors.New("degenerate quadrilateral")
)

// LocateLargestQuad finds the foreground region of mask with the greatest
// area, fits its minimum-area rotated rectangle and returns that rectangle
// of src rectified onto an upright image, together with the ordered corners
// in src coordinates. mask supplies only the geometry; pixels come from src.
//
// Corners are truncated to whole pixels before ordering. The function keeps
// no state between calls.
func LocateLargestQuad(mask, src *image.Gray) (*image.Gray, model.Quad, error) {
	if raster.IsEmpty(mask) || raster.IsEmpty(src) {
		return nil, model.Quad{}, raster.ErrEmptyImage
	}

	var valid []contour.Contour
	for _, c := range contour.FindExternal(mask) {
		if len(c.Points) > 0 {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return nil, model.Quad{}, ErrNoRegion
	}

	box := valid[contour.Largest(valid)].MinAreaRect().Points()
	for i, p := range box {
		box[i] = model.Point{X: truncate(p.X), Y: truncate(p.Y)}
	}
	quad := model.OrderCorners(box)
	if !quad.IsFinite() {
		return nil, quad, ErrDegenerateQuad
	}

	out, err := Warp(src, quad)
	if err != nil {
		return nil, quad, err
	}
	return out, quad, nil
}
