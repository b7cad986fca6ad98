package rectify

import (
	"image"
	"math"

	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/raster"
)

// snapEpsilon absorbs floating point noise before coordinates are truncated
// or sampled, so that an exact integer computed as 41.9999999 stays 42.
const snapEpsilon = 1e-6

// PerspectiveTransform returns the projective transformation that maps each
// point of from onto the point of to with the same index. It fails with
// ErrDegenerateQuad when three or more of the points are collinear.
func PerspectiveTransform(from, to [4]model.Point) (model.Matrix3, error) {
	// Unknowns a..h of
	//   u = (a x + b y + c) / (g x + h y + 1)
	//   v = (d x + e y + f) / (g x + h y + 1)
	var m [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := from[i].X, from[i].Y
		u, v := to[i].X, to[i].Y
		m[2*i] = [9]float64{x, y, 1, 0, 0, 0, -x * u, -y * u, u}
		m[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -x * v, -y * v, v}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return model.Matrix3{}, ErrDegenerateQuad
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := m[r][col] / m[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < 9; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	var h model.Matrix3
	for i := 0; i < 8; i++ {
		h[i] = m[i][8] / m[i][i]
	}
	h[8] = 1
	return h, nil
}

// Warp maps the quadrilateral quad of src onto an axis-aligned image of
// quad.Size(), with the corners TL, TR, BR, BL landing on the corresponding
// corner pixels. Samples are bilinear; positions outside src read as 0.
// A quad with two coincident neighbouring corners fails with
// ErrDegenerateQuad.
func Warp(src *image.Gray, quad model.Quad) (*image.Gray, error) {
	if raster.IsEmpty(src) {
		return nil, raster.ErrEmptyImage
	}
	if !quad.IsFinite() {
		return nil, ErrDegenerateQuad
	}
	for i := range quad {
		if quad[i] == quad[(i+1)%4] {
			return nil, ErrDegenerateQuad
		}
	}
	w, h := quad.Size()
	if w <= 0 || h <= 0 {
		return nil, ErrDegenerateQuad
	}

	dst := model.Quad{
		{X: 0, Y: 0},
		{X: float64(w - 1), Y: 0},
		{X: float64(w - 1), Y: float64(h - 1)},
		{X: 0, Y: float64(h - 1)},
	}
	// Solve destination to source directly so every output pixel is pulled
	// from the source without inverting a matrix.
	inv, err := PerspectiveTransform(dst, quad)
	if err != nil {
		return nil, err
	}

	src = raster.ToGray(src)
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			p, ok := inv.Transform(model.Pt(x, y))
			if !ok {
				continue
			}
			row[x] = bilinear(src, snap(p.X), snap(p.Y))
		}
	}
	return out, nil
}

// bilinear samples src at a fractional position with a constant zero border
func bilinear(src *image.Gray, fx, fy float64) uint8 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if math.IsNaN(fx) || math.IsNaN(fy) || fx <= -1 || fy <= -1 || fx >= float64(w) || fy >= float64(h) {
		return 0
	}
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	ax, ay := fx-float64(x0), fy-float64(y0)

	at := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return float64(src.Pix[y*src.Stride+x])
	}
	top := at(x0, y0)*(1-ax) + at(x0+1, y0)*ax
	bottom := at(x0, y0+1)*(1-ax) + at(x0+1, y0+1)*ax
	v := math.Round(top*(1-ay) + bottom*ay)
	return uint8(math.Max(0, math.Min(255, v)))
}

func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapEpsilon {
		return r
	}
	return v
}

// truncate converts a corner coordinate to an integer the way a cast to an
// integer type would, after snapping near-integers.
func truncate(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapEpsilon {
		return r
	}
	return math.Trunc(v)
}
