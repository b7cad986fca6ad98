package model

import (
	"image"
	"math"
)

// Point represents a 2D point in pixel space (x right, y down)
type Point struct {
	X, Y float64
}

// Pt is shorthand for constructing a Point from integer coordinates
func Pt(x, y int) Point {
	return Point{X: float64(x), Y: float64(y)}
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Image rounds the point to the nearest integer pixel
func (p Point) Image() image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Quad is a quadrilateral given by four corner points. After OrderCorners the
// corners are top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// QuadFromRect returns the corners of r in TL, TR, BR, BL order. The corners
// are pixel centres, so the right and bottom edges sit at Max-1.
func QuadFromRect(r image.Rectangle) Quad {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X-1), float64(r.Max.Y-1)
	return Quad{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// OrderCorners orders the corners deterministically: the smallest x+y is the
// top-left, the largest x+y the bottom-right, the smallest y-x the top-right
// and the largest y-x the bottom-left. Ties keep the earliest point.
//
// A rectangle turned exactly 45 degrees ties on both rules, so the top-left
// and top-right come back as the same point. rectify.Warp rejects such a quad
// and the page yields an empty table.
func OrderCorners(pts [4]Point) Quad {
	var q Quad
	minSum, maxSum := 0, 0
	minDiff, maxDiff := 0, 0
	for i := 1; i < 4; i++ {
		s := pts[i].X + pts[i].Y
		d := pts[i].Y - pts[i].X
		if s < pts[minSum].X+pts[minSum].Y {
			minSum = i
		}
		if s > pts[maxSum].X+pts[maxSum].Y {
			maxSum = i
		}
		if d < pts[minDiff].Y-pts[minDiff].X {
			minDiff = i
		}
		if d > pts[maxDiff].Y-pts[maxDiff].X {
			maxDiff = i
		}
	}
	q[0] = pts[minSum]
	q[1] = pts[minDiff]
	q[2] = pts[maxSum]
	q[3] = pts[maxDiff]
	return q
}

// TopLeft returns the first corner
func (q Quad) TopLeft() Point { return q[0] }

// TopRight returns the second corner
func (q Quad) TopRight() Point { return q[1] }

// BottomRight returns the third corner
func (q Quad) BottomRight() Point { return q[2] }

// BottomLeft returns the fourth corner
func (q Quad) BottomLeft() Point { return q[3] }

// Size returns the integer width and height of the axis-aligned rectangle the
// quad rectifies onto: the truncated length of the longer of each pair of
// opposing edges.
func (q Quad) Size() (width, height int) {
	widthA := int(q[2].Distance(q[3]))
	widthB := int(q[1].Distance(q[0]))
	heightA := int(q[1].Distance(q[2]))
	heightB := int(q[0].Distance(q[3]))
	return max(widthA, widthB), max(heightA, heightB)
}

// Translate shifts every corner by d
func (q Quad) Translate(d Point) Quad {
	for i := range q {
		q[i] = q[i].Add(d)
	}
	return q
}

// Bounds returns the smallest image.Rectangle that covers every corner pixel
func (q Quad) Bounds() image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range q {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Floor(maxX))+1, int(math.Floor(maxY))+1,
	)
}

// IsFinite reports whether every coordinate is a finite number
func (q Quad) IsFinite() bool {
	for _, p := range q {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Matrix3 is a row-major 3x3 projective transformation
type Matrix3 [9]float64

// Identity3 returns the identity transformation
func Identity3() Matrix3 {
	return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Transform applies the transformation to a point, dividing by the
// homogeneous coordinate. The second result is false when the point maps to
// infinity.
func (m Matrix3) Transform(p Point) (Point, bool) {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	if w == 0 {
		return Point{}, false
	}
	return Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}, true
}

// Multiply returns m*other (other is applied first)
func (m Matrix3) Multiply(other Matrix3) Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i*3+j] += m[i*3+k] * other[k*3+j]
			}
		}
	}
	return r
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix3) IsIdentity() bool {
	return m == Identity3()
}
