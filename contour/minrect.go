package contour

import (
	"image"
	"math"
	"sort"

	"github.com/tsawler/gridscan/model"
)

// RotatedRect is a rectangle of the given size centred on Center, whose
// Width edge makes Angle degrees with the x axis.
type RotatedRect struct {
	Center model.Point
	Width  float64
	Height float64
	Angle  float64
}

// Area returns Width*Height
func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// Points returns the four corners of the rectangle
func (r RotatedRect) Points() [4]model.Point {
	rad := r.Angle * math.Pi / 180
	u := model.Point{X: math.Cos(rad), Y: math.Sin(rad)}
	v := model.Point{X: -u.Y, Y: u.X}
	hw, hh := r.Width/2, r.Height/2

	corner := func(a, b float64) model.Point {
		return model.Point{
			X: r.Center.X + u.X*a + v.X*b,
			Y: r.Center.Y + u.Y*a + v.Y*b,
		}
	}
	return [4]model.Point{
		corner(-hw, -hh),
		corner(hw, -hh),
		corner(hw, hh),
		corner(-hw, hh),
	}
}

// MinAreaRect returns the minimum-area rectangle enclosing points. It runs
// rotating calipers over the convex hull: the optimal rectangle has one side
// collinear with a hull edge. Among equal areas the first edge wins.
func MinAreaRect(points []image.Point) RotatedRect {
	hull := ConvexHull(points)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: model.Pt(hull[0].X, hull[0].Y)}
	case 2:
		a, b := model.Pt(hull[0].X, hull[0].Y), model.Pt(hull[1].X, hull[1].Y)
		return RotatedRect{
			Center: model.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2},
			Width:  a.Distance(b),
			Angle:  math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi,
		}
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	n := len(hull)
	for i := 0; i < n; i++ {
		origin := model.Pt(hull[i].X, hull[i].Y)
		next := model.Pt(hull[(i+1)%n].X, hull[(i+1)%n].Y)
		edge := next.Sub(origin)
		length := math.Hypot(edge.X, edge.Y)
		if length == 0 {
			continue
		}
		u := model.Point{X: edge.X / length, Y: edge.Y / length}
		v := model.Point{X: -u.Y, Y: u.X}

		minA, maxA := math.Inf(1), math.Inf(-1)
		minB, maxB := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			d := model.Pt(p.X, p.Y).Sub(origin)
			a := d.X*u.X + d.Y*u.Y
			b := d.X*v.X + d.Y*v.Y
			minA, maxA = math.Min(minA, a), math.Max(maxA, a)
			minB, maxB = math.Min(minB, b), math.Max(maxB, b)
		}

		area := (maxA - minA) * (maxB - minB)
		if area < bestArea {
			bestArea = area
			midA, midB := (minA+maxA)/2, (minB+maxB)/2
			best = RotatedRect{
				Center: model.Point{
					X: origin.X + u.X*midA + v.X*midB,
					Y: origin.Y + u.Y*midA + v.Y*midB,
				},
				Width:  maxA - minA,
				Height: maxB - minB,
				Angle:  math.Atan2(u.Y, u.X) * 180 / math.Pi,
			}
		}
	}
	return best
}

// ConvexHull returns the convex hull of points using Andrew's monotone
// chain. Duplicate and collinear points are dropped, so a set of collinear
// points yields its two end points.
func ConvexHull(points []image.Point) []image.Point {
	sorted := make([]image.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	uniq := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}

	cross := func(o, a, b image.Point) int64 {
		return int64(a.X-o.X)*int64(b.Y-o.Y) - int64(a.Y-o.Y)*int64(b.X-o.X)
	}

	var lower []image.Point
	for _, p := range uniq {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []image.Point
	for i := len(uniq) - 1; i >= 0; i-- {
		p := uniq[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}
