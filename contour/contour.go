package contour

import (
	"image"
	"math"

	"github.com/tsawler/gridscan/raster"
)

// Contour is the traced outer border of one connected foreground region,
// as pixel coordinates in traversal order.
type Contour struct {
	Points []image.Point
}

// neighbour offsets, counter-clockwise on screen starting east
var (
	dirX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dirY = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

// directions used when flooding the outer background
var (
	step4X = [4]int{1, -1, 0, 0}
	step4Y = [4]int{0, 0, 1, -1}
)

// FindExternal returns the outer borders of the 8-connected foreground
// regions of mask that are not enclosed by another region. Any non-zero
// sample counts as foreground and everything outside the image as
// background. Contours are returned in raster order of their first pixel.
func FindExternal(mask *image.Gray) []Contour {
	if raster.IsEmpty(mask) {
		return nil
	}
	if mask.Rect.Min != (image.Point{}) {
		mask = raster.Clone(mask)
	}
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	fg := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && mask.Pix[y*mask.Stride+x] != raster.Background
	}

	starts := labelComponents(mask, w, h)
	if len(starts) == 0 {
		return nil
	}
	outside := outerBackground(mask, w, h)

	var contours []Contour
	for _, s := range starts {
		// The pixel above a region's first pixel lies in the background
		// region that immediately encloses it.
		if s.Y > 0 && !outside[(s.Y-1)*w+s.X] {
			continue
		}
		contours = append(contours, Contour{Points: trace(fg, s)})
	}
	return contours
}

// labelComponents floods every 8-connected foreground region and returns
// the first pixel of each in raster order.
func labelComponents(mask *image.Gray, w, h int) []image.Point {
	seen := make([]bool, w*h)
	var starts []image.Point
	var stack []int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if seen[idx] || mask.Pix[y*mask.Stride+x] == raster.Background {
				continue
			}
			starts = append(starts, image.Point{X: x, Y: y})
			seen[idx] = true
			stack = append(stack[:0], idx)
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%w, cur/w
				for d := 0; d < 8; d++ {
					nx, ny := cx+dirX[d], cy+dirY[d]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					n := ny*w + nx
					if seen[n] || mask.Pix[ny*mask.Stride+nx] == raster.Background {
						continue
					}
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return starts
}

// outerBackground marks the background pixels 4-connected to the image
// frame. Background regions not reached are holes inside some region.
func outerBackground(mask *image.Gray, w, h int) []bool {
	outside := make([]bool, w*h)
	var stack []int
	push := func(x, y int) {
		idx := y*w + x
		if outside[idx] || mask.Pix[y*mask.Stride+x] != raster.Background {
			return
		}
		outside[idx] = true
		stack = append(stack, idx)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := cur%w, cur/w
		for d := 0; d < 4; d++ {
			nx, ny := cx+step4X[d], cy+step4Y[d]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			push(nx, ny)
		}
	}
	return outside
}

// trace follows the outer border of the region whose first raster pixel is
// start. The west neighbour of start is background by construction.
func trace(fg func(x, y int) bool, start image.Point) []image.Point {
	// Find the last border pixel by searching clockwise from the west.
	s := 4
	found := false
	for k := 0; k < 8; k++ {
		s = (s + 7) % 8
		if fg(start.X+dirX[s], start.Y+dirY[s]) {
			found = true
			break
		}
	}
	if !found {
		return []image.Point{start}
	}

	second := image.Point{X: start.X + dirX[s], Y: start.Y + dirY[s]}
	cur := start
	var pts []image.Point
	for {
		var next image.Point
		for k := 0; k < 8; k++ {
			s = (s + 1) % 8
			next = image.Point{X: cur.X + dirX[s], Y: cur.Y + dirY[s]}
			if fg(next.X, next.Y) {
				break
			}
		}
		pts = append(pts, cur)
		if next == start && cur == second {
			break
		}
		cur = next
		s = (s + 4) % 8
	}
	return pts
}

// Area returns the area enclosed by the contour polygon through the pixel
// centres (shoelace formula). Open or single-pixel contours have zero area.
func (c Contour) Area() float64 {
	n := len(c.Points)
	if n < 3 {
		return 0
	}
	var sum int64
	for i := 0; i < n; i++ {
		p := c.Points[i]
		q := c.Points[(i+1)%n]
		sum += int64(p.X)*int64(q.Y) - int64(q.X)*int64(p.Y)
	}
	return math.Abs(float64(sum)) / 2
}

// BoundingRect returns the smallest axis-aligned rectangle containing every
// contour pixel.
func (c Contour) BoundingRect() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c.Points[0], Max: c.Points[0].Add(image.Point{X: 1, Y: 1})}
	for _, p := range c.Points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X+1)
		r.Max.Y = max(r.Max.Y, p.Y+1)
	}
	return r
}

// MinAreaRect returns the minimum-area rotated rectangle enclosing the
// contour pixels.
func (c Contour) MinAreaRect() RotatedRect {
	return MinAreaRect(c.Points)
}

// Largest returns the index of the contour with the greatest area, or -1 for
// an empty slice. On ties the earliest contour wins.
func Largest(contours []Contour) int {
	best := -1
	bestArea := -1.0
	for i, c := range contours {
		if a := c.Area(); a > bestArea {
			best = i
			bestArea = a
		}
	}
	return best
}
