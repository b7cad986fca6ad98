package overlay

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
)

// Sink receives diagnostic images together with the rectangles detected on
// them. Extraction never depends on what a sink does; errors it returns are
// only reported.
type Sink interface {
	Show(ctx context.Context, name string, img image.Image, rects []image.Rectangle) error
}

// Nop discards everything
type Nop struct{}

// Show implements Sink
func (Nop) Show(context.Context, string, image.Image, []image.Rectangle) error { return nil }

// Multi sends every call to each sink in turn and returns the first error
type Multi []Sink

// Show implements Sink
func (m Multi) Show(ctx context.Context, name string, img image.Image, rects []image.Rectangle) error {
	var first error
	for _, s := range m {
		if err := s.Show(ctx, name, img, rects); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LineColor is the colour used to outline detected rectangles
var LineColor = color.NRGBA{R: 0, G: 255, B: 0, A: 255}

// Draw returns a colour copy of img with every rectangle outlined in c using
// strokes of the given thickness. Rectangles are in img's coordinates.
func Draw(img image.Image, rects []image.Rectangle, c color.NRGBA, thickness int) *image.NRGBA {
	out := imaging.Clone(img)
	origin := img.Bounds().Min
	thickness = max(thickness, 1)

	for _, r := range rects {
		r = r.Sub(origin)
		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
			image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
			image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
		}
		for _, e := range edges {
			e = e.Intersect(out.Rect)
			for y := e.Min.Y; y < e.Max.Y; y++ {
				for x := e.Min.X; x < e.Max.X; x++ {
					out.SetNRGBA(x, y, c)
				}
			}
		}
	}
	return out
}

// Shot is one call recorded by a Recorder
type Shot struct {
	Name   string
	Bounds image.Rectangle
	Rects  []image.Rectangle
}

// Recorder keeps every Show call in memory. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	shots []Shot
}

// Show implements Sink
func (r *Recorder) Show(_ context.Context, name string, img image.Image, rects []image.Rectangle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	shot := Shot{Name: name, Rects: append([]image.Rectangle(nil), rects...)}
	if img != nil {
		shot.Bounds = img.Bounds()
	}
	r.shots = append(r.shots, shot)
	return nil
}

// Shots returns a copy of the recorded calls
func (r *Recorder) Shots() []Shot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Shot(nil), r.shots...)
}
