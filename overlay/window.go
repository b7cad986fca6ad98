//go:build gocv

package overlay

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// WindowSink shows each diagnostic image in an OpenCV window and waits for
// a key press (or for ctx to end) before closing it.
type WindowSink struct {
	Width, Height int
	X, Y          int
}

// NewWindowSink returns a sink with a 1000x800 window at (500, 0)
func NewWindowSink() *WindowSink {
	return &WindowSink{Width: 1000, Height: 800, X: 500, Y: 0}
}

// Show implements Sink. No window is opened once ctx has ended.
func (s *WindowSink) Show(ctx context.Context, name string, img image.Image, rects []image.Rectangle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mat, err := toMat(img)
	if err != nil {
		return fmt.Errorf("overlay %q: %w", name, err)
	}
	defer mat.Close()

	green := color.RGBA{G: 255, A: 255}
	origin := img.Bounds().Min
	for _, r := range rects {
		gocv.Rectangle(&mat, r.Sub(origin), green, 2)
	}

	window := gocv.NewWindow(name)
	defer window.Close()
	window.ResizeWindow(s.Width, s.Height)
	window.MoveWindow(s.X, s.Y)
	window.IMShow(mat)

	for {
		if window.WaitKey(100) >= 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// toMat converts img to a BGR Mat
func toMat(img image.Image) (gocv.Mat, error) {
	nrgba := Draw(img, nil, LineColor, 1)
	b := nrgba.Bounds()

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, nrgba.Pix)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
