//go:build gocv

package tables

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/tsawler/gridscan/model"
	"github.com/tsawler/gridscan/raster"
	"github.com/tsawler/gridscan/rectify"
)

// OpenCVDetector runs the table locator and line filter through OpenCV.
// Cell refinement is shared with MorphDetector, so both detectors cut cells
// the same way once the grid is known.
type OpenCVDetector struct {
	config Config
}

// NewOpenCVDetector creates a detector with the default configuration
func NewOpenCVDetector() *OpenCVDetector {
	return &OpenCVDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("opencv")
func (d *OpenCVDetector) Name() string {
	return "opencv"
}

// Configure validates and sets the detector configuration
func (d *OpenCVDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	return nil
}

// Extract behaves like MorphDetector.Extract
func (d *OpenCVDetector) Extract(ctx context.Context, page *image.Gray) (*model.Table, error) {
	if raster.IsEmpty(page) {
		return nil, raster.ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := grayMat(page)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mask := binarizeMat(src)
	defer mask.Close()

	table, ok, err := warpLargest(mask, src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.NewTable(nil), nil
	}
	defer table.Close()

	tableImg, err := matToGray(table)
	if err != nil {
		return nil, err
	}

	lines := binarizeMat(table)
	defer lines.Close()
	w, h := table.Cols(), table.Rows()

	vKernel := raster.LineKernel(true, h, d.config.LineScale)
	hKernel := raster.LineKernel(false, w, d.config.LineScale)
	vertical := matBoundaries(model.Vertical, lines, vKernel, d.config.MorphIterations, h, d.config.MinSpanRatio)
	horizontal := matBoundaries(model.Horizontal, lines, hKernel, d.config.MorphIterations, w, d.config.MinSpanRatio)

	showLines(ctx, d.config, tableImg, horizontal, vertical)
	return SegmentCells(ctx, tableImg, horizontal, vertical, d.config)
}

// grayMat copies img into a single channel Mat
func grayMat(img *image.Gray) (gocv.Mat, error) {
	img = raster.ToGray(img)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := make([]byte, 0, w*h)
	for y := 0; y < h; y++ {
		pix = append(pix, img.Pix[y*img.Stride:y*img.Stride+w]...)
	}
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create Mat: %w", err)
	}
	return mat, nil
}

func matToGray(mat gocv.Mat) (*image.Gray, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert Mat: %w", err)
	}
	return raster.ToGray(img), nil
}

// binarizeMat inverts, blurs with a 5x5 Gaussian and splits at the Otsu
// threshold, so ink becomes foreground.
func binarizeMat(src gocv.Mat) gocv.Mat {
	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(src, &inverted)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(inverted, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	gocv.Threshold(blurred, &mask, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return mask
}

// warpLargest rectifies the minimum-area rectangle of the largest external
// contour of mask out of src. ok is false when no usable region exists.
func warpLargest(mask, src gocv.Mat) (out gocv.Mat, ok bool, err error) {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, -1.0
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if c.Size() == 0 {
			continue
		}
		if area := gocv.ContourArea(c); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return gocv.Mat{}, false, nil
	}

	box := gocv.MinAreaRect(contours.At(best))
	if len(box.Points) != 4 {
		return gocv.Mat{}, false, nil
	}
	var corners [4]model.Point
	for i, p := range box.Points {
		corners[i] = model.Pt(p.X, p.Y)
	}
	quad := model.OrderCorners(corners)
	w, h := quad.Size()
	if w <= 0 || h <= 0 || quad[0] == quad[1] {
		return gocv.Mat{}, false, nil
	}

	from := gocv.NewPointVectorFromPoints([]image.Point{
		quad[0].Image(), quad[1].Image(), quad[2].Image(), quad[3].Image(),
	})
	defer from.Close()
	to := gocv.NewPointVectorFromPoints([]image.Point{
		image.Pt(0, 0), image.Pt(w-1, 0), image.Pt(w-1, h-1), image.Pt(0, h-1),
	})
	defer to.Close()

	m := gocv.GetPerspectiveTransform(from, to)
	defer m.Close()
	if m.Empty() {
		return gocv.Mat{}, false, fmt.Errorf("failed to locate table: %w", rectify.ErrDegenerateQuad)
	}

	out = gocv.NewMat()
	gocv.WarpPerspective(src, &out, m, image.Pt(w, h))
	return out, true, nil
}

// matBoundaries opens the line mask with a one pixel thick kernel, boxes the
// surviving strokes and filters them like the pure Go detector.
func matBoundaries(axis model.Axis, lines gocv.Mat, k raster.Kernel, iterations, span int, ratio float64) []model.Boundary {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k.Width, k.Height))
	defer kernel.Close()

	cur := lines.Clone()
	for i := 0; i < iterations; i++ {
		next := gocv.NewMat()
		gocv.Erode(cur, &next, kernel)
		cur.Close()
		cur = next
	}
	for i := 0; i < iterations; i++ {
		next := gocv.NewMat()
		gocv.Dilate(cur, &next, kernel)
		cur.Close()
		cur = next
	}
	defer cur.Close()

	contours := gocv.FindContours(cur, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	all := make([]model.Boundary, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		all = append(all, model.BoundaryFromRect(axis, gocv.BoundingRect(contours.At(i))))
	}
	return filterBoundaries(all, span, ratio)
}
