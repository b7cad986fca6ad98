package raster

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrEmptyImage is returned when an operation receives an image with zero
// area.
var ErrEmptyImage = errors.New("empty image")

// Foreground and Background are the two sample values of a binary mask.
const (
	Foreground uint8 = 255
	Background uint8 = 0
)

// FromBuffer wraps a caller-owned 8-bit grayscale buffer without copying it.
// The buffer must hold at least (height-1)*stride+width samples.
func FromBuffer(pix []byte, width, height, stride int) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}
	if stride < width {
		return nil, fmt.Errorf("stride %d smaller than width %d", stride, width)
	}
	if need := (height-1)*stride + width; len(pix) < need {
		return nil, fmt.Errorf("insufficient data: got %d, expected %d", len(pix), need)
	}
	return &image.Gray{Pix: pix, Stride: stride, Rect: image.Rect(0, 0, width, height)}, nil
}

// ToGray converts any image to an 8-bit grayscale image anchored at the
// origin. A *image.Gray that is already anchored at the origin is returned
// unchanged.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// IsEmpty reports whether img is nil or has zero area
func IsEmpty(img *image.Gray) bool {
	return img == nil || img.Rect.Empty()
}

// Clone returns a copy of img anchored at the origin with a tight stride
func Clone(img *image.Gray) *image.Gray {
	return Crop(img, img.Rect)
}

// Crop copies the part of img inside r into a new image anchored at the
// origin. The rectangle is clipped to the image bounds; the result may be
// empty.
func Crop(img *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(img.Rect)
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		src := img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], img.Pix[src:src+r.Dx()])
	}
	return dst
}

// Trim removes n pixels from every edge. The second result is false when
// nothing would remain.
func Trim(img *image.Gray, n int) (*image.Gray, bool) {
	r := img.Rect.Inset(n)
	if img.Rect.Dx() <= 2*n || img.Rect.Dy() <= 2*n {
		return nil, false
	}
	return Crop(img, r), true
}

// normalize returns img anchored at the origin, copying only when needed.
func normalize(img *image.Gray) *image.Gray {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	return Crop(img, img.Rect)
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring about
// the edge samples (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
