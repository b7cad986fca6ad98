package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// newFilled creates a w x h gray image filled with v
func newFilled(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// fillRect paints r with v
func fillRect(img *image.Gray, r image.Rectangle, v uint8) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func countForeground(img *image.Gray) int {
	n := 0
	for _, v := range img.Pix {
		if v == Foreground {
			n++
		}
	}
	return n
}

func TestFromBuffer(t *testing.T) {
	pix := make([]byte, 4*3)
	pix[4+1] = 200

	img, err := FromBuffer(pix, 3, 3, 4)
	if err != nil {
		t.Fatalf("FromBuffer failed: %v", err)
	}
	if img.GrayAt(1, 1).Y != 200 {
		t.Errorf("GrayAt(1,1) = %d, want 200", img.GrayAt(1, 1).Y)
	}

	if _, err := FromBuffer(pix, 0, 3, 4); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := FromBuffer(pix, 5, 3, 4); err == nil {
		t.Error("expected error for stride smaller than width")
	}
	if _, err := FromBuffer(pix[:8], 3, 3, 4); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestToGray(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(10, 10, 14, 12))
	rgba.Set(10, 10, color.White)

	g := ToGray(rgba)
	if g.Rect != image.Rect(0, 0, 4, 2) {
		t.Fatalf("unexpected bounds %v", g.Rect)
	}
	if g.GrayAt(0, 0).Y != 255 {
		t.Errorf("GrayAt(0,0) = %d, want 255", g.GrayAt(0, 0).Y)
	}

	already := image.NewGray(image.Rect(0, 0, 2, 2))
	if ToGray(already) != already {
		t.Error("expected origin-anchored gray image to be returned as is")
	}
}

func TestCropAndTrim(t *testing.T) {
	img := newFilled(10, 8, 0)
	fillRect(img, image.Rect(2, 2, 4, 4), 9)

	c := Crop(img, image.Rect(2, 2, 20, 5))
	if c.Rect != image.Rect(0, 0, 8, 3) {
		t.Fatalf("unexpected crop bounds %v", c.Rect)
	}
	if c.GrayAt(0, 0).Y != 9 || c.GrayAt(2, 0).Y != 0 {
		t.Error("crop copied the wrong pixels")
	}

	// A crop of a crop must address the parent's pixels correctly.
	sub := img.SubImage(image.Rect(1, 1, 6, 6)).(*image.Gray)
	c = Crop(sub, image.Rect(2, 2, 3, 3))
	if c.Rect.Dx() != 1 || c.GrayAt(0, 0).Y != 9 {
		t.Error("crop of sub-image addressed the wrong pixels")
	}

	trimmed, ok := Trim(img, 1)
	if !ok || trimmed.Rect != image.Rect(0, 0, 8, 6) {
		t.Errorf("Trim(1) = %v, %v", trimmed, ok)
	}
	if _, ok := Trim(newFilled(2, 5, 0), 1); ok {
		t.Error("expected Trim to fail when nothing remains")
	}
}

func TestInvert(t *testing.T) {
	img := newFilled(2, 2, 10)
	inv := Invert(img)
	for _, v := range inv.Pix {
		if v != 245 {
			t.Fatalf("inverted sample = %d, want 245", v)
		}
	}
	if img.Pix[0] != 10 {
		t.Error("Invert modified its input")
	}
}

func TestGaussianBlur5(t *testing.T) {
	t.Run("uniform image is unchanged", func(t *testing.T) {
		img := newFilled(7, 7, 123)
		out := GaussianBlur5(img)
		for i, v := range out.Pix {
			if v != 123 {
				t.Fatalf("sample %d = %d, want 123", i, v)
			}
		}
	})

	t.Run("line profile", func(t *testing.T) {
		img := newFilled(13, 5, 0)
		fillRect(img, image.Rect(5, 0, 8, 5), 255)
		out := GaussianBlur5(img)

		want := []uint8{0, 0, 0, 16, 80, 175, 223, 175, 80, 16, 0, 0, 0}
		for x, w := range want {
			if got := out.GrayAt(x, 2).Y; got != w {
				t.Errorf("x=%d: got %d, want %d", x, got, w)
			}
		}
	})

	t.Run("edges are mirrored", func(t *testing.T) {
		img := newFilled(6, 1, 0)
		img.Pix[0] = 255
		out := GaussianBlur5(img)
		// reflect-101: taps at -2,-1 map to 2,1 so the edge sample keeps 6/16.
		if got := out.Pix[0]; got != 96 {
			t.Errorf("edge sample = %d, want 96", got)
		}
	})
}

func TestOtsuThreshold(t *testing.T) {
	t.Run("bimodal", func(t *testing.T) {
		img := newFilled(10, 10, 50)
		fillRect(img, image.Rect(0, 0, 10, 5), 200)
		if got := OtsuThreshold(img); got != 50 {
			t.Errorf("threshold = %d, want 50", got)
		}
	})

	t.Run("uniform", func(t *testing.T) {
		if got := OtsuThreshold(newFilled(4, 4, 77)); got != 0 {
			t.Errorf("threshold = %d, want 0", got)
		}
	})
}

func TestThreshold(t *testing.T) {
	img := newFilled(3, 1, 0)
	img.Pix[0], img.Pix[1], img.Pix[2] = 165, 166, 255

	out := Threshold(img, 165)
	want := []uint8{Background, Foreground, Foreground}
	for i, w := range want {
		if out.Pix[i] != w {
			t.Errorf("sample %d = %d, want %d", i, out.Pix[i], w)
		}
	}
}

func TestBinarize(t *testing.T) {
	page := newFilled(60, 40, 255)
	fillRect(page, image.Rect(20, 10, 40, 30), 0)

	mask, err := Binarize(page)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	if mask.GrayAt(30, 20).Y != Foreground {
		t.Error("dark square should be foreground")
	}
	if mask.GrayAt(2, 2).Y != Background {
		t.Error("white paper should be background")
	}
	for _, v := range mask.Pix {
		if v != Foreground && v != Background {
			t.Fatalf("mask has non-binary sample %d", v)
		}
	}

	bright, err := BinarizeOtsu(page, false)
	if err != nil {
		t.Fatalf("BinarizeOtsu failed: %v", err)
	}
	if bright.GrayAt(2, 2).Y != Foreground || bright.GrayAt(30, 20).Y != Background {
		t.Error("non-inverted binarization should keep the paper as foreground")
	}

	blank, err := Binarize(newFilled(20, 20, 255))
	if err != nil {
		t.Fatalf("Binarize failed on blank page: %v", err)
	}
	if n := countForeground(blank); n != 0 {
		t.Errorf("blank page produced %d foreground pixels", n)
	}

	if _, err := Binarize(image.NewGray(image.Rect(0, 0, 0, 5))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := Binarize(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage for nil image, got %v", err)
	}
}

func TestOpenKeepsLongLines(t *testing.T) {
	mask := newFilled(30, 60, Background)
	// Full-height vertical line touching both edges.
	fillRect(mask, image.Rect(10, 0, 12, 60), Foreground)
	// Short horizontal stroke that must disappear.
	fillRect(mask, image.Rect(15, 20, 28, 22), Foreground)
	// Short vertical stroke, shorter than the iterated kernel.
	fillRect(mask, image.Rect(25, 40, 26, 50), Foreground)

	k := LineKernel(true, 60, 0.2) // 1 x 12
	if k.Width != 1 || k.Height != 12 {
		t.Fatalf("unexpected kernel %+v", k)
	}
	out := Open(mask, k, 2)

	for y := 0; y < 60; y++ {
		for x := 0; x < 30; x++ {
			want := Background
			if x >= 10 && x < 12 {
				want = Foreground
			}
			if got := out.GrayAt(x, y).Y; got != want {
				t.Fatalf("(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestErodeDilate(t *testing.T) {
	mask := newFilled(9, 1, Background)
	fillRect(mask, image.Rect(2, 0, 7, 1), Foreground)
	k := RectKernel(3, 1)

	eroded := Erode(mask, k, 1)
	for x := 0; x < 9; x++ {
		want := x >= 3 && x < 6
		if (eroded.Pix[x] == Foreground) != want {
			t.Errorf("eroded x=%d = %d", x, eroded.Pix[x])
		}
	}

	dilated := Dilate(mask, k, 1)
	for x := 0; x < 9; x++ {
		want := x >= 1 && x < 8
		if (dilated.Pix[x] == Foreground) != want {
			t.Errorf("dilated x=%d = %d", x, dilated.Pix[x])
		}
	}

	// Even kernels dilate with the reflected anchor.
	dot := newFilled(9, 1, Background)
	dot.Pix[4] = Foreground
	grown := Dilate(dot, RectKernel(2, 1), 1)
	for x := 0; x < 9; x++ {
		want := x == 3 || x == 4
		if (grown.Pix[x] == Foreground) != want {
			t.Errorf("even dilate x=%d = %d", x, grown.Pix[x])
		}
	}
	if opened := Open(dot, RectKernel(2, 1), 1); opened.Pix[4] != Background {
		t.Error("a single pixel should not survive opening with a 2-pixel kernel")
	}

	same := Erode(mask, k, 0)
	if same == mask || same.Pix[2] != Foreground {
		t.Error("zero iterations should return an equal copy")
	}
}
