package raster

import (
	"image"
)

// gaussian5 is the 5-tap binomial kernel used for a 5x5 Gaussian blur with
// automatic sigma. Its taps sum to 16.
var gaussian5 = [5]int32{1, 4, 6, 4, 1}

// Binarize converts a grayscale page into a binary mask where dark ink is the
// foreground: invert, blur with a 5x5 Gaussian, then split at the Otsu
// threshold.
func Binarize(img *image.Gray) (*image.Gray, error) {
	return BinarizeOtsu(img, true)
}

// BinarizeOtsu blurs img with a 5x5 Gaussian and splits it at the Otsu
// threshold. With invert set the intensities are inverted first, so dark
// pixels become the foreground; without it bright pixels are the foreground.
func BinarizeOtsu(img *image.Gray, invert bool) (*image.Gray, error) {
	if IsEmpty(img) {
		return nil, ErrEmptyImage
	}
	src := img
	if invert {
		src = Invert(img)
	}
	blurred := GaussianBlur5(src)
	return Threshold(blurred, OtsuThreshold(blurred)), nil
}

// Invert returns the photographic negative of img
func Invert(img *image.Gray) *image.Gray {
	src := normalize(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+w]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range s {
			d[x] = 255 - v
		}
	}
	return dst
}

// GaussianBlur5 smooths img with a separable 5x5 Gaussian kernel. Samples
// beyond the edges are mirrored (reflect-101). The arithmetic is integer so
// the result is exactly reproducible.
func GaussianBlur5(img *image.Gray) *image.Gray {
	src := normalize(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	// Horizontal pass, values scaled by 16.
	tmp := make([]int32, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x := 0; x < w; x++ {
			var sum int32
			for k, wt := range gaussian5 {
				sum += wt * int32(row[reflect101(x+k-2, w)])
			}
			tmp[y*w+x] = sum
		}
	}

	// Vertical pass, values scaled by 256 and rounded back to 8 bits.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum int32
			for k, wt := range gaussian5 {
				sum += wt * tmp[reflect101(y+k-2, h)*w+x]
			}
			dst.Pix[y*dst.Stride+x] = uint8((sum + 128) >> 8)
		}
	}
	return dst
}

// Histogram counts the samples at each intensity
func Histogram(img *image.Gray) [256]int {
	var hist [256]int
	src := normalize(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		for _, v := range src.Pix[y*src.Stride : y*src.Stride+w] {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold returns the intensity that maximises the between-class
// variance of the image histogram. Samples strictly greater than the result
// form the upper class. A single-valued image yields 0.
func OtsuThreshold(img *image.Gray) uint8 {
	hist := Histogram(img)

	var total, sumAll float64
	for i, n := range hist {
		total += float64(n)
		sumAll += float64(i) * float64(n)
	}

	var (
		best      float64
		threshold int
		w0, sum0  float64
	)
	for t, n := range hist {
		w0 += float64(n)
		sum0 += float64(t) * float64(n)
		if w0 == 0 {
			continue
		}
		w1 := total - w0
		if w1 == 0 {
			break
		}
		m0 := sum0 / w0
		m1 := (sumAll - sum0) / w1
		between := w0 * w1 * (m0 - m1) * (m0 - m1)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// Threshold returns a binary mask where samples greater than level are
// Foreground and all others Background.
func Threshold(img *image.Gray, level uint8) *image.Gray {
	src := normalize(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+w]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range s {
			if v > level {
				d[x] = Foreground
			}
		}
	}
	return dst
}
