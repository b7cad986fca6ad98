package raster

import (
	"image"
	"math"
)

// Kernel is a rectangular structuring element anchored at its centre
// (Width/2, Height/2).
type Kernel struct {
	Width  int
	Height int
}

// RectKernel returns a rectangular structuring element. Dimensions below 1
// are raised to 1.
func RectKernel(width, height int) Kernel {
	return Kernel{Width: max(width, 1), Height: max(height, 1)}
}

// LineKernel returns a kernel one pixel thick spanning ceil(ratio*length)
// pixels along the given orientation.
func LineKernel(vertical bool, length int, ratio float64) Kernel {
	n := int(math.Ceil(float64(length) * ratio))
	if vertical {
		return RectKernel(1, n)
	}
	return RectKernel(n, 1)
}

// Erode shrinks the foreground of a binary mask: a pixel survives only if
// every in-bounds pixel under the kernel is foreground. Samples outside the
// image are ignored, so features touching the edge are not eaten away.
func Erode(mask *image.Gray, k Kernel, iterations int) *image.Gray {
	out := normalize(mask)
	for i := 0; i < iterations; i++ {
		out = morphPass(out, k, true)
	}
	if iterations <= 0 {
		out = Clone(out)
	}
	return out
}

// Dilate grows the foreground of a binary mask using the reflected kernel,
// so that Dilate(Erode(m)) never shifts a feature.
//
// For even kernel lengths this departs from OpenCV's dilate, which keeps the
// anchor at n/2: a 2-pixel kernel here grows a feature one pixel towards the
// origin, where OpenCV grows it away from the origin. Odd lengths match.
func Dilate(mask *image.Gray, k Kernel, iterations int) *image.Gray {
	out := normalize(mask)
	for i := 0; i < iterations; i++ {
		out = morphPass(out, k, false)
	}
	if iterations <= 0 {
		out = Clone(out)
	}
	return out
}

// Open erodes then dilates, each repeated iterations times. It removes every
// foreground feature that cannot contain the (iterated) kernel.
func Open(mask *image.Gray, k Kernel, iterations int) *image.Gray {
	return Dilate(Erode(mask, k, iterations), k, iterations)
}

// morphPass applies one erosion or dilation as a horizontal then a vertical
// 1-D pass, which is exact for rectangular kernels.
func morphPass(src *image.Gray, k Kernel, erode bool) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	cur := src
	if k.Width > 1 {
		dst := image.NewGray(image.Rect(0, 0, w, h))
		counts := make([]int, w+1)
		for y := 0; y < h; y++ {
			row := cur.Pix[y*cur.Stride : y*cur.Stride+w]
			for x, v := range row {
				counts[x+1] = counts[x]
				if v != Background {
					counts[x+1]++
				}
			}
			out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			for x := 0; x < w; x++ {
				lo, hi := window(x, w, k.Width, erode)
				if hit(counts[hi+1]-counts[lo], hi-lo+1, erode) {
					out[x] = Foreground
				}
			}
		}
		cur = dst
	}
	if k.Height > 1 {
		dst := image.NewGray(image.Rect(0, 0, w, h))
		counts := make([]int, h+1)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				counts[y+1] = counts[y]
				if cur.Pix[y*cur.Stride+x] != Background {
					counts[y+1]++
				}
			}
			for y := 0; y < h; y++ {
				lo, hi := window(y, h, k.Height, erode)
				if hit(counts[hi+1]-counts[lo], hi-lo+1, erode) {
					dst.Pix[y*dst.Stride+x] = Foreground
				}
			}
		}
		cur = dst
	}
	if cur == src {
		cur = Clone(src)
	}
	return cur
}

// window returns the clipped sample range [lo, hi] under a kernel of size n
// anchored at n/2. Dilation uses the reflected window.
func window(i, limit, n int, erode bool) (lo, hi int) {
	anchor := n / 2
	if erode {
		lo, hi = i-anchor, i-anchor+n-1
	} else {
		lo, hi = i-(n-1-anchor), i+anchor
	}
	return max(lo, 0), min(hi, limit-1)
}

func hit(count, span int, erode bool) bool {
	if erode {
		return count == span
	}
	return count > 0
}
