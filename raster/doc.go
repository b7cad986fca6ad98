// Package raster provides the pixel-level operations used by grid
// extraction: binarization and binary morphology over *image.Gray.
//
// # Binarization
//
// [Binarize] turns a scanned page into a mask where ink is foreground:
//
//	mask, err := raster.Binarize(page)
//	if errors.Is(err, raster.ErrEmptyImage) {
//	    // zero-area input
//	}
//
// It inverts, smooths with a fixed 5x5 Gaussian and splits at the Otsu
// threshold computed from the histogram. [BinarizeOtsu] skips the inversion
// and [Threshold] applies a fixed level.
//
// Masks are *image.Gray values holding only [Foreground] (255) and
// [Background] (0), so they can be saved or displayed like any image.
//
// # Morphology
//
// [Erode], [Dilate] and [Open] work with rectangular [Kernel] values. An
// opening with a long, one-pixel-thick kernel keeps only straight runs at
// least as long as the kernel:
//
//	k := raster.LineKernel(true, h, 0.2) // 1 x ceil(0.2*h)
//	lines := raster.Open(mask, k, 2)
//
// Pixels outside the image never constrain erosion, so lines that run into
// the image edge survive intact.
package raster
