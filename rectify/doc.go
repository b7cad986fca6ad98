// Package rectify locates the dominant region of a binary mask and maps it
// onto an upright image with a perspective transform.
//
// The same routine serves whole pages and single cells:
//
//	mask, _ := raster.Binarize(page)
//	table, quad, err := rectify.LocateLargestQuad(mask, page)
//	if errors.Is(err, rectify.ErrNoRegion) {
//	    // nothing on the page
//	}
//
// Corners are ordered top-left, top-right, bottom-right, bottom-left with
// [model.OrderCorners], so output orientation does not depend on the order
// in which the contour was traced.
package rectify
