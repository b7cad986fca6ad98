// Package contour traces the outer borders of foreground regions in a binary
// mask and measures them.
//
// [FindExternal] returns one [Contour] per 8-connected region that is not
// nested inside another region. Regions sitting in the hole of another
// region, such as text inside a table frame, are skipped:
//
//	for _, c := range contour.FindExternal(mask) {
//	    r := c.BoundingRect()
//	    ...
//	}
//
// [Contour.MinAreaRect] fits the minimum-area rotated rectangle and
// [RotatedRect.Points] returns its corners, which is how a skewed table
// frame is located on a page.
package contour
