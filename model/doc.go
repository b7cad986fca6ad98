// Package model defines the data structures produced by grid extraction.
//
// A page is an *image.Gray. Extraction turns it into a [Table]: the
// rectified table image, the detected grid [Boundary] lines on each [Axis],
// and an ordered list of [Row] values holding [Cell] images ready for
// character recognition.
//
// # Geometry
//
// Coordinates are pixels with x growing right and y growing down. [Point]
// and [Quad] carry sub-pixel geometry for perspective correction:
//
//	q := model.OrderCorners([4]model.Point{p0, p1, p2, p3})
//	w, h := q.Size()
//
// [OrderCorners] sorts corners by coordinate sum and difference so that the
// same region always rectifies with the same orientation, whatever order its
// corners were found in. [Matrix3] is a projective transform.
//
// # Tables
//
// Cells carry two sets of indices. Row and Col are contiguous, assigned as
// surviving cells are appended. GridRow and GridCol are the position between
// detected boundaries, so a caller that needs true column alignment when an
// interior cell was dropped can use those instead:
//
//	for _, row := range table.Rows {
//	    for _, cell := range row.Cells {
//	        fmt.Println(cell.Row, cell.Col, cell.GridCol, cell.Region)
//	    }
//	}
package model
