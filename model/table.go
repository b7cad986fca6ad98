package model

import (
	"fmt"
	"image"
)

// Axis identifies the orientation of a grid line
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// String returns the axis name
func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Boundary is one detected grid line in the rectified table's pixel space.
//
// For a horizontal line Position is its top y, Thickness its height, Offset
// its left x and Extent its width. For a vertical line Position is its left
// x, Thickness its width, Offset its top y and Extent its height.
type Boundary struct {
	Axis      Axis
	Position  int
	Extent    int
	Thickness int
	Offset    int
}

// BoundaryFromRect converts a line's bounding box into a Boundary
func BoundaryFromRect(axis Axis, r image.Rectangle) Boundary {
	if axis == Vertical {
		return Boundary{Axis: axis, Position: r.Min.X, Thickness: r.Dx(), Offset: r.Min.Y, Extent: r.Dy()}
	}
	return Boundary{Axis: axis, Position: r.Min.Y, Thickness: r.Dy(), Offset: r.Min.X, Extent: r.Dx()}
}

// End returns the first coordinate past the line (Position + Thickness)
func (b Boundary) End() int {
	return b.Position + b.Thickness
}

// Bounds returns the line's bounding box
func (b Boundary) Bounds() image.Rectangle {
	if b.Axis == Vertical {
		return image.Rect(b.Position, b.Offset, b.End(), b.Offset+b.Extent)
	}
	return image.Rect(b.Offset, b.Position, b.Offset+b.Extent, b.End())
}

// Cell is one segmented table cell
type Cell struct {
	// Row and Col are contiguous 0-based indices among surviving rows and
	// cells.
	Row int
	Col int

	// GridRow and GridCol are the cell's position between filtered
	// boundaries, which may skip values when cells or rows were dropped.
	GridRow int
	GridCol int

	// Bounds is the candidate rectangle cropped from the table image.
	Bounds image.Rectangle

	// Region is the refined content rectangle, in table coordinates.
	Region image.Rectangle

	// Image is the deskewed, border-trimmed, re-binarized cell content.
	Image *image.Gray
}

// Row is an ordered sequence of cells sharing a row index
type Row struct {
	Index int
	Cells []Cell
}

// Len returns the number of cells in the row
func (r Row) Len() int {
	return len(r.Cells)
}

// Table is the segmentation result for one page
type Table struct {
	Rows []Row

	// Image is the rectified table region the cells were cut from. It is nil
	// when no table region was found.
	Image *image.Gray

	// Horizontal and Vertical hold the filtered grid boundaries.
	Horizontal []Boundary
	Vertical   []Boundary
}

// NewTable creates an empty table for a rectified table image
func NewTable(img *image.Gray) *Table {
	return &Table{Image: img}
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColCount returns the number of cells in the widest row
func (t *Table) ColCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, row := range t.Rows {
		n = max(n, len(row.Cells))
	}
	return n
}

// Cell returns the cell at the given contiguous row and column (0-indexed)
func (t *Table) Cell(row, col int) *Cell {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row].Cells) {
		return nil
	}
	return &t.Rows[row].Cells[col]
}

// Cells returns every cell in row-major order
func (t *Table) Cells() []Cell {
	if t == nil {
		return nil
	}
	var cells []Cell
	for _, row := range t.Rows {
		cells = append(cells, row.Cells...)
	}
	return cells
}

// AppendRow adds a row, assigning its contiguous index and the contiguous
// indices of its cells. Rows without cells are ignored.
func (t *Table) AppendRow(cells []Cell) {
	if len(cells) == 0 {
		return
	}
	idx := len(t.Rows)
	row := Row{Index: idx, Cells: make([]Cell, len(cells))}
	for j, c := range cells {
		c.Row = idx
		c.Col = j
		row.Cells[j] = c
	}
	t.Rows = append(t.Rows, row)
}

// GridRects returns the bounding boxes of every boundary, horizontals first
func (t *Table) GridRects() []image.Rectangle {
	if t == nil {
		return nil
	}
	rects := make([]image.Rectangle, 0, len(t.Horizontal)+len(t.Vertical))
	for _, b := range t.Horizontal {
		rects = append(rects, b.Bounds())
	}
	for _, b := range t.Vertical {
		rects = append(rects, b.Bounds())
	}
	return rects
}
