package quadtree

import "fmt"

// Quadrant indexes a child of a split node. The order is top-left, top-right,
// bottom-left, bottom-right and is the traversal order everywhere in this
// package.
type Quadrant int

const (
	QuadrantNW Quadrant = iota
	QuadrantNE
	QuadrantSW
	QuadrantSE
)

func (q Quadrant) String() string {
	switch q {
	case QuadrantNW:
		return "nw"
	case QuadrantNE:
		return "ne"
	case QuadrantSW:
		return "sw"
	case QuadrantSE:
		return "se"
	}
	return "invalid"
}

// Region is a rectangular window of raster pixels identified by its top-left
// corner and extent, in array order: Row grows downward, Col rightward.
type Region struct {
	Row    int
	Col    int
	Height int
	Width  int
}

func (r Region) Area() int {
	return r.Width * r.Height
}

// Contains reports whether the pixel at (row, col) is inside the region.
func (r Region) Contains(row, col int) bool {
	return row >= r.Row && row < r.Row+r.Height &&
		col >= r.Col && col < r.Col+r.Width
}

// Overlaps reports whether the two regions share at least one pixel.
func (r Region) Overlaps(other Region) bool {
	return r.Row < other.Row+other.Height && r.Row+r.Height > other.Row &&
		r.Col < other.Col+other.Width && r.Col+r.Width > other.Col
}

// Split partitions the region into its four quadrants. The split lines sit at
// floor(Height/2) and floor(Width/2), so for odd extents the top and left
// quadrants receive the smaller half. The quadrants tile the region exactly.
//
// Splitting a region with Width or Height < 2 would produce empty quadrants;
// the builder never does, its size floor forces such regions to be leaves.
func (r Region) Split() [4]Region {
	topRows := r.Height / 2
	leftCols := r.Width / 2

	return [4]Region{
		QuadrantNW: {Row: r.Row, Col: r.Col, Height: topRows, Width: leftCols},
		QuadrantNE: {Row: r.Row, Col: r.Col + leftCols, Height: topRows, Width: r.Width - leftCols},
		QuadrantSW: {Row: r.Row + topRows, Col: r.Col, Height: r.Height - topRows, Width: leftCols},
		QuadrantSE: {Row: r.Row + topRows, Col: r.Col + leftCols, Height: r.Height - topRows, Width: r.Width - leftCols},
	}
}

// Quadrant returns the index of the quadrant that contains (row, col), using
// the same split lines as Split. The point must be inside the region.
func (r Region) Quadrant(row, col int) Quadrant {
	var q Quadrant
	if col >= r.Col+r.Width/2 {
		q++
	}
	if row >= r.Row+r.Height/2 {
		q += 2
	}
	return q
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.Col, r.Row)
}
