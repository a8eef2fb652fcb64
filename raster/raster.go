package raster

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Reader provides read-only access to a 2D raster of numeric samples.
//
// Row 0 is the top of the raster and column 0 its left edge, following array
// indexing order rather than geographic axis order. Implementations must be
// safe for concurrent reads.
type Reader interface {
	// Width returns the number of columns.
	Width() int

	// Height returns the number of rows.
	Height() int

	// Read returns the samples of the window starting at (row, col) and
	// spanning rows x cols pixels, flattened in row-major order. It fails
	// when the window exceeds the raster bounds.
	Read(row, col, rows, cols int) ([]float64, error)

	// NoData returns the sentinel value excluded from statistical
	// computation, and whether such a sentinel is defined.
	NoData() (float64, bool)
}

// Grid is an in-memory Reader backed by a row-major sample slice.
type Grid struct {
	width     int
	height    int
	values    []float64
	noData    float64
	hasNoData bool
}

// GridOption configures a Grid created with NewGrid.
type GridOption func(*Grid)

// WithNoData sets the nodata sentinel of the grid.
func WithNoData(v float64) GridOption {
	return func(g *Grid) {
		g.noData = v
		g.hasNoData = true
	}
}

// NewGrid creates an in-memory raster from row-major samples. The length of
// values must be exactly width*height.
func NewGrid(width, height int, values []float64, opts ...GridOption) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("raster dimensions must be positive").
			WithTag("width", width).
			WithTag("height", height)
	}

	if len(values) != width*height {
		return nil, errors.New("sample count does not match raster dimensions").
			WithTag("width", width).
			WithTag("height", height).
			WithTag("sample_count", len(values))
	}

	g := &Grid{
		width:  width,
		height: height,
		values: values,
	}

	for _, o := range opts {
		o(g)
	}
	return g, nil
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

func (g *Grid) NoData() (float64, bool) {
	return g.noData, g.hasNoData
}

func (g *Grid) Read(row, col, rows, cols int) ([]float64, error) {
	if row < 0 || col < 0 || rows <= 0 || cols <= 0 ||
		row+rows > g.height || col+cols > g.width {
		return nil, errors.New("read window is outside the raster").
			WithTag("row", row).
			WithTag("col", col).
			WithTag("rows", rows).
			WithTag("cols", cols).
			WithTag("width", g.width).
			WithTag("height", g.height)
	}

	out := make([]float64, 0, rows*cols)
	for i := row; i < row+rows; i++ {
		offset := i * g.width
		out = append(out, g.values[offset+col:offset+col+cols]...)
	}
	return out, nil
}

// At returns the sample at (row, col).
func (g *Grid) At(row, col int) (float64, error) {
	v, err := g.Read(row, col, 1, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}
