package quadtree

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"
)

// Tree is an immutable region quadtree. The regions of its leaves tile the
// indexed raster exactly, with no gaps or overlaps. All methods are read-only
// and safe for concurrent use without synchronization.
type Tree struct {
	id            string
	root          *Node
	rasterWidth   int
	rasterHeight  int
	opts          Options
	buildDuration time.Duration

	depth     int
	nodeCount int
	leafCount int
}

func newTree(root *Node, rasterWidth, rasterHeight int, opts Options, buildDuration time.Duration) *Tree {
	t := &Tree{
		id:            uuid.NewString(),
		root:          root,
		rasterWidth:   rasterWidth,
		rasterHeight:  rasterHeight,
		opts:          opts,
		buildDuration: buildDuration,
	}

	stack := []*Node{root}
	for len(stack) != 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t.nodeCount++
		if n.IsLeaf() {
			t.leafCount++
			if n.Depth > t.depth {
				t.depth = n.Depth
			}
			continue
		}
		for _, child := range n.Children() {
			stack = append(stack, child)
		}
	}

	return t
}

// ID returns the identifier assigned to the tree at build time, used to
// correlate logs and metrics.
func (t *Tree) ID() string {
	return t.id
}

// Root returns the root node, which covers the full raster extent.
func (t *Tree) Root() *Node {
	return t.root
}

// Depth returns the maximum depth among leaves.
func (t *Tree) Depth() int {
	return t.depth
}

// NodeCount returns the total number of nodes.
func (t *Tree) NodeCount() int {
	return t.nodeCount
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	return t.leafCount
}

// BuildDuration returns how long the build took.
func (t *Tree) BuildDuration() time.Duration {
	return t.buildDuration
}

// Options returns the options the tree was built with.
func (t *Tree) Options() Options {
	return t.opts
}

// Find returns the leaf whose region contains the pixel at (row, col). It
// descends from the root using the same split geometry as construction, so it
// runs in O(depth). Points outside the raster fail with an ErrTypeOutOfBounds
// error.
func (t *Tree) Find(row, col int) (*Node, error) {
	if !t.root.Region.Contains(row, col) {
		return nil, errors.New("point is outside the indexed raster").
			WithType(ErrTypeOutOfBounds).
			WithTag("row", row).
			WithTag("col", col).
			WithTag("raster", t.root.Region.String())
	}

	n := t.root
	for !n.IsLeaf() {
		n = n.Child(n.Region.Quadrant(row, col))
	}
	return n, nil
}

// Leaves returns an iterator over the tree's leaves in depth-first quadrant
// order: top-left, top-right, bottom-left, bottom-right. Each call returns a
// fresh iterator.
func (t *Tree) Leaves() *LeafIterator {
	return &LeafIterator{stack: []*Node{t.root}}
}

// LeafIterator enumerates leaves lazily over an explicit stack.
type LeafIterator struct {
	stack []*Node
}

// Next returns the next leaf, or nil once the traversal is exhausted.
func (it *LeafIterator) Next() *Node {
	for len(it.stack) != 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if n.IsLeaf() {
			return n
		}

		// Children are pushed in reverse so the top-left quadrant pops
		// first.
		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			it.stack = append(it.stack, children[i])
		}
	}
	return nil
}

// Stats is a summary of a built tree, shaped for JSON output.
type Stats struct {
	TreeID        string  `json:"tree_id"`
	RasterWidth   int     `json:"raster_width"`
	RasterHeight  int     `json:"raster_height"`
	NodeCount     int     `json:"node_count"`
	LeafCount     int     `json:"leaf_count"`
	Depth         int     `json:"depth"`
	MinSize       int     `json:"min_size"`
	MaxDepth      int     `json:"max_depth"`
	Threshold     float64 `json:"threshold"`
	Dispersion    string  `json:"dispersion"`
	Aggregation   string  `json:"aggregation"`
	BuildDuration string  `json:"build_duration"`
}

// Stats returns the tree's build summary.
func (t *Tree) Stats() Stats {
	return Stats{
		TreeID:        t.id,
		RasterWidth:   t.rasterWidth,
		RasterHeight:  t.rasterHeight,
		NodeCount:     t.nodeCount,
		LeafCount:     t.leafCount,
		Depth:         t.depth,
		MinSize:       t.opts.MinSize,
		MaxDepth:      t.opts.MaxDepth,
		Threshold:     t.opts.Threshold,
		Dispersion:    string(t.opts.Dispersion),
		Aggregation:   string(t.opts.Aggregation),
		BuildDuration: t.buildDuration.String(),
	}
}
