package quadtree

import "fmt"

// Node is a quadrant of the indexed raster. A node either has exactly four
// children covering its region with no gaps or overlaps, or it is a leaf
// carrying the aggregated summary value of its pixels.
//
// Nodes are exclusively owned by their parent and are immutable once the tree
// is built.
type Node struct {
	Region Region
	Depth  int

	// Dispersion is the dispersion statistic computed over the node's
	// pixels, nodata excluded. It is 0 for regions with fewer than two
	// valid pixels.
	Dispersion float64

	// Value is the aggregated summary of the node's pixels. It is only
	// meaningful on leaves; interior nodes carry NaN. A leaf whose region
	// holds no valid pixel also carries NaN.
	Value float64

	children [4]*Node
	leaf     bool
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Children returns the node's children in quadrant order. All entries are nil
// when the node is a leaf.
func (n *Node) Children() [4]*Node {
	return n.children
}

// Child returns the child occupying the given quadrant, nil for leaves.
func (n *Node) Child(q Quadrant) *Node {
	return n.children[q]
}

func (n *Node) String() string {
	if n.leaf {
		return fmt.Sprintf("leaf %s depth=%d value=%g", n.Region, n.Depth, n.Value)
	}
	return fmt.Sprintf("node %s depth=%d dispersion=%g", n.Region, n.Depth, n.Dispersion)
}
