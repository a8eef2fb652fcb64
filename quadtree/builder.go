package quadtree

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/ocsmit/rasterquad/raster"
)

// Options configure a quadtree build.
type Options struct {
	// MinSize is the hard size floor: a region whose width or height is at
	// most MinSize is a leaf no matter how heterogeneous it is. At least 1.
	MinSize int

	// MaxDepth is the maximum leaf depth, with 0 the root. Non-negative.
	MaxDepth int

	// Threshold is the homogeneity tolerance: a region whose dispersion is
	// at most Threshold becomes a leaf. Non-negative.
	Threshold float64

	// Dispersion selects the spread statistic. Defaults to
	// DispersionStdDev.
	Dispersion Dispersion

	// Aggregation selects the leaf summary function. Defaults to
	// AggregationMean.
	Aggregation Aggregation

	// Parallelism bounds the number of subtrees built concurrently.
	// Values below 2 select the sequential build.
	Parallelism int

	// StrictNoData makes a region holding only nodata pixels fail the
	// build instead of becoming a NaN-valued leaf.
	StrictNoData bool
}

func (o Options) withDefaults() Options {
	if o.Dispersion == "" {
		o.Dispersion = DispersionStdDev
	}
	if o.Aggregation == "" {
		o.Aggregation = AggregationMean
	}
	return o
}

func (o Options) validate(r raster.Reader) error {
	if r == nil {
		return errors.New("raster is nil").
			WithType(ErrTypeInvalidParameter)
	}

	if w, h := r.Width(), r.Height(); w <= 0 || h <= 0 {
		return errors.New("raster has zero extent").
			WithType(ErrTypeInvalidParameter).
			WithTag("width", w).
			WithTag("height", h)
	}

	if o.MinSize < 1 {
		return errors.New("min size is below 1").
			WithType(ErrTypeInvalidParameter).
			WithTag("min_size", o.MinSize)
	}

	if o.MaxDepth < 0 {
		return errors.New("max depth is negative").
			WithType(ErrTypeInvalidParameter).
			WithTag("max_depth", o.MaxDepth)
	}

	if o.Threshold < 0 || math.IsNaN(o.Threshold) {
		return errors.New("threshold is negative or NaN").
			WithType(ErrTypeInvalidParameter).
			WithTag("threshold", o.Threshold)
	}

	if ParseDispersion(string(o.Dispersion)) == "" {
		return errors.New("unknown dispersion statistic").
			WithType(ErrTypeInvalidParameter).
			WithTag("dispersion", o.Dispersion)
	}

	if ParseAggregation(string(o.Aggregation)) == "" {
		return errors.New("unknown aggregation").
			WithType(ErrTypeInvalidParameter).
			WithTag("aggregation", o.Aggregation)
	}

	return nil
}

// Build constructs a region quadtree over the raster by recursive subdivision.
//
// A node stays a leaf when its region's width or height is at most
// Options.MinSize, when it sits at Options.MaxDepth, or when its dispersion is
// within Options.Threshold. Otherwise its region is split into four quadrants
// and each is built at depth+1, concurrently when Options.Parallelism allows.
// Children are stored in fixed quadrant order regardless of completion order.
//
// The context is checked at every node; cancelling it aborts the build. Any
// raster read failure aborts the build with an ErrTypeRasterAccess error. No
// partial tree is ever returned.
func Build(ctx context.Context, r raster.Reader, opts Options) (*Tree, error) {
	opts = opts.withDefaults()

	if err := opts.validate(r); err != nil {
		instrumentBuildError(err)
		return nil, err
	}

	noData, hasNoData := r.NoData()
	b := &builder{
		raster:    r,
		opts:      opts,
		noData:    noData,
		hasNoData: hasNoData,
	}
	if opts.Parallelism > 1 {
		b.sem = make(chan struct{}, opts.Parallelism-1)
	}

	start := time.Now()
	root, err := b.buildNode(ctx, Region{Height: r.Height(), Width: r.Width()}, 0)
	if err != nil {
		instrumentBuildError(err)
		return nil, err
	}

	tree := newTree(root, r.Width(), r.Height(), opts, time.Since(start))
	instrumentBuild(tree)

	logs.WithTag("tree_id", tree.ID()).
		WithTag("raster", root.Region.String()).
		WithTag("leaves", tree.LeafCount()).
		WithTag("depth", tree.Depth()).
		WithTag("duration_ms", tree.BuildDuration().Milliseconds()).
		Debug("quadtree built")

	return tree, nil
}

type builder struct {
	raster    raster.Reader
	opts      Options
	noData    float64
	hasNoData bool

	// sem bounds the number of extra goroutines building subtrees. nil
	// selects the purely sequential build.
	sem chan struct{}
}

func (b *builder) buildNode(ctx context.Context, region Region, depth int) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.New("quadtree build canceled").
			WithTag("region", region.String()).
			Wrap(err)
	}

	values, err := b.raster.Read(region.Row, region.Col, region.Height, region.Width)
	if err != nil {
		return nil, errors.New("reading raster region failed").
			WithType(ErrTypeRasterAccess).
			WithTag("region", region.String()).
			WithTag("depth", depth).
			Wrap(err)
	}

	stats := computeRegionStats(values, b.noData, b.hasNoData)
	if b.opts.StrictNoData && len(stats.valid) == 0 {
		return nil, errors.New("region holds only nodata pixels").
			WithType(ErrTypeRasterAccess).
			WithTag("region", region.String()).
			WithTag("depth", depth)
	}

	node := &Node{
		Region:     region,
		Depth:      depth,
		Dispersion: stats.dispersion(b.opts.Dispersion),
		Value:      math.NaN(),
	}

	if b.stop(region, depth, node.Dispersion) {
		node.leaf = true
		node.Value = stats.aggregate(b.opts.Aggregation)
		return node, nil
	}

	if err := b.buildChildren(ctx, node, depth); err != nil {
		return nil, err
	}
	return node, nil
}

// stop is the split predicate: true finalizes the node as a leaf. The size
// floor wins over everything, then the depth cap, then homogeneity.
func (b *builder) stop(region Region, depth int, dispersion float64) bool {
	if region.Width <= b.opts.MinSize || region.Height <= b.opts.MinSize {
		return true
	}
	if depth >= b.opts.MaxDepth {
		return true
	}
	return dispersion <= b.opts.Threshold
}

func (b *builder) buildChildren(ctx context.Context, node *Node, depth int) error {
	quadrants := node.Region.Split()

	if b.sem == nil {
		for i := range quadrants {
			child, err := b.buildNode(ctx, quadrants[i], depth+1)
			if err != nil {
				return err
			}
			node.children[i] = child
		}
		return nil
	}

	// Subtrees share no mutable state, so each child that gets a slot is
	// built in its own goroutine. Children land in their quadrant slot and
	// all goroutines are drained before any error is reported, so a failed
	// build leaks neither workers nor a partial tree.
	var wg sync.WaitGroup
	var errs [4]error

	for i := range quadrants {
		select {
		case b.sem <- struct{}{}:
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-b.sem }()
				node.children[i], errs[i] = b.buildNode(ctx, quadrants[i], depth+1)
			}(i)

		default:
			node.children[i], errs[i] = b.buildNode(ctx, quadrants[i], depth+1)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
