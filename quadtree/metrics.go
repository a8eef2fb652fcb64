package quadtree

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel     = "error_type"
	dispersionLabel  = "dispersion"
	aggregationLabel = "aggregation"
)

var (
	builds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadtree_builds",
		Help: "The number of quadtree builds that completed.",
	}, []string{
		dispersionLabel,
		aggregationLabel,
	})

	buildErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadtree_build_errors",
		Help: "The errors that occured while building a quadtree.",
	}, []string{
		errTypeLabel,
	})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quadtree_build_duration_seconds",
		Help:    "The time spent building a quadtree.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	treeLeaves = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quadtree_leaves",
		Help:    "The number of leaves per built quadtree.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	treeDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quadtree_depth",
		Help:    "The maximum leaf depth per built quadtree.",
		Buckets: prometheus.LinearBuckets(0, 2, 16),
	})
)

func instrumentBuild(t *Tree) {
	builds.With(prometheus.Labels{
		dispersionLabel:  string(t.opts.Dispersion),
		aggregationLabel: string(t.opts.Aggregation),
	}).Inc()
	buildDuration.Observe(t.buildDuration.Seconds())
	treeLeaves.Observe(float64(t.leafCount))
	treeDepth.Observe(float64(t.depth))
}

func instrumentBuildError(err error) {
	buildErrors.
		With(prometheus.Labels{
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}
