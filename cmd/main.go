package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"runtime"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/ocsmit/rasterquad/featureflag"
	rqhttp "github.com/ocsmit/rasterquad/http"
	"github.com/ocsmit/rasterquad/quadtree"
	"github.com/ocsmit/rasterquad/raster"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

var (
	// The rasterquad version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "rasterquad_info",
		Help:        "Rasterquad information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Input        string   `cli:""        env:"RASTERQUAD_INPUT"         help:"The raster to index, in ESRI ASCII grid format."`
	MinSize      int      `cli:""        env:"RASTERQUAD_MIN_SIZE"      help:"The region size floor below which a node is never split."`
	MaxDepth     int      `cli:""        env:"RASTERQUAD_MAX_DEPTH"     help:"The maximum leaf depth."`
	Threshold    float64  `cli:""        env:"RASTERQUAD_THRESHOLD"     help:"The homogeneity tolerance on the dispersion statistic."`
	Dispersion   string   `cli:""        env:"RASTERQUAD_DISPERSION"    help:"Dispersion statistic (stddev|range)."`
	Aggregation  string   `cli:""        env:"RASTERQUAD_AGGREGATION"   help:"Leaf summary aggregation (mean|median|majority)."`
	Parallelism  int      `cli:""        env:"RASTERQUAD_PARALLELISM"   help:"The maximum number of subtrees built concurrently."`
	AdminAddr    string   `cli:""        env:"RASTERQUAD_ADMIN_ADDR"    help:"Admin listening address. The process stays up serving metrics when set."`
	LogLevel     string   `cli:""        env:"RASTERQUAD_LOG_LEVEL"     help:"Log level (debug|info|warning|error)."`
	LogIndent    bool     `cli:""        env:"RASTERQUAD_LOG_INDENT"    help:"Indent logs."`
	FeatureFlags []string `cli:",hidden" env:"RASTERQUAD_FEATURE_FLAGS" help:"Comma separated feature flags."`
	Version      bool     `cli:""        env:"-"                        help:"Show version."`
}

func main() {
	conf := config{
		MinSize:     1,
		MaxDepth:    10,
		Threshold:   0,
		Dispersion:  string(quadtree.DispersionStdDev),
		Aggregation: string(quadtree.AggregationMean),
		Parallelism: runtime.NumCPU(),
		LogLevel:    logs.InfoLevel.String(),
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Builds a region quadtree over a 2D raster.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	flags := featureflag.New(conf.FeatureFlags)

	grid, err := raster.OpenASCIIGrid(conf.Input)
	if err != nil {
		logs.Fatal(errors.New("loading raster failed").Wrap(err))
	}

	opts := quadtree.Options{
		MinSize:      conf.MinSize,
		MaxDepth:     conf.MaxDepth,
		Threshold:    conf.Threshold,
		Dispersion:   quadtree.ParseDispersion(conf.Dispersion),
		Aggregation:  quadtree.ParseAggregation(conf.Aggregation),
		Parallelism:  conf.Parallelism,
		StrictNoData: flags.IsSet(featureflag.FlagStrictNoData),
	}
	flags.IfSet(featureflag.FlagDisableParallelBuild, func() {
		opts.Parallelism = 1
	})

	logs.WithTag("version", version).
		WithTag("input", conf.Input).
		WithTag("raster_width", grid.Width()).
		WithTag("raster_height", grid.Height()).
		Info("building quadtree")

	tree, err := quadtree.Build(ctx, grid, opts)
	if err != nil {
		logs.Fatal(errors.New("building quadtree failed").Wrap(err))
	}

	stats := tree.Stats()
	logs.WithTag("tree_id", tree.ID()).
		WithTag("leaves", stats.LeafCount).
		WithTag("depth", stats.Depth).
		WithTag("duration", stats.BuildDuration).
		Info("quadtree built")

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		logs.Fatal(errors.New("encoding tree summary failed").Wrap(err))
	}
	fmt.Println(string(out))

	if conf.AdminAddr == "" {
		return
	}

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", rqhttp.HandleHealthCheck)
	admin.HandleFunc("/ready", rqhttp.HandleReadyCheck(func() bool { return true }))
	admin.HandleFunc("/version", rqhttp.HandleVersion(version))
	admin.HandleFunc("/tree", rqhttp.HandleTreeStats(tree))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	rqhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.AdminAddr, Handler: metrics.HTTPHandler(&admin,
			rqhttp.MetricsPathFormatter)},
	)
}

func validateConfig(conf config) error {
	if conf.Input == "" {
		return errors.New("no input raster specified")
	}
	if _, err := os.Stat(conf.Input); os.IsNotExist(err) {
		return errors.New("input raster not found").
			WithTag("file_name", conf.Input)
	}

	if quadtree.ParseDispersion(conf.Dispersion) == "" {
		return errors.New("dispersion should be either stddev or range").
			WithTag("dispersion", conf.Dispersion)
	}
	if quadtree.ParseAggregation(conf.Aggregation) == "" {
		return errors.New("aggregation should be one of mean, median or majority").
			WithTag("aggregation", conf.Aggregation)
	}

	return nil
}
