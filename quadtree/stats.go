package quadtree

import (
	"math"
	"sort"
	"strings"
)

// Dispersion selects the statistic measuring value spread within a region.
type Dispersion string

const (
	// DispersionStdDev is the population standard deviation.
	DispersionStdDev Dispersion = "STDDEV"

	// DispersionRange is max minus min.
	DispersionRange Dispersion = "RANGE"
)

// ParseDispersion normalizes a dispersion statistic name. It returns an empty
// value for unknown names.
func ParseDispersion(value string) Dispersion {
	switch Dispersion(strings.ToUpper(strings.TrimSpace(value))) {
	case DispersionStdDev:
		return DispersionStdDev
	case DispersionRange:
		return DispersionRange
	}
	return ""
}

// Aggregation selects the function that summarizes a leaf's pixels.
type Aggregation string

const (
	AggregationMean     Aggregation = "MEAN"
	AggregationMedian   Aggregation = "MEDIAN"
	AggregationMajority Aggregation = "MAJORITY"
)

// ParseAggregation normalizes an aggregation name. It returns an empty value
// for unknown names.
func ParseAggregation(value string) Aggregation {
	switch Aggregation(strings.ToUpper(strings.TrimSpace(value))) {
	case AggregationMean:
		return AggregationMean
	case AggregationMedian:
		return AggregationMedian
	case AggregationMajority:
		return AggregationMajority
	}
	return ""
}

// regionStats holds the per-region statistics shared by the split predicate
// and the leaf aggregations. All of them ignore nodata and NaN samples.
type regionStats struct {
	valid  []float64
	mean   float64
	stdDev float64
	min    float64
	max    float64
}

func computeRegionStats(values []float64, noData float64, hasNoData bool) regionStats {
	s := regionStats{
		valid: make([]float64, 0, len(values)),
		min:   math.Inf(1),
		max:   math.Inf(-1),
	}

	var sum float64
	for _, v := range values {
		if math.IsNaN(v) || (hasNoData && v == noData) {
			continue
		}
		s.valid = append(s.valid, v)
		sum += v
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}

	if len(s.valid) == 0 {
		s.min, s.max = 0, 0
		return s
	}

	s.mean = sum / float64(len(s.valid))

	var sqDev float64
	for _, v := range s.valid {
		d := v - s.mean
		sqDev += d * d
	}
	s.stdDev = math.Sqrt(sqDev / float64(len(s.valid)))

	return s
}

// dispersion returns the selected spread statistic. A region with no valid
// pixels, or a single one, has no spread.
func (s regionStats) dispersion(d Dispersion) float64 {
	if len(s.valid) < 2 {
		return 0
	}

	switch d {
	case DispersionRange:
		return s.max - s.min
	default:
		return s.stdDev
	}
}

// aggregate summarizes the region's valid pixels. NaN when none are valid.
func (s regionStats) aggregate(a Aggregation) float64 {
	if len(s.valid) == 0 {
		return math.NaN()
	}

	switch a {
	case AggregationMedian:
		return median(s.valid)
	case AggregationMajority:
		return majority(s.valid)
	default:
		return s.mean
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// majority returns the most frequent value. Ties resolve to the smallest
// value so rebuilding an identical raster yields identical summaries.
func majority(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	best := math.Inf(1)
	bestCount := 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best = v
			bestCount = c
		}
	}
	return best
}
