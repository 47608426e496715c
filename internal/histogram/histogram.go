// Package histogram buckets values on a logarithmic scale.
package histogram

import (
	"math"
	"sort"
)

// DefaultBins is the number of buckets asked from the tick generator.
const DefaultBins = 4

// Bin is one bucket of a histogram.
type Bin struct {
	Lower float64 `json:"x0" yaml:"x0"`
	Upper float64 `json:"x1" yaml:"x1"`
	Count int     `json:"count" yaml:"count"`
}

// Build buckets values using log-scale ticks as thresholds.
//
// The domain is [max(1, min(values)), max(values)]; the low end is clamped
// because the axis is logarithmic. Values outside the domain (zero and
// negatives in particular) are not counted in any bin. The last bin is
// closed on the right so the maximum is always counted.
// binCount only suggests how many buckets to produce.
func Build(values []float64, binCount int) []Bin {
	if len(values) == 0 {
		return []Bin{}
	}
	if binCount <= 0 {
		binCount = DefaultBins
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	x0, x1 := math.Max(1, lo), hi
	thresholds := inside(LogTicks(x0, x1, binCount), x0, x1)

	bins := make([]Bin, len(thresholds)+1)
	for i := range bins {
		bins[i].Lower = x0
		if i > 0 {
			bins[i].Lower = thresholds[i-1]
		}
		bins[i].Upper = x1
		if i < len(thresholds) {
			bins[i].Upper = thresholds[i]
		}
	}

	for _, v := range values {
		if x0 <= v && v <= x1 {
			bins[bisectRight(thresholds, v)].Count++
		}
	}

	return bins
}

// Total sums the counts of all bins.
func Total(bins []Bin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}

	return total
}

// inside drops leading thresholds at or below x0 and trailing ones above x1.
func inside(ticks []float64, x0, x1 float64) []float64 {
	a, b := 0, len(ticks)
	for a < b && ticks[a] <= x0 {
		a++
	}
	for b > a && ticks[b-1] > x1 {
		b--
	}

	return ticks[a:b]
}

func bisectRight(sorted []float64, x float64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
}
