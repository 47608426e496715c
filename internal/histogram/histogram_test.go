package histogram_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/heatlayers/internal/histogram"
)

func TestBuild_Empty(t *testing.T) {
	assert.Equal(t, []histogram.Bin{}, histogram.Build(nil, 4))
	assert.Equal(t, []histogram.Bin{}, histogram.Build([]float64{}, 4))
}

func TestBuild_Degenerate(t *testing.T) {
	bins := histogram.Build([]float64{5, 5, 5}, 4)

	require.Len(t, bins, 1)
	assert.Equal(t, histogram.Bin{Lower: 5, Upper: 5, Count: 3}, bins[0])
}

func TestBuild_ClampExcludesZero(t *testing.T) {
	bins := histogram.Build([]float64{0, 1, 10, 100}, 4)

	assert.Equal(t, 3, histogram.Total(bins))
	require.Len(t, bins, 19)
	assert.Equal(t, histogram.Bin{Lower: 1, Upper: 2, Count: 1}, bins[0])
	assert.Equal(t, histogram.Bin{Lower: 10, Upper: 20, Count: 1}, bins[9])
	assert.Equal(t, histogram.Bin{Lower: 90, Upper: 100, Count: 0}, bins[17])
	assert.Equal(t, histogram.Bin{Lower: 100, Upper: 100, Count: 1}, bins[18])
}

func TestBuild_WideDomainUsesDecades(t *testing.T) {
	bins := histogram.Build([]float64{1, 50, 500, 5000, 50000, 1e6}, 4)

	assert.Equal(t, []histogram.Bin{
		{Lower: 1, Upper: 100, Count: 2},
		{Lower: 100, Upper: 10000, Count: 2},
		{Lower: 10000, Upper: 1e6, Count: 1},
		{Lower: 1e6, Upper: 1e6, Count: 1},
	}, bins)
}

func TestBuild_ReviewCounts(t *testing.T) {
	bins := histogram.Build([]float64{3, 7, 12, 45, 45, 230}, histogram.DefaultBins)

	require.NotEmpty(t, bins)
	assert.InDelta(t, 3.0, bins[0].Lower, 0)
	assert.InDelta(t, 230.0, bins[len(bins)-1].Upper, 0)
	assert.Equal(t, 6, histogram.Total(bins))
}

func TestBuild_AllBelowOne(t *testing.T) {
	bins := histogram.Build([]float64{0, 0.25, 0.5}, 4)

	require.Len(t, bins, 1)
	assert.Equal(t, histogram.Bin{Lower: 1, Upper: 0.5, Count: 0}, bins[0])
}

func TestBuild_NonPositiveBinCountUsesDefault(t *testing.T) {
	values := []float64{2, 20, 200}
	assert.Equal(t, histogram.Build(values, histogram.DefaultBins), histogram.Build(values, 0))
	assert.Equal(t, histogram.Build(values, histogram.DefaultBins), histogram.Build(values, -3))
}

func TestBuild_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		n := 1 + rng.Intn(50)
		values := make([]float64, n)
		allAtLeastOne := true
		for i := range values {
			values[i] = rng.Float64() * 1000
			if rng.Intn(10) == 0 {
				values[i] = -rng.Float64() * 5
			}
			if values[i] < 1 {
				allAtLeastOne = false
			}
		}

		bins := histogram.Build(values, 1+rng.Intn(6))
		require.NotEmpty(t, bins)

		total := histogram.Total(bins)
		assert.LessOrEqual(t, total, n)
		if allAtLeastOne {
			assert.Equal(t, n, total, "values %v", values)
		}

		for i := 1; i < len(bins); i++ {
			assert.Less(t, bins[i-1].Lower, bins[i].Lower)
			assert.LessOrEqual(t, bins[i-1].Upper, bins[i].Lower)
		}
		for _, b := range bins {
			assert.GreaterOrEqual(t, b.Count, 0)
		}
	}
}
