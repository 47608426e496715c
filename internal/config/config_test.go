package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/geo"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
datasets:
  - name: Business price point
    source: data/yelp_price_points.json
  - name: Business review count
    source: data/yelp_review_count_points.json
    histogram: true
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, geo.SanFrancisco, cfg.Bounds)
	assert.Equal(t, config.DefaultTiles, cfg.Tiles)
	assert.Equal(t, config.DefaultAttribution, cfg.Attribution)
	assert.Equal(t, config.DefaultZoom, cfg.Zoom)
	assert.Equal(t, 4, cfg.HistogramBins)
	assert.Equal(t, config.DefaultTimeout, cfg.FetchTimeout)
	require.Len(t, cfg.Center, 2)
	assert.InDelta(t, 37.762, cfg.Center[0], 1e-9)
	assert.Equal(t, "Business price point", cfg.DefaultName())
	assert.Equal(t, []string{"Business price point", "Business review count"}, cfg.Names())
	assert.True(t, cfg.Datasets[1].Histogram)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
bounds:
  min_lat: 1
  max_lat: 2
  min_lng: 3
  max_lng: 4
center: [1.5, 3.5]
zoom: 9
heat:
  radius: 30
  max_zoom: 17
histogram_bins: 6
fetch_timeout: 3s
default_layer: b
datasets:
  - {name: a, source: a.json}
  - {name: b, source: https://example.com/b.json}
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, geo.BoundingBox{MinLat: 1, MaxLat: 2, MinLng: 3, MaxLng: 4}, cfg.Bounds)
	assert.Equal(t, []float64{1.5, 3.5}, cfg.Center)
	assert.Equal(t, 9, cfg.Zoom)
	assert.InDelta(t, 30.0, cfg.Heat.Radius, 0)
	assert.Equal(t, 17, cfg.Heat.MaxZoom)
	assert.Equal(t, 6, cfg.HistogramBins)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "b", cfg.DefaultName())
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"no datasets":      `zoom: 3`,
		"empty name":       "datasets:\n  - {source: a.json}",
		"empty source":     "datasets:\n  - {name: a}",
		"duplicate name":   "datasets:\n  - {name: a, source: a.json}\n  - {name: a, source: b.json}",
		"unknown default":  "default_layer: c\ndatasets:\n  - {name: a, source: a.json}",
		"bad yaml":         "datasets: [",
		"colliding slugs":  "datasets:\n  - {name: Price point, source: a.json}\n  - {name: price-point, source: b.json}",
		"punctuation name": "datasets:\n  - {name: '!!!', source: a.json}",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, body))

			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLimit(t *testing.T) {
	cfg := &config.Config{Datasets: []config.Dataset{
		{Name: "a", Source: "a.json"},
		{Name: "b", Source: "b.json"},
		{Name: "c", Source: "c.json"},
	}}

	all, unknown := cfg.Limit(nil)
	assert.Len(t, all, 3)
	assert.Empty(t, unknown)

	selected, unknown := cfg.Limit([]string{"c", "x", "a", "c"})
	assert.Equal(t, []config.Dataset{{Name: "a", Source: "a.json"}, {Name: "c", Source: "c.json"}}, selected)
	assert.Equal(t, []string{"x"}, unknown)
}

func TestNormalize_ClampsMinOpacity(t *testing.T) {
	for in, want := range map[float64]float64{-0.5: 0, 0.4: 0.4, 3: 1} {
		cfg := &config.Config{Heat: config.Heat{MinOpacity: in}}
		cfg.Normalize()

		assert.InDelta(t, want, cfg.Heat.MinOpacity, 0, "min_opacity %v", in)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Business price point":   "business-price-point",
		"business-price point":   "business-price-point",
		"Business review count!": "business-review-count",
		"  ratings / 2024 ":      "ratings-2024",
		"Ünïcode":                "ünïcode",
		"!!!":                    "",
		"":                       "",
	}

	for in, want := range tests {
		assert.Equal(t, want, config.Slug(in), in)
	}
}
