// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/woozymasta/heatlayers/internal/geo"
	"github.com/woozymasta/heatlayers/internal/histogram"

	"gopkg.in/yaml.v3"
)

// Defaults used when the configuration leaves a field empty.
const (
	DefaultTiles       = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://osm.org/copyright">OpenStreetMap</a> contributors`
	DefaultZoom        = 12
	DefaultTimeout     = 15 * time.Second
)

// Config represents the root configuration file structure.
type Config struct {
	Bounds        geo.BoundingBox `yaml:"bounds" json:"bounds"`
	Heat          Heat            `yaml:"heat" json:"heat"`
	Tiles         string          `yaml:"tiles,omitempty" json:"tiles"`
	Attribution   string          `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	DefaultLayer  string          `yaml:"default_layer,omitempty" json:"default_layer,omitempty"`
	Datasets      []Dataset       `yaml:"datasets" json:"-"`
	Center        []float64       `yaml:"center,omitempty" json:"center"` // [Lat, Lng]
	Zoom          int             `yaml:"zoom,omitempty" json:"zoom"`
	HistogramBins int             `yaml:"histogram_bins,omitempty" json:"-"`
	FetchTimeout  time.Duration   `yaml:"fetch_timeout,omitempty" json:"-"`
}

// Dataset is a single point document rendered as a named layer.
type Dataset struct {
	Name      string `yaml:"name" json:"name"`
	Source    string `yaml:"source" json:"-"` // path or http(s) URL
	Histogram bool   `yaml:"histogram,omitempty" json:"histogram,omitempty"`
}

// Heat holds the rendering options passed along with every layer.
// Zero values are left to the renderer's defaults.
type Heat struct {
	Radius     float64 `yaml:"radius,omitempty" json:"radius,omitempty"`
	Blur       float64 `yaml:"blur,omitempty" json:"blur,omitempty"`
	MaxZoom    int     `yaml:"max_zoom,omitempty" json:"maxZoom,omitempty"`
	MinOpacity float64 `yaml:"min_opacity,omitempty" json:"minOpacity,omitempty"`
	Max        float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Bounds.IsZero() {
		c.Bounds = geo.SanFrancisco
	}
	if c.Tiles == "" {
		c.Tiles = DefaultTiles
	}
	if c.Attribution == "" {
		c.Attribution = DefaultAttribution
	}
	if len(c.Center) != 2 {
		lat, lng := c.Bounds.Center()
		c.Center = []float64{lat, lng}
	}
	if c.Zoom <= 0 {
		c.Zoom = DefaultZoom
	}
	if c.HistogramBins <= 0 {
		c.HistogramBins = histogram.DefaultBins
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultTimeout
	}
	c.Heat.MinOpacity = min(max(c.Heat.MinOpacity, 0), 1)
}

// Validate checks that every dataset has a source and a name whose slug
// is non-empty and unique, and that the default layer, if set, names one of them.
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return errors.New("no datasets configured")
	}

	seen := make(map[string]bool, len(c.Datasets))
	slugs := make(map[string]string, len(c.Datasets))
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return fmt.Errorf("dataset %d: name is empty", i)
		}
		if ds.Source == "" {
			return fmt.Errorf("dataset %q: source is empty", ds.Name)
		}
		if seen[ds.Name] {
			return fmt.Errorf("dataset %q: duplicate name", ds.Name)
		}
		seen[ds.Name] = true

		slug := Slug(ds.Name)
		if slug == "" {
			return fmt.Errorf("dataset %q: name has no letters or digits", ds.Name)
		}
		if other, ok := slugs[slug]; ok {
			return fmt.Errorf("dataset %q: file name %q already used by %q", ds.Name, slug, other)
		}
		slugs[slug] = ds.Name
	}

	if c.DefaultLayer != "" && !seen[c.DefaultLayer] {
		return fmt.Errorf("default_layer %q is not a configured dataset", c.DefaultLayer)
	}

	return nil
}

// DefaultName returns the layer that should be visible first:
// the configured default or the first declared dataset.
func (c *Config) DefaultName() string {
	if c.DefaultLayer != "" {
		return c.DefaultLayer
	}
	if len(c.Datasets) > 0 {
		return c.Datasets[0].Name
	}

	return ""
}

// Names returns dataset names in declaration order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Datasets))
	for i, ds := range c.Datasets {
		names[i] = ds.Name
	}

	return names
}

// Limit returns the datasets whose names appear in names, in configuration
// order. Unknown names are returned separately. An empty names keeps all.
func (c *Config) Limit(names []string) ([]Dataset, []string) {
	if len(names) == 0 {
		return c.Datasets, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []Dataset
	for _, ds := range c.Datasets {
		if wanted[ds.Name] {
			selected = append(selected, ds)
			delete(wanted, ds.Name)
		}
	}

	var unknown []string
	for _, n := range names {
		if wanted[n] {
			unknown = append(unknown, n)
			delete(wanted, n)
		}
	}

	return selected, unknown
}

// Slug turns a dataset name into a file name friendly token.
func Slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
