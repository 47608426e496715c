package layers

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/geo"
	"github.com/woozymasta/heatlayers/internal/histogram"
	"github.com/woozymasta/heatlayers/internal/metrics"
)

// Fetcher loads the points of a dataset source.
type Fetcher interface {
	Load(ctx context.Context, source string) ([]geo.Point, error)
}

// HistogramSink receives the histogram computed for a layer.
type HistogramSink func(layer string, bins []histogram.Bin)

// Coordinator loads every dataset concurrently, filters it to Bounds and
// registers it with Map. The default layer is chosen by declaration, never
// by which fetch finished first.
type Coordinator struct {
	Fetcher     Fetcher
	Map         MapService
	OnHistogram HistogramSink
	Metrics     *metrics.Metrics // optional
	Heat        config.Heat
	Bounds      geo.BoundingBox

	// DefaultLayer is made visible when it loads. Empty means the first dataset.
	DefaultLayer string
	Bins         int
}

// Result summarizes a Run.
type Result struct {
	Failed  map[string]error
	Default string
	Loaded  []string // declaration order
}

type outcome struct {
	err error
	ok  bool
}

// Run processes datasets and blocks until every one of them has either been
// registered or failed. A failure never stops the other datasets.
func (c *Coordinator) Run(ctx context.Context, datasets []config.Dataset) Result {
	designated := c.DefaultLayer
	if designated == "" && len(datasets) > 0 {
		designated = datasets[0].Name
	}

	outcomes := make([]outcome, len(datasets))

	var wg sync.WaitGroup
	for i, ds := range datasets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.process(ctx, ds, ds.Name == designated)
			outcomes[i] = outcome{ok: err == nil, err: err}
		}()
	}
	wg.Wait()

	res := Result{Failed: make(map[string]error)}
	for i, ds := range datasets {
		if outcomes[i].ok {
			res.Loaded = append(res.Loaded, ds.Name)
		} else {
			res.Failed[ds.Name] = outcomes[i].err
		}
	}

	switch {
	case len(res.Loaded) == 0:
		log.Warn().Msg("No layers loaded")
	case slices.Contains(res.Loaded, designated):
		res.Default = designated
	default:
		fallback := res.Loaded[0]
		if err := c.Map.SelectDefault(fallback); err != nil {
			log.Error().Err(err).Str("layer", fallback).Msg("Failed to select fallback default layer")
			break
		}
		log.Warn().
			Str("wanted", designated).
			Str("layer", fallback).
			Msg("Default layer unavailable, selected first loaded layer")
		res.Default = fallback
	}

	return res
}

func (c *Coordinator) process(ctx context.Context, ds config.Dataset, makeDefault bool) error {
	start := time.Now()
	points, err := c.Fetcher.Load(ctx, ds.Source)
	if c.Metrics != nil {
		c.Metrics.FetchSeconds.WithLabelValues(ds.Name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.count("error")
		log.Error().Err(err).Str("layer", ds.Name).Str("source", ds.Source).Msg("Failed to load dataset")
		return err
	}

	kept := geo.Filter(points, c.Bounds)
	if c.Metrics != nil {
		c.Metrics.LayerPoints.WithLabelValues(ds.Name, "kept").Set(float64(len(kept)))
		c.Metrics.LayerPoints.WithLabelValues(ds.Name, "dropped").Set(float64(len(points) - len(kept)))
	}

	h := c.Map.AddLayer(kept, c.Heat)
	if err := c.Map.RegisterNamedLayer(h, ds.Name, makeDefault); err != nil {
		c.count("error")
		log.Error().Err(err).Str("layer", ds.Name).Msg("Failed to register layer")
		return err
	}
	c.count("ok")

	log.Info().
		Str("layer", ds.Name).
		Int("points", len(points)).
		Int("kept", len(kept)).
		Dur("took", time.Since(start)).
		Msg("Layer loaded")

	if ds.Histogram && c.OnHistogram != nil {
		c.OnHistogram(ds.Name, histogram.Build(geo.Weights(kept), c.Bins))
	}

	return nil
}

func (c *Coordinator) count(status string) {
	if c.Metrics != nil {
		c.Metrics.DatasetLoads.WithLabelValues(status).Inc()
	}
}
