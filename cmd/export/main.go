package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/dataset"
	"github.com/woozymasta/heatlayers/internal/geo"
	"github.com/woozymasta/heatlayers/internal/histogram"
	"github.com/woozymasta/heatlayers/internal/layers"
	"github.com/woozymasta/heatlayers/internal/logger"
	"github.com/woozymasta/heatlayers/internal/page"
	"github.com/woozymasta/heatlayers/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	OutDir     string `short:"o" long:"out"    env:"OUT_DIR"     description:"Directory to write the static site to" default:"public"`
	GeoJSON    bool   `short:"g" long:"geojson" description:"Also write a GeoJSON file per layer"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	registry := layers.NewRegistry(cfg.Names()...)
	coordinator := &layers.Coordinator{
		Fetcher:      dataset.NewLoader(&http.Client{Timeout: cfg.FetchTimeout}),
		Map:          registry,
		Heat:         cfg.Heat,
		Bounds:       cfg.Bounds,
		DefaultLayer: cfg.DefaultLayer,
		Bins:         cfg.HistogramBins,
		OnHistogram: func(layer string, bins []histogram.Bin) {
			if err := registry.AttachHistogram(layer, bins); err != nil {
				log.Error().Err(err).Str("layer", layer).Msg("Failed to attach histogram")
			}
		},
	}
	res := coordinator.Run(context.Background(), cfg.Datasets)

	if err := export(opts.OutDir, cfg, registry, opts.GeoJSON); err != nil {
		log.Fatal().Err(err).Msg("Failed to export site")
	}

	log.Info().
		Str("out", opts.OutDir).
		Int("layers", len(res.Loaded)).
		Int("failed", len(res.Failed)).
		Msg("Export done")
}

func staticLinker(name, kind string) string {
	if kind == "histogram" {
		return "layers/" + config.Slug(name) + ".histogram.json"
	}

	return "layers/" + config.Slug(name) + ".json"
}

// export writes index.html, layers.json and one file per layer resource.
func export(dir string, cfg *config.Config, registry *layers.Registry, withGeoJSON bool) error {
	if err := os.MkdirAll(filepath.Join(dir, "layers"), 0755); err != nil {
		return err
	}

	index, err := page.Render(server.Title, page.SettingsFrom(cfg, "layers.json"))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), index, 0644); err != nil {
		return err
	}

	list := registry.Layers()
	if err := writeJSON(filepath.Join(dir, "layers.json"), server.Describe(list, staticLinker)); err != nil {
		return err
	}

	for _, l := range list {
		points := l.Points
		if points == nil {
			points = []geo.Point{}
		}
		if err := writeJSON(filepath.Join(dir, staticLinker(l.Name, "points")), points); err != nil {
			return err
		}

		if l.Histogram != nil {
			if err := writeJSON(filepath.Join(dir, staticLinker(l.Name, "histogram")), l.Histogram); err != nil {
				return err
			}
		}

		if withGeoJSON {
			path := filepath.Join(dir, "layers", config.Slug(l.Name)+".geojson")
			if err := writeJSON(path, geo.ToGeoJSON(l.Name, l.Points)); err != nil {
				return err
			}
		}

		log.Debug().Str("layer", l.Name).Int("points", l.Count).Msg("Layer exported")
	}

	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return json.NewEncoder(f).Encode(v)
}
