package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/dataset"
	"github.com/woozymasta/heatlayers/internal/layers"
	"github.com/woozymasta/heatlayers/internal/logger"
	"github.com/woozymasta/heatlayers/internal/render"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	OutDir      string   `short:"o" long:"out"         env:"OUT_DIR"     description:"Directory to write snapshots to" default:"snapshots"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES" description:"Limit processing to specific layer names"`
	Width       int      `short:"w" long:"width"       description:"Snapshot width in pixels" default:"1024"`
	Quality     float32  `short:"q" long:"quality"     description:"WebP quality" default:"85"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrent encoders" default:"4"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing files"`
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

	datasets, unknown := cfg.Limit(opts.Limit)
	for _, name := range unknown {
		log.Error().
			Str("name", name).
			Msg("Layer specified in --limit not found in configuration")
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	log.Info().
		Int("layers_total", len(cfg.Datasets)).
		Int("layers_queued", len(datasets)).
		Msg("Starting snapshot")

	registry := layers.NewRegistry(cfg.Names()...)
	coordinator := &layers.Coordinator{
		Fetcher:      dataset.NewLoader(&http.Client{Timeout: cfg.FetchTimeout}),
		Map:          registry,
		Heat:         cfg.Heat,
		Bounds:       cfg.Bounds,
		DefaultLayer: cfg.DefaultLayer,
		Bins:         cfg.HistogramBins,
	}
	coordinator.Run(context.Background(), datasets)

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	renderOpts := render.Options{
		Width:      opts.Width,
		Radius:     cfg.Heat.Radius,
		MinOpacity: cfg.Heat.MinOpacity,
	}

	var wg sync.WaitGroup
	// Simple semaphore to limit encoder concurrency
	sem := make(chan struct{}, opts.Concurrency)

	for _, layer := range registry.Layers() {
		wg.Add(1)
		sem <- struct{}{}

		go func(l layers.Layer) {
			defer wg.Done()
			defer func() { <-sem }()

			outPath := filepath.Join(opts.OutDir, config.Slug(l.Name)+".webp")
			if !opts.Force {
				if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
					log.Debug().Str("layer", l.Name).Msg("Snapshot exists, skipping")
					return
				}
			}

			if err := writeSnapshot(outPath, l, cfg, renderOpts, opts.Quality); err != nil {
				log.Error().Err(err).Str("layer", l.Name).Msg("Failed to write snapshot")
				return
			}

			log.Info().
				Str("layer", l.Name).
				Str("path", outPath).
				Int("points", l.Count).
				Msg("Snapshot written")
		}(layer)
	}
	wg.Wait()

	log.Info().Msg("Snapshot finished successfully")
}

func writeSnapshot(path string, l layers.Layer, cfg *config.Config, opts render.Options, quality float32) error {
	img, err := render.Heat(l.Points, cfg.Bounds, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return render.Encode(f, img, quality)
}
