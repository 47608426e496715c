package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/dataset"
	"github.com/woozymasta/heatlayers/internal/histogram"
	"github.com/woozymasta/heatlayers/internal/layers"
	"github.com/woozymasta/heatlayers/internal/logger"
	"github.com/woozymasta/heatlayers/internal/metrics"
	"github.com/woozymasta/heatlayers/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	promReg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(promReg)

	registry := layers.NewRegistry(cfg.Names()...)
	coordinator := &layers.Coordinator{
		Fetcher:      dataset.NewLoader(&http.Client{Timeout: cfg.FetchTimeout}),
		Map:          registry,
		Metrics:      appMetrics,
		Heat:         cfg.Heat,
		Bounds:       cfg.Bounds,
		DefaultLayer: cfg.DefaultLayer,
		Bins:         cfg.HistogramBins,
		OnHistogram: func(layer string, bins []histogram.Bin) {
			log.Info().
				Str("layer", layer).
				Interface("bins", bins).
				Int("counted", histogram.Total(bins)).
				Msg("Histogram computed")
			if err := registry.AttachHistogram(layer, bins); err != nil {
				log.Error().Err(err).Str("layer", layer).Msg("Failed to attach histogram")
			}
		},
	}

	res := coordinator.Run(ctx, cfg.Datasets)
	log.Info().
		Strs("loaded", res.Loaded).
		Int("failed", len(res.Failed)).
		Str("default", res.Default).
		Msg("Datasets processed")

	srvCtx, err := server.NewServerContext(cfg, registry, appMetrics, promReg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Int("layers_loaded", len(res.Loaded)).
		Msg("Web server started")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
