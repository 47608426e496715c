package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/layers"
	"github.com/woozymasta/heatlayers/internal/metrics"
	"github.com/woozymasta/heatlayers/internal/page"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Title is shown in the browser tab.
const Title = "Heatmap layers"

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Layers    *layers.Registry
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	IndexHTML []byte
}

// NewServerContext renders the viewer page and wires the layer registry.
// m and g may be nil, in which case no metrics are recorded or exposed.
func NewServerContext(cfg *config.Config, reg *layers.Registry, m *metrics.Metrics, g prometheus.Gatherer) (*ServerContext, error) {
	index, err := page.Render(Title, page.SettingsFrom(cfg, "api/layers"))
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("layers", len(reg.Layers())).
		Str("default", reg.Default()).
		Int("index_bytes", len(index)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:    cfg,
		Layers:    reg,
		Metrics:   m,
		Gatherer:  g,
		IndexHTML: index,
	}, nil
}

// Routes returns the request handler with logging applied.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/layers", s.HandleLayersList)
	mux.HandleFunc("GET /api/layers/{name}", s.HandleLayerPoints)
	mux.HandleFunc("GET /api/layers/{name}/geojson", s.HandleLayerGeoJSON)
	mux.HandleFunc("GET /api/layers/{name}/histogram", s.HandleLayerHistogram)
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("GET /", s.HandleIndex)

	return RequestLogger(mux, s.Metrics)
}
