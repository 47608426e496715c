// Package server handles HTTP requests and middleware.
package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/geo"
	"github.com/woozymasta/heatlayers/internal/layers"
)

// LayerInfo describes a layer to the viewer script.
type LayerInfo struct {
	Name         string      `json:"name"`
	URL          string      `json:"url"`
	HistogramURL string      `json:"histogram_url,omitempty"`
	Options      config.Heat `json:"options"`
	Count        int         `json:"count"`
	Default      bool        `json:"default"`
}

// Linker returns the URL of a layer resource; kind is "points" or "histogram".
type Linker func(name, kind string) string

// APILinker links to the endpoints served by Routes, relative to the index.
func APILinker(name, kind string) string {
	base := "api/layers/" + url.PathEscape(name)
	if kind == "histogram" {
		return base + "/histogram"
	}

	return base
}

// Describe converts registry layers into viewer descriptions.
func Describe(list []layers.Layer, link Linker) []LayerInfo {
	out := make([]LayerInfo, 0, len(list))
	for _, l := range list {
		info := LayerInfo{
			Name:    l.Name,
			URL:     link(l.Name, "points"),
			Options: l.Options,
			Count:   l.Count,
			Default: l.Default,
		}
		if l.Histogram != nil {
			info.HistogramURL = link(l.Name, "histogram")
		}
		out = append(out, info)
	}

	return out
}

// HandleLayersList serves the registered layers in listing order.
func (s *ServerContext) HandleLayersList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, "application/json", Describe(s.Layers.Layers(), APILinker))
}

// HandleLayerPoints serves the filtered points of a layer as [lat, lng, weight] triples.
func (s *ServerContext) HandleLayerPoints(w http.ResponseWriter, r *http.Request) {
	layer, ok := s.Layers.Get(r.PathValue("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	points := layer.Points
	if points == nil {
		points = []geo.Point{}
	}
	writeJSON(w, "application/json", points)
}

// HandleLayerGeoJSON serves a layer as a GeoJSON FeatureCollection.
func (s *ServerContext) HandleLayerGeoJSON(w http.ResponseWriter, r *http.Request) {
	layer, ok := s.Layers.Get(r.PathValue("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, "application/geo+json", geo.ToGeoJSON(layer.Name, layer.Points))
}

// HandleLayerHistogram serves the histogram computed for a layer.
func (s *ServerContext) HandleLayerHistogram(w http.ResponseWriter, r *http.Request) {
	layer, ok := s.Layers.Get(r.PathValue("name"))
	if !ok || layer.Histogram == nil {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, "application/json", layer.Histogram)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := ETag(s.IndexHTML)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// ETag returns a strong entity tag derived from the content hash.
func ETag(content []byte) string {
	sum := sha256.Sum256(content)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

func writeJSON(w http.ResponseWriter, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, no-cache")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
