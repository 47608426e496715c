// Package page renders the map viewer into a single minified HTML document.
package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/woozymasta/heatlayers/assets"
	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/geo"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Settings are handed to the viewer script as window.HEATLAYERS.
type Settings struct {
	Tiles       string          `json:"tiles"`
	Attribution string          `json:"attribution"`
	ListURL     string          `json:"list_url"`
	Center      []float64       `json:"center"`
	Bounds      geo.BoundingBox `json:"bounds"`
	Zoom        int             `json:"zoom"`
}

// SettingsFrom builds viewer settings from the configuration.
// listURL is where the script fetches the layer list from.
func SettingsFrom(cfg *config.Config, listURL string) Settings {
	return Settings{
		Tiles:       cfg.Tiles,
		Attribution: cfg.Attribution,
		ListURL:     listURL,
		Center:      cfg.Center,
		Bounds:      cfg.Bounds,
		Zoom:        cfg.Zoom,
	}
}

type pageData struct {
	Title    string
	CSS      string
	JS       string
	Settings string
}

// Render fills the embedded template and minifies the result.
func Render(title string, s Settings) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, fmt.Errorf("minify CSS: %w", err)
	}
	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, fmt.Errorf("minify JS: %w", err)
	}

	settings, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, pageData{
		Title:    title,
		CSS:      cssMin,
		JS:       jsMin,
		Settings: string(settings),
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	out, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify HTML: %w", err)
	}

	return out, nil
}
