// Package dataset reads point documents from disk or over HTTP.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/heatlayers/internal/geo"
)

// ErrMalformed is returned when a document is not an array of
// [lat, lng, weight] numeric triples.
var ErrMalformed = errors.New("malformed point document")

// Loader fetches point documents. Sources starting with "http" are
// downloaded with Client, anything else is read from the filesystem.
type Loader struct {
	Client *http.Client
}

// NewLoader returns a Loader using the given client, or http.DefaultClient when nil.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}

	return &Loader{Client: client}
}

// Load reads and decodes the document at source.
func (l *Loader) Load(ctx context.Context, source string) ([]geo.Point, error) {
	if strings.HasPrefix(source, "http") {
		return l.download(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

func (l *Loader) download(ctx context.Context, url string) ([]geo.Point, error) {
	log.Debug().Str("url", url).Msg("Downloading dataset")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	return Decode(resp.Body)
}

// Decode parses a JSON array of [lat, lng, weight] triples.
// The first bad record rejects the whole document.
func Decode(r io.Reader) ([]geo.Point, error) {
	dec := json.NewDecoder(r)

	var records []json.RawMessage
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformed)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	points := make([]geo.Point, len(records))
	for i, rec := range records {
		if err := json.Unmarshal(rec, &points[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformed, i, err)
		}
	}

	return points, nil
}
