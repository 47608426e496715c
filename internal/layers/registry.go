package layers

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/geo"
	"github.com/woozymasta/heatlayers/internal/histogram"
)

// Layer is a named heat layer as seen by readers of the Registry.
type Layer struct {
	Options   config.Heat     `json:"options"`
	Name      string          `json:"name"`
	Points    []geo.Point     `json:"-"`
	Histogram []histogram.Bin `json:"-"`
	Count     int             `json:"count"`
	Default   bool            `json:"default"`
}

type entry struct {
	points    []geo.Point
	histogram []histogram.Bin
	opts      config.Heat
	name      string
}

// Registry is an in-memory MapService. Layers are listed in the order given
// to NewRegistry; names it does not know come last, sorted by name.
type Registry struct {
	handles     map[LayerHandle]*entry
	named       map[string]*entry
	order       map[string]int
	defaultName string
	next        LayerHandle
	mu          sync.RWMutex
}

// NewRegistry creates an empty registry listing layers in the given order.
func NewRegistry(order ...string) *Registry {
	idx := make(map[string]int, len(order))
	for i, name := range order {
		idx[name] = i
	}

	return &Registry{
		handles: make(map[LayerHandle]*entry),
		named:   make(map[string]*entry),
		order:   idx,
	}
}

// AddLayer stores points under a fresh handle.
func (r *Registry) AddLayer(points []geo.Point, opts config.Heat) LayerHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.handles[r.next] = &entry{points: points, opts: opts}

	return r.next
}

// RegisterNamedLayer names the layer behind h. A layer registered again under
// the same name replaces the previous one.
func (r *Registry) RegisterNamedLayer(h LayerHandle, name string, makeDefault bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.handles[h]
	if !ok {
		return ErrUnknownHandle
	}

	if old, exists := r.named[name]; exists && old != e {
		log.Warn().Str("layer", name).Msg("Replacing previously registered layer")
	}

	e.name = name
	r.named[name] = e
	if makeDefault {
		r.defaultName = name
	}

	log.Debug().
		Str("layer", name).
		Int("points", len(e.points)).
		Bool("default", makeDefault).
		Msg("Layer registered")

	return nil
}

// SelectDefault makes name the visible layer.
func (r *Registry) SelectDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.named[name]; !ok {
		return ErrUnknownLayer
	}
	r.defaultName = name

	return nil
}

// AttachHistogram stores bins computed for a named layer.
func (r *Registry) AttachHistogram(name string, bins []histogram.Bin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.named[name]
	if !ok {
		return ErrUnknownLayer
	}
	e.histogram = bins

	return nil
}

// Default returns the visible layer name, empty when none is registered.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defaultName
}

// Get returns a named layer.
func (r *Registry) Get(name string) (Layer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.named[name]
	if !ok {
		return Layer{}, false
	}

	return r.view(e), true
}

// Layers returns all named layers in listing order.
func (r *Registry) Layers() []Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Layer, 0, len(r.named))
	for _, e := range r.named {
		out = append(out, r.view(e))
	}

	sort.Slice(out, func(i, j int) bool {
		idxI, okI := r.order[out[i].Name]
		idxJ, okJ := r.order[out[j].Name]
		if okI != okJ {
			return okI
		}
		if idxI != idxJ {
			return idxI < idxJ
		}

		return out[i].Name < out[j].Name
	})

	return out
}

func (r *Registry) view(e *entry) Layer {
	return Layer{
		Name:      e.name,
		Points:    e.points,
		Options:   e.opts,
		Histogram: e.histogram,
		Count:     len(e.points),
		Default:   e.name == r.defaultName,
	}
}
