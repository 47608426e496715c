// Package layers registers filtered point datasets as named map layers.
package layers

import (
	"errors"

	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/geo"
)

var (
	ErrUnknownLayer  = errors.New("unknown layer")
	ErrUnknownHandle = errors.New("unknown layer handle")
)

// LayerHandle identifies a layer added to a MapService before it is named.
type LayerHandle int

// MapService is the map display the layers are handed to.
// Implementations must accept registrations from several goroutines.
type MapService interface {
	// AddLayer stores points as an unnamed heat layer.
	AddLayer(points []geo.Point, opts config.Heat) LayerHandle
	// RegisterNamedLayer makes a layer selectable under name.
	// When makeDefault is set it becomes the visible layer.
	RegisterNamedLayer(h LayerHandle, name string, makeDefault bool) error
	// SelectDefault makes an already named layer the visible one.
	SelectDefault(name string) error
}
