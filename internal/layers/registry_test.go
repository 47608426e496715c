package layers_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/geo"
	"github.com/woozymasta/heatlayers/internal/histogram"
	"github.com/woozymasta/heatlayers/internal/layers"
)

func TestRegistry_RegisterAndList(t *testing.T) {
	reg := layers.NewRegistry("price", "rating", "reviews")
	heat := config.Heat{Radius: 25}

	hReviews := reg.AddLayer([]geo.Point{{37.75, -122.41, 3}}, heat)
	hPrice := reg.AddLayer([]geo.Point{{37.75, -122.41, 2}, {37.8, -122.45, 1}}, heat)
	hExtra := reg.AddLayer(nil, heat)

	require.NoError(t, reg.RegisterNamedLayer(hReviews, "reviews", false))
	require.NoError(t, reg.RegisterNamedLayer(hPrice, "price", true))
	require.NoError(t, reg.RegisterNamedLayer(hExtra, "aaa-extra", false))

	list := reg.Layers()
	require.Len(t, list, 3)
	assert.Equal(t, "price", list[0].Name)
	assert.Equal(t, "reviews", list[1].Name)
	assert.Equal(t, "aaa-extra", list[2].Name)

	assert.True(t, list[0].Default)
	assert.Equal(t, 2, list[0].Count)
	assert.Equal(t, heat, list[0].Options)
	assert.Equal(t, 0, list[2].Count, "zero-point layers are kept")
	assert.Equal(t, "price", reg.Default())
}

func TestRegistry_Errors(t *testing.T) {
	reg := layers.NewRegistry()

	require.ErrorIs(t, reg.RegisterNamedLayer(42, "x", false), layers.ErrUnknownHandle)
	require.ErrorIs(t, reg.SelectDefault("x"), layers.ErrUnknownLayer)
	require.ErrorIs(t, reg.AttachHistogram("x", nil), layers.ErrUnknownLayer)

	_, ok := reg.Get("x")
	assert.False(t, ok)
	assert.Empty(t, reg.Default())
}

func TestRegistry_SelectDefaultAndHistogram(t *testing.T) {
	reg := layers.NewRegistry()
	require.NoError(t, reg.RegisterNamedLayer(reg.AddLayer(nil, config.Heat{}), "a", true))
	require.NoError(t, reg.RegisterNamedLayer(reg.AddLayer(nil, config.Heat{}), "b", false))

	require.NoError(t, reg.SelectDefault("b"))
	assert.Equal(t, "b", reg.Default())

	bins := []histogram.Bin{{Lower: 1, Upper: 10, Count: 4}}
	require.NoError(t, reg.AttachHistogram("b", bins))

	layer, ok := reg.Get("b")
	require.True(t, ok)
	assert.True(t, layer.Default)
	assert.Equal(t, bins, layer.Histogram)

	other, _ := reg.Get("a")
	assert.False(t, other.Default)
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	reg := layers.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := reg.AddLayer([]geo.Point{{Lat: float64(i)}}, config.Heat{})
			assert.NoError(t, reg.RegisterNamedLayer(h, fmt.Sprintf("layer-%02d", i), false))
			_ = reg.Layers()
		}()
	}
	wg.Wait()

	list := reg.Layers()
	require.Len(t, list, 50)
	assert.Equal(t, "layer-00", list[0].Name)
	assert.Equal(t, "layer-49", list[49].Name)
}
