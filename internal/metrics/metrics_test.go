package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/heatlayers/internal/metrics"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.DatasetLoads.WithLabelValues("ok").Inc()
	m.DatasetLoads.WithLabelValues("ok").Inc()
	m.LayerPoints.WithLabelValues("ratings", "kept").Set(12)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 2)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}

	assert.InDelta(t, 2.0, values["heatlayers_dataset_loads_total"], 0)
	assert.InDelta(t, 12.0, values["heatlayers_layer_points"], 0)

	assert.Panics(t, func() { metrics.New(reg) }, "duplicate registration must panic")
}
