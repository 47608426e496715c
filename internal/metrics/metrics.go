// Package metrics defines the Prometheus collectors of the map server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DatasetLoads    *prometheus.CounterVec
	FetchSeconds    *prometheus.HistogramVec
	LayerPoints     *prometheus.GaugeVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		DatasetLoads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "heatlayers_dataset_loads_total",
			Help: "Total number of dataset load attempts by result.",
		}, []string{"status"}),
		FetchSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heatlayers_dataset_fetch_duration_seconds",
			Help:    "Duration of dataset fetch and decode.",
			Buckets: prometheus.DefBuckets,
		}, []string{"layer"}),
		LayerPoints: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "heatlayers_layer_points",
			Help: "Number of points per layer, split into kept and dropped by the bounds filter.",
		}, []string{"layer", "state"}),
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "heatlayers_http_requests_total",
			Help: "Total number of HTTP requests by status code.",
		}, []string{"code"}),
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heatlayers_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}
