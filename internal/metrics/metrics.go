package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llb_resolutions_total",
		Help: "Postal-code resolutions by country and outcome",
	}, []string{"country", "status"})
	ResolutionDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llb_resolution_duration_ms",
		Help:    "Resolution duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	}, []string{"country"})
	GeocodeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "llb_geocode_requests_total",
		Help: "Live geocoding requests issued",
	})
	GeocodeFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "llb_geocode_failures_total",
		Help: "Live geocoding requests that failed or timed out",
	})
	GeocodeCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "llb_geocode_cache_hits_total",
		Help: "Geocoding responses served from cache",
	})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "llb_geocode_duration_ms",
		Help:    "Live geocoding call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 3000},
	})
	SnapshotEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "llb_snapshot_entries",
		Help: "Loaded snapshot entry count per country",
	}, []string{"country"})
)

func init() {
	prometheus.MustRegister(ResolutionsTotal)
	prometheus.MustRegister(ResolutionDurationMs)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeFailuresTotal)
	prometheus.MustRegister(GeocodeCacheHitsTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(SnapshotEntries)
}
