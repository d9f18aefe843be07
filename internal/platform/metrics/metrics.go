// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// DefaultBuckets are latency buckets in seconds.
var DefaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

type Metrics struct {
	FreightCalculations *prometheus.CounterVec
	CacheLookups        *prometheus.CounterVec
	ExternalCalls       *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. A nil reg skips
// registration, which keeps tests independent of the global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FreightCalculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_calculations_total",
			Help: "Freight calculations by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coordinate_cache_lookups_total",
			Help: "Postal-code coordinate cache lookups by result (hit, miss, expired, error).",
		}, []string{"result"}),
		ExternalCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "external_lookup_duration_seconds",
			Help:    "Latency of postal lookup and geocoding calls.",
			Buckets: DefaultBuckets,
		}, []string{"call", "status"}),
	}

	if reg != nil {
		reg.MustRegister(m.FreightCalculations, m.CacheLookups, m.ExternalCalls)
	}
	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics { return New(nil) }
