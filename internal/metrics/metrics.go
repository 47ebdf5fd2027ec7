// Package metrics exposes the Prometheus instrumentation for the search
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline collectors. A nil *Metrics is valid and
// records nothing, so wiring stays optional in tests.
type Metrics struct {
	connectorLatency *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	searches         *prometheus.CounterVec
	inFlight         prometheus.Gauge
}

// New creates the collectors and registers them on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "partlogic",
			Name:      "connector_duration_seconds",
			Help:      "Wall time of connector invocations by source and status.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"source", "status"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partlogic",
			Name:      "cache_hits_total",
			Help:      "Cache hits by key kind.",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partlogic",
			Name:      "cache_misses_total",
			Help:      "Cache misses by key kind.",
		}, []string{"kind"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partlogic",
			Name:      "searches_total",
			Help:      "Searches by detected query type.",
		}, []string{"query_type"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "partlogic",
			Name:      "connector_in_flight",
			Help:      "Connector invocations currently running.",
		}),
	}
	reg.MustRegister(m.connectorLatency, m.cacheHits, m.cacheMisses, m.searches, m.inFlight)
	return m
}

// ObserveConnector records one connector invocation.
func (m *Metrics) ObserveConnector(source, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.connectorLatency.WithLabelValues(source, status).Observe(elapsed.Seconds())
}

// CacheHit counts a hit for a key kind ("connector", "overall", "vin", ...).
func (m *Metrics) CacheHit(kind string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(kind).Inc()
}

// CacheMiss counts a miss for a key kind.
func (m *Metrics) CacheMiss(kind string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(kind).Inc()
}

// SearchStarted counts a search by query type.
func (m *Metrics) SearchStarted(queryType string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(queryType).Inc()
}

// ConnectorStarted marks one connector invocation in flight; call the
// returned func when it finishes.
func (m *Metrics) ConnectorStarted() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}
