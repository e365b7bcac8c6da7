// Package metrics exposes prometheus counters for the cached query layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spimex"

// Cache outcomes recorded per query
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeCorrupt = "corrupt"
)

// Metrics holds the counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	lookups     *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	sourceCalls *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// New registers the counters on reg
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by query and outcome.",
		}, []string{"query", "outcome"}),
		storeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "store_errors_total",
			Help:      "Cache store failures absorbed by the query layer.",
		}, []string{"op"}),
		sourceCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "queries_total",
			Help:      "Record source queries by query and result.",
		}, []string{"query", "result"}),
		gatherer: reg,
	}
}

// Lookup records a cache lookup outcome
func (m *Metrics) Lookup(query, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(query, outcome).Inc()
}

// StoreError records a failed store operation
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// SourceQuery records a record source call; result is "ok", "empty" or "error"
func (m *Metrics) SourceQuery(query, result string) {
	if m == nil {
		return
	}
	m.sourceCalls.WithLabelValues(query, result).Inc()
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
