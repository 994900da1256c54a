// Package metrics collects counters for remote API calls and list refreshes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a registry so tests and multiple clients do not collide
// on the global one.
type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	entries  *prometheus.GaugeVec
	refresh  *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repertoire",
			Name:      "api_requests_total",
			Help:      "Remote API requests by operation and HTTP status (0 for transport errors).",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "repertoire",
			Name:      "api_request_duration_seconds",
			Help:      "Remote API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "repertoire",
			Name:      "entries",
			Help:      "Entries in the last fetched list by kind.",
		}, []string{"kind"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repertoire",
			Name:      "refreshes_total",
			Help:      "Scheduled list refreshes by result.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(c.requests, c.latency, c.entries, c.refresh)
	return c
}

// ObserveRequest records one API call
func (c *Collector) ObserveRequest(operation string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetEntries replaces the per-kind entry gauges
func (c *Collector) SetEntries(byKind map[string]int) {
	if c == nil {
		return
	}
	c.entries.Reset()
	for kind, n := range byKind {
		c.entries.WithLabelValues(kind).Set(float64(n))
	}
}

// ObserveRefresh records a scheduled refresh outcome
func (c *Collector) ObserveRefresh(ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	c.refresh.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
