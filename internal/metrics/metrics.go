// Package metrics exposes Prometheus collectors for path calculation,
// snapshot loading, ingestion and HTTP traffic. A nil *Metrics is valid and
// records nothing, so components can be built without a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cultivate"

// Metrics bundles the collectors registered for one process.
type Metrics struct {
	gatherer prometheus.Gatherer

	calculations   *prometheus.CounterVec
	calcDuration   prometheus.Histogram
	pathsFound     prometheus.Counter
	pathLength     prometheus.Histogram
	skippedEdges   prometheus.Counter
	snapshotLoads  *prometheus.CounterVec
	cacheRequests  *prometheus.CounterVec
	ingestedItems  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDurationMs *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_calculations_total",
			Help:      "Connection path calculations by outcome.",
		}, []string{"outcome"}),
		calcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "path_calculation_duration_seconds",
			Help:      "Time spent building the graph and searching paths.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		pathsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paths_found_total",
			Help:      "Connection paths returned to callers.",
		}),
		pathLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "path_length_hops",
			Help:      "Number of steps in returned connection paths.",
			Buckets:   prometheus.LinearBuckets(1, 1, 6),
		}),
		skippedEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_connections_total",
			Help:      "Connections ignored because of self-loops or unknown contacts.",
		}),
		snapshotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Network snapshot loads by source and outcome.",
		}, []string{"source", "outcome"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_requests_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		ingestedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_items_total",
			Help:      "Contacts and connections written by kind and outcome.",
		}, []string{"kind", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"route"}),
	}
	reg.MustRegister(
		m.calculations, m.calcDuration, m.pathsFound, m.pathLength, m.skippedEdges,
		m.snapshotLoads, m.cacheRequests, m.ingestedItems, m.httpRequests, m.httpDurationMs,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveCalculation records one call of the path finder.
func (m *Metrics) ObserveCalculation(outcome string, took time.Duration, pathLengths []int, skipped int) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(outcome).Inc()
	m.calcDuration.Observe(took.Seconds())
	m.pathsFound.Add(float64(len(pathLengths)))
	for _, l := range pathLengths {
		m.pathLength.Observe(float64(l))
	}
	m.skippedEdges.Add(float64(skipped))
}

func (m *Metrics) SnapshotLoaded(source, outcome string) {
	if m == nil {
		return
	}
	m.snapshotLoads.WithLabelValues(source, outcome).Inc()
}

// CacheResult counts a cache lookup: hit, miss or error.
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) Ingested(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ingestedItems.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDurationMs.WithLabelValues(route).Observe(float64(took.Milliseconds()))
}
