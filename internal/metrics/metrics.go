package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/varoOP/malmirror/internal/domain"
)

const namespace = "malmirror"

// Metrics holds the collectors for cache and sync activity on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	cacheLookups *prometheus.CounterVec
	cacheErrors  prometheus.Counter
	syncItems    *prometheus.CounterVec
	syncRuns     *prometheus.CounterVec
	syncDuration prometheus.Histogram
	upstream     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		cacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Cache operations that returned an error.",
		}),
		syncItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "items_total",
			Help:      "Sync items by outcome.",
		}, []string{"kind", "outcome"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Completed sync runs by status.",
		}, []string{"kind", "status"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of sync runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jikan",
			Name:      "requests_total",
			Help:      "Upstream requests by status class.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheLookups,
		m.cacheErrors,
		m.syncItems,
		m.syncRuns,
		m.syncDuration,
		m.upstream,
	)

	return m
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) CacheError() {
	if m == nil {
		return
	}
	m.cacheErrors.Inc()
}

func (m *Metrics) SyncItem(kind string, outcome domain.ItemOutcome) {
	if m == nil {
		return
	}
	m.syncItems.WithLabelValues(kind, string(outcome)).Inc()
}

func (m *Metrics) SyncRun(report domain.SyncReport, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.syncRuns.WithLabelValues(report.Kind, status).Inc()
	m.syncDuration.Observe(report.Duration.Seconds())
}

// UpstreamRequest records one upstream response by status class, or "error"
// when no response was received
func (m *Metrics) UpstreamRequest(statusCode int) {
	if m == nil {
		return
	}
	class := "error"
	switch {
	case statusCode >= 500:
		class = "5xx"
	case statusCode >= 400:
		class = "4xx"
	case statusCode >= 200:
		class = "2xx"
	}
	m.upstream.WithLabelValues(class).Inc()
}
