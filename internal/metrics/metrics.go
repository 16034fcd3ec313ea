// Package metrics exports partsengine observability events as Prometheus
// metrics.
//
// A Metrics value implements every hook interface in pkg/observability and
// owns its own registry, so tests and embedded servers never collide with the
// global default registry. Register it once at startup:
//
//	m := metrics.New()
//	m.Register()
//	http.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/observability"
)

const namespace = "partsengine"

// Metrics collects resolution, batch, cache, and catalog HTTP metrics.
type Metrics struct {
	reg *prometheus.Registry

	resolves        *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	resolveResults  *prometheus.HistogramVec
	inflight        prometheus.Gauge
	unknown         *prometheus.CounterVec
	fallbacks       prometheus.Counter

	batchItems    *prometheus.CounterVec
	batchDuration prometheus.Histogram

	cacheOps   *prometheus.CounterVec
	cacheBytes prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

var (
	_ observability.EngineHooks = (*Metrics)(nil)
	_ observability.BatchHooks  = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)

// New creates a Metrics with a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,

		resolves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolves_total",
			Help:      "Part resolutions by catalog category and outcome.",
		}, []string{"category", "outcome"}),
		resolveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time from catalog query to ranked references.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
		resolveResults: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_results",
			Help:      "Number of part references returned per resolution.",
			Buckets:   []float64{0, 1, 2, 3},
		}, []string{"category"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolves_inflight",
			Help:      "Resolutions currently waiting on the catalog.",
		}),
		unknown: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_category_total",
			Help:      "Components whose type has no catalog category.",
		}, []string{"ftype"}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "footprint_fallbacks_total",
			Help:      "KiCad footprints passed to the catalog unchanged.",
		}),

		batchItems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch items by result.",
		}, []string{"result"}),
		batchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of batch runs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),

		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "op"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog HTTP responses by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog HTTP round-trip time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_request_errors_total",
			Help:      "Catalog HTTP requests that failed before a response.",
		}, []string{"host", "reason"}),
	}
}

// Register installs m as the process-wide observability hooks.
func (m *Metrics) Register() {
	observability.SetEngineHooks(m)
	observability.SetBatchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the metrics are collected in.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) OnResolveStart(_ context.Context, _ string) {
	m.inflight.Inc()
}

func (m *Metrics) OnResolveComplete(_ context.Context, category string, results int, d time.Duration, err error) {
	m.inflight.Dec()
	m.resolveDuration.WithLabelValues(category).Observe(d.Seconds())
	if err != nil {
		m.resolves.WithLabelValues(category, errorReason(err)).Inc()
		return
	}
	m.resolveResults.WithLabelValues(category).Observe(float64(results))
	outcome := "found"
	if results == 0 {
		outcome = "empty"
	}
	m.resolves.WithLabelValues(category, outcome).Inc()
}

func (m *Metrics) OnUnknownCategory(_ context.Context, ftype string) {
	m.unknown.WithLabelValues(ftype).Inc()
}

func (m *Metrics) OnFootprintFallback(context.Context, string) {
	m.fallbacks.Inc()
}

func (m *Metrics) OnBatchStart(context.Context, string, int) {}

func (m *Metrics) OnBatchComplete(_ context.Context, _ string, succeeded, failed int, d time.Duration) {
	m.batchItems.WithLabelValues("succeeded").Add(float64(succeeded))
	m.batchItems.WithLabelValues("failed").Add(float64(failed))
	m.batchDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(host, statusClass(code)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, err error) {
	m.httpErrors.WithLabelValues(host, errorReason(err)).Inc()
}

// statusClass keeps label cardinality bounded: 2xx, 4xx, 5xx.
func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	if code := pkgerrors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}
