// internal/monitoring/metrics.go

package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the dashboard service
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dashboardBuilds     *prometheus.CounterVec
	sourceFallbacks     *prometheus.CounterVec
	narrativeResults    *prometheus.CounterVec
	postsAnalyzed       prometheus.Histogram
}

// NewMetrics creates and registers all collectors on a private registry
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		dashboardBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_builds_total",
				Help:      "Dashboard documents assembled, by data source and outcome",
			},
			[]string{"data_source", "success"},
		),
		sourceFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_fallbacks_total",
				Help:      "Requests served from sample data, by reason",
			},
			[]string{"reason"},
		),
		narrativeResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "narrative_results_total",
				Help:      "Narratives produced, by backend and whether they were generated",
			},
			[]string{"backend", "ai_generated"},
		),
		postsAnalyzed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "posts_analyzed",
				Help:      "Number of posts fed into analytics per dashboard",
				Buckets:   []float64{0, 5, 10, 25, 50, 100, 250},
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dashboardBuilds,
		m.sourceFallbacks,
		m.narrativeResults,
		m.postsAnalyzed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveDashboard records one assembled dashboard. A nil Metrics is a no-op.
func (m *Metrics) ObserveDashboard(dataSource string, success bool, posts int) {
	if m == nil {
		return
	}
	m.dashboardBuilds.WithLabelValues(dataSource, strconv.FormatBool(success)).Inc()
	m.postsAnalyzed.Observe(float64(posts))
}

// ObserveFallback records a switch to sample data
func (m *Metrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.sourceFallbacks.WithLabelValues(reason).Inc()
}

// ObserveNarrative records one narrative result
func (m *Metrics) ObserveNarrative(backend string, aiGenerated bool) {
	if m == nil {
		return
	}
	m.narrativeResults.WithLabelValues(backend, strconv.FormatBool(aiGenerated)).Inc()
}
