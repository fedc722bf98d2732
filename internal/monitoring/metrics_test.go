package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCounters(t *testing.T) {
	m := NewMetrics("ecodash_test")

	m.ObserveDashboard("live", true, 12)
	m.ObserveDashboard("live", true, 8)
	m.ObserveFallback("source_unavailable")
	m.ObserveNarrative("groq", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dashboardBuilds.WithLabelValues("live", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceFallbacks.WithLabelValues("source_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.narrativeResults.WithLabelValues("groq", "false")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDashboard("sample", false, 0)
		m.ObserveFallback("x")
		m.ObserveNarrative("template", false)
	})
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics("ecodash_mw")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/items/{id}", "418")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ecodash_mw_http_requests_total"))
}
