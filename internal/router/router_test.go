package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the1323/cs166-project-the033-hbai013/internal/handler/health"
	"github.com/the1323/cs166-project-the033-hbai013/internal/handler/prometheus"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newTestRouter(pingErr error) (*Router, *metrics.Metrics) {
	m := metrics.New("clinicdb")
	r := NewRouter(health.NewHandler(pinger{err: pingErr}), prometheus.New(m.Registry, "clinicdb"), logger.Nop())
	return r, m
}

func get(r *Router, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestHealthLive(t *testing.T) {
	r, _ := newTestRouter(errors.New("down"))

	w := get(r, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"UP"}}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthReady(t *testing.T) {
	r, _ := newTestRouter(nil)
	assert.Equal(t, http.StatusOK, get(r, "/health/ready").Code)

	r, _ = newTestRouter(errors.New("connection refused"))
	w := get(r, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database not available")
}

func TestMetricsEndpoint(t *testing.T) {
	r, m := newTestRouter(nil)
	m.Bookings.WithLabelValues("activated").Inc()

	get(r, "/health/live")
	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `clinicdb_bookings_total{outcome="activated"} 1`)
	assert.Contains(t, body, "clinicdb_http_requests_total")
}
