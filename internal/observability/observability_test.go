package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	l.WithContext(ctx).AuthEvent("login", "a@x.io", false, "invalid credentials")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "auth_event", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, false, entry["success"])
}

func TestLoggerDebugInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("development", &buf)
	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	newLogger("production", &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestMetricsAuthCounter(t *testing.T) {
	m := NewMetrics()
	m.ObserveAuth("login", "failure")
	m.ObserveAuth("login", "failure")
	m.ObserveAuth("register", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("register", "success")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveAuth("login", "success") })
}

func TestMetricsHandlerExposes(t *testing.T) {
	m := NewMetrics()
	m.RateLimited.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited_requests_total 1")
}

func TestInitTracingDisabled(t *testing.T) {
	tr, err := InitTracing(context.Background(), TracingConfig{}, NopLogger())
	require.NoError(t, err)
	require.NotNil(t, tr.Provider)
	assert.NoError(t, tr.Shutdown(context.Background()))
}
