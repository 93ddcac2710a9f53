package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	p := NewPrometheus()

	p.LoginAttempt("success")
	p.LoginAttempt("success")
	p.LoginAttempt("failure")
	p.ProbeResult("/api/patients/me", "ok")
	p.Resolution("authenticated")
	p.GuardDecision("redirect_forbidden")

	assert.InDelta(t, 2, testutil.ToFloat64(p.loginAttempts.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.loginAttempts.WithLabelValues("failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.probeResults.WithLabelValues("/api/patients/me", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.resolutions.WithLabelValues("authenticated")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.guardDecisions.WithLabelValues("redirect_forbidden")), 0)
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.HTTPRequest(http.MethodGet, "/doctors", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `medbook_http_requests_total{method="GET",route="/doctors",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop{}, OrNoop(nil))

	p := NewPrometheus()
	assert.Same(t, p, OrNoop(p))
}
