package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/observability/metrics"
)

// fakeSessions is a SessionSource whose Wait swaps in the settled session.
type fakeSessions struct {
	mu      sync.Mutex
	session domainauth.Session
	settled *domainauth.Session
	waits   int
}

func (f *fakeSessions) Session() domainauth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeSessions) Wait(ctx context.Context) error {
	f.mu.Lock()
	f.waits++
	settled := f.settled
	if settled != nil {
		f.session = *settled
	}
	f.mu.Unlock()

	if settled == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

type guardMetrics struct {
	metrics.Noop
	mu        sync.Mutex
	decisions []string
}

func (m *guardMetrics) GuardDecision(d string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
}

func guarded(t *testing.T, g *Guard, req domainauth.Requirement) (http.Handler, *domainauth.Session) {
	t.Helper()
	var seen domainauth.Session
	h := g.Require(req)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := GetSessionFromContext(r.Context())
		require.True(t, ok)
		seen = s
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestGuard_Decisions(t *testing.T) {
	patient := domainauth.Session{Token: "t", Role: domainauth.RolePatient}
	resolving := domainauth.Session{Token: "t", Resolving: true}

	tests := []struct {
		name       string
		session    domainauth.Session
		req        domainauth.Requirement
		path       string
		accept     string
		wantStatus int
		wantLoc    string
	}{
		{
			name:       "anonymous browser goes to login with return path",
			req:        domainauth.RequireRoles("ADMIN"),
			path:       "/admin",
			accept:     "text/html",
			wantStatus: http.StatusSeeOther,
			wantLoc:    "/login?redirect_uri=%2Fadmin",
		},
		{
			name:       "anonymous api caller gets 401",
			req:        domainauth.AnyAuthenticated(),
			path:       "/me/appointments",
			accept:     "application/json",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong role browser goes to forbidden page",
			session:    patient,
			req:        domainauth.RequireRoles("DOCTOR"),
			path:       "/doctor",
			accept:     "text/html",
			wantStatus: http.StatusSeeOther,
			wantLoc:    "/403",
		},
		{
			name:       "wrong role api caller gets 403",
			session:    patient,
			req:        domainauth.RequireRoles("ADMIN"),
			path:       "/admin/appointments",
			accept:     "application/json",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "matching role passes",
			session:    patient,
			req:        domainauth.RequireRoles("PATIENT"),
			path:       "/patient",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "unknown required role denies everyone",
			session:    patient,
			req:        domainauth.RequireRoles("NURSE"),
			path:       "/x",
			accept:     "application/json",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "resolution in flight answers loading",
			session:    resolving,
			req:        domainauth.RequireRoles("PATIENT"),
			path:       "/patient",
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(GuardOptions{Sessions: &fakeSessions{session: tt.session}})
			h, _ := guarded(t, g, tt.req)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestGuard_UnauthorizedJSONCarriesLoginTarget(t *testing.T) {
	g := NewGuard(GuardOptions{Sessions: &fakeSessions{}, LoginPath: "/signin"})
	h, _ := guarded(t, g, domainauth.AnyAuthenticated())

	req := httptest.NewRequest(http.MethodGet, "/me/appointments?status=PENDING", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/signin?redirect_uri=%2Fme%2Fappointments%3Fstatus%3DPENDING", body["redirect_to"])
}

func TestGuard_LoadingSetsRetryAfter(t *testing.T) {
	m := &guardMetrics{}
	g := NewGuard(GuardOptions{
		Sessions: &fakeSessions{session: domainauth.Session{Token: "t", LoggingIn: true}},
		Metrics:  m,
	})
	h, _ := guarded(t, g, domainauth.AnyAuthenticated())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patient", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":"loading"}`, rec.Body.String())
	assert.Equal(t, []string{"loading"}, m.decisions)
}

func TestGuard_SettleWaitsForResolution(t *testing.T) {
	settled := domainauth.Session{Token: "t", Role: domainauth.RoleDoctor}
	sessions := &fakeSessions{session: domainauth.Session{Token: "t", Resolving: true}, settled: &settled}
	g := NewGuard(GuardOptions{Sessions: sessions, Settle: time.Second})
	h, seen := guarded(t, g, domainauth.RequireRoles("DOCTOR"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctor", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, sessions.waits)
	assert.Equal(t, domainauth.RoleDoctor, seen.Role)
}

func TestGuard_SettleTimesOutToLoading(t *testing.T) {
	sessions := &fakeSessions{session: domainauth.Session{Token: "t", Resolving: true}}
	g := NewGuard(GuardOptions{Sessions: sessions, Settle: 20 * time.Millisecond})
	h, _ := guarded(t, g, domainauth.RequireRoles("DOCTOR"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctor", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/patient":              "/patient",
		"/doctors/3?x=1":        "/doctors/3?x=1",
		"https://evil.test/x":   "/",
		"//evil.test":           "/",
		"/\\evil.test":          "/",
		"relative/path":         "/",
		"javascript:alert(1)":   "/",
		"/me/appointments#frag": "/me/appointments#frag",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirectPath(in), "input %q", in)
	}
}

func TestIsBrowserRequest(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    bool
	}{
		{name: "no accept header", path: "/patient", want: true},
		{name: "html accept", path: "/patient", headers: map[string]string{"Accept": "text/html,*/*"}, want: true},
		{name: "json accept", path: "/patient", headers: map[string]string{"Accept": "application/json"}, want: false},
		{name: "api prefix", path: "/api/x", want: false},
		{name: "xhr", path: "/patient", headers: map[string]string{"X-Requested-With": "XMLHttpRequest"}, want: false},
		{name: "htmx", path: "/patient", headers: map[string]string{"Hx-Request": "true"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, isBrowserRequest(req))
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	l := newLoginLimiter(0.001, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own budget.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginLimiter_DisabledWithoutRate(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})
	l := newLoginLimiter(0, 0)
	h := l.Middleware(next)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
