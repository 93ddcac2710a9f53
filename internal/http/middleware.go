package httpx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/observability/metrics"
)

func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records one observation per request, labelled by the matched route pattern
// so path parameters do not explode label cardinality.
func Metrics(rec metrics.Recorder) func(http.Handler) http.Handler {
	rec = metrics.OrNoop(rec)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			rec.HTTPRequest(r.Method, route, ww.status, time.Since(start))
		})
	}
}

// isBrowserRequest reports whether the caller expects HTML navigation rather than JSON.
func isBrowserRequest(r *http.Request) bool {
	// API routes are explicitly not browser requests
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}

	if isAJAX(r) {
		return false
	}

	accept := r.Header.Get("Accept")
	if accept == "" {
		// No Accept header, assume browser for non-API routes
		return true
	}

	return strings.Contains(accept, "text/html")
}

func isAJAX(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("Hx-Request"), "true") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// SessionSource exposes the current session snapshot and a way to wait for
// an in-flight identity resolution.
type SessionSource interface {
	Session() domainauth.Session
	Wait(ctx context.Context) error
}

// GuardOptions configures a Guard.
type GuardOptions struct {
	Sessions      SessionSource
	LoginPath     string
	ForbiddenPath string
	// Settle bounds how long a request waits for an in-flight resolution before
	// answering with a loading response. Zero answers immediately.
	Settle  time.Duration
	Metrics metrics.Recorder
	Logger  *slog.Logger
}

// Guard turns route requirements into middleware.
type Guard struct {
	sessions      SessionSource
	loginPath     string
	forbiddenPath string
	settle        time.Duration
	metrics       metrics.Recorder
	logger        *slog.Logger
}

const (
	defaultLoginPath     = "/login"
	defaultForbiddenPath = "/403"
)

func NewGuard(opts GuardOptions) *Guard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{
		sessions:      opts.Sessions,
		loginPath:     opts.LoginPath,
		forbiddenPath: opts.ForbiddenPath,
		settle:        opts.Settle,
		metrics:       metrics.OrNoop(opts.Metrics),
		logger:        logger.With("component", "route_guard"),
	}
	if g.loginPath == "" {
		g.loginPath = defaultLoginPath
	}
	if g.forbiddenPath == "" {
		g.forbiddenPath = defaultForbiddenPath
	}
	return g
}

// Require admits requests whose session satisfies req. Admitted requests carry
// the session snapshot in their context.
func (g *Guard) Require(req domainauth.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, decision := g.decide(r.Context(), req)
			g.metrics.GuardDecision(string(decision))

			switch decision {
			case domainauth.DecisionAllow:
				next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
			case domainauth.DecisionRedirectLogin:
				g.redirectToLogin(w, r)
			case domainauth.DecisionRedirectForbidden:
				g.logger.DebugContext(r.Context(), "route forbidden",
					"path", r.URL.Path, "role", string(session.Role))
				if isBrowserRequest(r) {
					http.Redirect(w, r, g.forbiddenPath, http.StatusSeeOther)
					return
				}
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":   "forbidden",
					"message": "You do not have access to this resource.",
				})
			default:
				w.Header().Set("Retry-After", "1")
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			}
		})
	}
}

func (g *Guard) decide(ctx context.Context, req domainauth.Requirement) (domainauth.Session, domainauth.Decision) {
	session := g.sessions.Session()
	decision := domainauth.Decide(session, req)
	if decision != domainauth.DecisionLoading || g.settle <= 0 {
		return session, decision
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.settle)
	defer cancel()
	if err := g.sessions.Wait(waitCtx); err != nil {
		return session, decision
	}
	session = g.sessions.Session()
	return session, domainauth.Decide(session, req)
}

func (g *Guard) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := g.loginPath + "?redirect_uri=" + url.QueryEscape(safeRedirectPath(r.URL.RequestURI()))
	if isBrowserRequest(r) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":       "unauthorized",
		"message":     "Please sign in.",
		"redirect_to": target,
	})
}

// safeRedirectPath keeps redirects inside the app.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") ||
		strings.HasPrefix(candidate, "//") || strings.Contains(candidate, "\\") {
		return "/"
	}
	return candidate
}

// loginLimiter throttles login attempts per client address.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *loginLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Middleware rejects requests over the limit with 429. A non-positive rate disables it.
func (l *loginLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.rate <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(clientKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":   "rate_limited",
				"message": "Too many sign-in attempts. Please wait and try again.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
