package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medbook"

// Recorder receives session and routing events. Implementations must be safe for concurrent use.
type Recorder interface {
	LoginAttempt(result string)
	ProbeResult(endpoint, result string)
	Resolution(outcome string)
	GuardDecision(decision string)
	HTTPRequest(method, route string, status int, elapsed time.Duration)
}

// Noop discards every event.
type Noop struct{}

func (Noop) LoginAttempt(string)                            {}
func (Noop) ProbeResult(string, string)                     {}
func (Noop) Resolution(string)                              {}
func (Noop) GuardDecision(string)                           {}
func (Noop) HTTPRequest(string, string, int, time.Duration) {}

// Prometheus records events into its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	loginAttempts  *prometheus.CounterVec
	probeResults   *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheus builds a recorder backed by a fresh registry that also exposes Go runtime metrics.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		probeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_probes_total",
			Help:      "Profile endpoint probes by endpoint and result",
		}, []string{"endpoint", "result"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolutions_total",
			Help:      "Identity resolutions by outcome",
		}, []string{"outcome"}),
		guardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_guard_decisions_total",
			Help:      "Route guard decisions",
		}, []string{"decision"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
}

func (p *Prometheus) LoginAttempt(result string) {
	p.loginAttempts.WithLabelValues(result).Inc()
}

func (p *Prometheus) ProbeResult(endpoint, result string) {
	p.probeResults.WithLabelValues(endpoint, result).Inc()
}

func (p *Prometheus) Resolution(outcome string) {
	p.resolutions.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) GuardDecision(decision string) {
	p.guardDecisions.WithLabelValues(decision).Inc()
}

func (p *Prometheus) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// OrNoop returns r, or Noop when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}
