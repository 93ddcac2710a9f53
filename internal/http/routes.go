package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/observability/metrics"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth    SessionController
	Booking BookingController

	// Optional: metrics recorder and the handler exposing it.
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	MetricsPath    string

	LoginPath     string
	ForbiddenPath string
	// ResolutionSettle bounds how long guarded routes wait on an in-flight identity resolution.
	ResolutionSettle time.Duration
	// LoginRate is the per-client login attempts per second; zero disables throttling.
	LoginRate  float64
	LoginBurst int

	Logger *slog.Logger // Logger for request and handler errors (optional)
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	guard := NewGuard(GuardOptions{
		Sessions:      services.Auth,
		LoginPath:     services.LoginPath,
		ForbiddenPath: services.ForbiddenPath,
		Settle:        services.ResolutionSettle,
		Metrics:       services.Metrics,
		Logger:        logger,
	})
	authHandlers := &AuthHandlers{Svc: services.Auth, LoginPath: guard.loginPath, Logger: logger}
	bookingHandlers := &BookingHandlers{Svc: services.Booking, Logger: logger}
	limiter := newLoginLimiter(services.LoginRate, services.LoginBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recover(logger))
	r.Use(Logging(logger))
	r.Use(Metrics(services.Metrics))

	r.Get("/healthz", healthHandler)
	r.Head("/healthz", healthHandler)
	if services.MetricsHandler != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, services.MetricsHandler)
	}

	r.Get("/", authHandlers.Home)
	r.Get(guard.loginPath, authHandlers.LoginView)
	r.With(limiter.Middleware).Post(guard.loginPath, authHandlers.Login)
	r.With(limiter.Middleware).Post("/signup", authHandlers.Signup)
	r.Post("/logout", authHandlers.Logout)
	r.Get("/auth/status", authHandlers.Status)
	r.Get(guard.forbiddenPath, authHandlers.Forbidden)

	// The directory is public; a signed-in caller's token is forwarded when present.
	r.Get("/doctors", bookingHandlers.SearchDoctors)
	r.Get("/doctors/{id}", bookingHandlers.GetDoctor)

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(domainauth.RequireRoles(string(domainauth.RolePatient))))
		r.Get("/patient", bookingHandlers.PatientDashboard)
		r.Route("/me", func(r chi.Router) {
			r.Get("/appointments", bookingHandlers.MyAppointments)
			r.Post("/appointments", bookingHandlers.Book)
			r.Delete("/appointments/{id}", bookingHandlers.CancelAppointment)
			r.Get("/profile", bookingHandlers.MyProfile)
			r.Put("/profile", bookingHandlers.UpdateMyProfile)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(domainauth.RequireRoles(string(domainauth.RoleDoctor))))
		r.Get("/doctor", bookingHandlers.DoctorDashboard)
		r.Route("/doctor/slots", func(r chi.Router) {
			r.Get("/", bookingHandlers.MySlots)
			r.Post("/", bookingHandlers.CreateSlots)
			r.Put("/{id}", bookingHandlers.UpdateSlot)
			r.Delete("/{id}", bookingHandlers.DeleteSlot)
		})
		r.Get("/doctor/appointments", bookingHandlers.DoctorAppointments)
		r.Post("/doctor/appointments/{id}/approve", bookingHandlers.Approve)
		r.Post("/doctor/appointments/{id}/reject", bookingHandlers.Reject)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(domainauth.RequireRoles(string(domainauth.RoleAdmin))))
		r.Get("/admin", bookingHandlers.AdminDashboard)
		r.Get("/admin/appointments", bookingHandlers.Appointments)
		r.Delete("/admin/appointments/{id}", bookingHandlers.DeleteAppointment)
	})

	return r
}
