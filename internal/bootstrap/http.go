package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/medbook/medbook-ui/config"
	httpx "github.com/medbook/medbook-ui/internal/http"
)

// resolutionSettle bounds how long a guarded request waits on an in-flight identity resolution.
const resolutionSettle = 2 * time.Second

// BuildHTTPHandler builds the router for the given services.
func BuildHTTPHandler(cfg config.AppConfig, svcs *ServiceContainer, logger *slog.Logger) http.Handler {
	rs := httpx.RouterServices{
		Auth:             svcs.Auth,
		Booking:          svcs.Booking,
		LoginPath:        cfg.Auth.LoginPath,
		ForbiddenPath:    cfg.Auth.ForbiddenRedirect,
		ResolutionSettle: resolutionSettle,
		LoginRate:        cfg.HTTP.LoginRate,
		LoginBurst:       cfg.HTTP.LoginBurst,
		Logger:           logger,
	}
	if svcs.Metrics != nil {
		rs.Metrics = svcs.Metrics
		rs.MetricsHandler = svcs.Metrics.Handler()
		rs.MetricsPath = cfg.Observability.Metrics.Path
	}
	return httpx.NewRouter(rs)
}

// NewHTTPServer creates the server without starting it.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8081"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(cfg.Context, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
