package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/medbook/medbook-ui/config"
	"github.com/medbook/medbook-ui/internal/adapters/authroles"
	"github.com/medbook/medbook-ui/internal/adapters/claims"
	"github.com/medbook/medbook-ui/internal/observability/metrics"
	"github.com/medbook/medbook-ui/internal/service"
)

// ServiceContainer holds the wired services for one process.
type ServiceContainer struct {
	Auth    *service.AuthService
	Booking *service.BookingService
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Prometheus

	closeStore func() error
}

// ServiceDeps contains dependencies for building services.
type ServiceDeps struct {
	Config config.AppConfig
	Logger *slog.Logger
	// Backends overrides the backends built from Config.
	Backends *Backends
}

// NewServices wires the session controller and booking service. The session is
// not restored here; callers run Auth.Init once they are ready to serve.
func NewServices(ctx context.Context, deps ServiceDeps) (*ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	var backends Backends
	if deps.Backends != nil {
		backends = *deps.Backends
	} else {
		b, err := BuildBackends(cfg, logger)
		if err != nil {
			return nil, err
		}
		backends = b
	}

	decoder, err := claims.NewDecoder(claims.DecoderOptions{
		RolePath:        cfg.Auth.RoleClaimPath,
		ProfileRolePath: cfg.Auth.ProfileRolePath,
	})
	if err != nil {
		return nil, fmt.Errorf("claims decoder: %w", err)
	}

	store, closeStore, err := BuildCredentialStore(ctx, CredentialStoreConfig{
		Session: cfg.Session,
		Redis:   cfg.Redis,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	c := &ServiceContainer{closeStore: closeStore}
	var rec metrics.Recorder = metrics.Noop{}
	if cfg.Observability.Metrics.Enabled {
		c.Metrics = metrics.NewPrometheus()
		rec = c.Metrics
	}

	c.Auth = service.NewAuthService(service.AuthServiceOptions{
		Auth: backends.Auth,
		Resolver: service.NewIdentityResolver(service.IdentityResolverOptions{
			Profiles:     backends.Profiles,
			ProfileRoles: decoder,
			Metrics:      rec,
			Logger:       logger,
		}),
		Decoder: decoder,
		Mapper:  authroles.ProfileRoleMapper{},
		Store:   store,
		Metrics: rec,
		Logger:  logger,
	})
	c.Booking = service.NewBookingService(service.BookingServiceOptions{
		API:      backends.Booking,
		Sessions: c.Auth,
		Logger:   logger,
	})
	return c, nil
}

// Close stops background resolution and releases the session store.
func (c *ServiceContainer) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Auth != nil {
		c.Auth.Close()
	}
	if c.closeStore != nil {
		errs = append(errs, c.closeStore())
	}
	return errors.Join(errs...)
}
