package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/medbook/medbook-ui/config"
)

// RunOptions configures Run.
type RunOptions struct {
	Config config.AppConfig
	Logger *slog.Logger
	// Listener overrides Config.HTTP.Addr; tests pass a pre-bound listener.
	Listener net.Listener
	// Ready, when set, receives the bound address once the server accepts connections.
	Ready chan<- string
}

// Run serves the web client until ctx is canceled, then drains in-flight requests.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svcs, err := NewServices(ctx, ServiceDeps{Config: opts.Config, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := svcs.Close(); closeErr != nil {
			logger.Warn("close services", "error", closeErr)
		}
	}()

	// A session that cannot be restored starts anonymous rather than blocking startup.
	if initErr := svcs.Auth.Init(ctx); initErr != nil {
		logger.Warn("restore session failed; starting signed out", "error", initErr)
	}

	server := NewHTTPServer(opts.Config.HTTP.Addr, BuildHTTPHandler(opts.Config, svcs, logger))
	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", server.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", server.Addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if opts.Ready != nil {
			opts.Ready <- ln.Addr().String()
		}
		if serveErr := server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveErr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(gctx),
			Server:  server,
			Logger:  logger,
		})
	})
	return g.Wait()
}
