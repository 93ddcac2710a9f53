package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/domain/booking"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	obserrors "github.com/medbook/medbook-ui/internal/observability/errors"
	"github.com/medbook/medbook-ui/internal/observability/metrics"
	"github.com/medbook/medbook-ui/internal/ports"
)

// Resolver finds the profile serving a credential. *IdentityResolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, token string, hint domainauth.Role) (*domainauth.Profile, error)
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Auth     ports.AuthAPI
	Resolver Resolver
	Decoder  ports.RoleDecoder
	Mapper   ports.RoleMapper
	Store    ports.CredentialStore
	Metrics  metrics.Recorder // optional
	Logger   *slog.Logger     // optional
}

// AuthService owns the session state machine. It is the only writer of the session;
// readers get copies from Session.
//
// Each credential change bumps a generation counter and starts a background identity
// resolution. Completions from an older generation are discarded.
type AuthService struct {
	auth     ports.AuthAPI
	resolver Resolver
	decoder  ports.RoleDecoder
	mapper   ports.RoleMapper
	store    ports.CredentialStore
	metrics  metrics.Recorder
	logger   *slog.Logger

	mu     sync.Mutex
	sess   domainauth.Session
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	// loginSeq moves on every login start, logout and credential change. A login whose
	// sequence moved while the backend call was pending is not applied.
	loginSeq uint64
}

// NewAuthService constructs a new AuthService in the anonymous state. Call Init to restore
// a persisted session.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		auth:     opts.Auth,
		resolver: opts.Resolver,
		decoder:  opts.Decoder,
		mapper:   opts.Mapper,
		store:    opts.Store,
		metrics:  metrics.OrNoop(opts.Metrics),
		logger:   logger.With("component", "auth"),
	}
}

// Init restores the persisted session. A stored credential is re-resolved in the background;
// its stored role and profile stay visible meanwhile.
func (s *AuthService) Init(ctx context.Context) error {
	stored, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	stored = stored.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !stored.HasCredential() {
		return nil
	}
	role := s.decoder.DecodeRole(stored.Token)
	if role == domainauth.RoleNone {
		role = stored.Role
	}
	s.sess = domainauth.Session{Token: stored.Token, Role: role, Profile: stored.Profile}
	s.startResolutionLocked(ctx, stored.Token, role)
	s.logger.InfoContext(ctx, "session restored", "role", role)
	return nil
}

// Login exchanges credentials, stores the token and returns the role decoded from it
// without waiting for the profile. On failure the previous session is kept and
// LastError is set. A login overtaken by a logout or a newer credential while the
// backend call was pending returns ErrLoginSuperseded and changes nothing.
func (s *AuthService) Login(ctx context.Context, email, password string) (domainauth.Role, error) {
	s.mu.Lock()
	s.loginSeq++
	seq := s.loginSeq
	s.sess.LoggingIn = true
	s.sess.LastError = ""
	s.mu.Unlock()

	res, err := s.auth.Login(ctx, strings.TrimSpace(email), password)

	s.mu.Lock()
	if seq != s.loginSeq {
		s.mu.Unlock()
		s.metrics.LoginAttempt("superseded")
		s.logger.InfoContext(ctx, "discarding superseded login")
		return domainauth.RoleNone, ErrLoginSuperseded
	}
	if err != nil {
		s.sess.LoggingIn = false
		s.sess.LastError = LoginErrorMessage(err)
		s.mu.Unlock()
		s.metrics.LoginAttempt("failure")
		s.logger.InfoContext(ctx, "login failed", "error_class", obserrors.Classify(err))
		return domainauth.RoleNone, err
	}

	role := s.decoder.DecodeRole(res.Token)
	if role == domainauth.RoleNone {
		role = domainauth.NormalizeRole(res.Role)
	}
	s.setCredentialLocked(ctx, res.Token, role)
	s.mu.Unlock()

	s.metrics.LoginAttempt("success")
	s.logger.InfoContext(ctx, "login succeeded", "role", role)
	return role, nil
}

// Register validates the signup form, creates the account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, reg booking.Registration) (domainauth.Role, error) {
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return domainauth.RoleNone, err
	}
	err := s.auth.Register(ctx, ports.RegisterInput{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Password:  reg.Password,
		Role:      reg.Role,
	})
	if err != nil {
		return domainauth.RoleNone, fmt.Errorf("register: %w", err)
	}
	return s.Login(ctx, reg.Email, reg.Password)
}

// SetCredential installs token as the current credential and starts resolution.
// An empty token logs out.
func (s *AuthService) SetCredential(ctx context.Context, token string) domainauth.Role {
	token = strings.TrimSpace(token)
	if token == "" {
		s.Logout(ctx)
		return domainauth.RoleNone
	}
	role := s.decoder.DecodeRole(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCredentialLocked(ctx, token, role)
	return role
}

// Logout drops the credential and clears the store. It makes no network call.
func (s *AuthService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked(ctx)
	s.logger.InfoContext(ctx, "logged out")
}

// Invalidate tears the session down after the backend rejected token with a 401.
// It is a no-op when token is no longer the current credential.
func (s *AuthService) Invalidate(ctx context.Context, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.sess.Token != token {
		return false
	}
	s.teardownLocked(ctx)
	s.logger.InfoContext(ctx, "session invalidated by backend")
	return true
}

// Session returns a copy of the current session.
func (s *AuthService) Session() domainauth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sess
	if out.Profile != nil {
		p := *out.Profile
		out.Profile = &p
	}
	return out
}

// Wait blocks until the most recent resolution has been applied or discarded.
func (s *AuthService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any in-flight resolution. The session itself is left as is.
func (s *AuthService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
}

func (s *AuthService) setCredentialLocked(ctx context.Context, token string, role domainauth.Role) {
	s.loginSeq++
	s.sess = domainauth.Session{Token: token, Role: role}
	s.persistLocked(ctx)
	s.startResolutionLocked(ctx, token, role)
}

func (s *AuthService) teardownLocked(ctx context.Context) {
	s.loginSeq++
	s.supersedeLocked()
	s.sess = domainauth.Session{}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "clear stored session failed", "error", err)
	}
}

// supersedeLocked invalidates whatever resolution is in flight.
func (s *AuthService) supersedeLocked() uint64 {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return s.gen
}

func (s *AuthService) startResolutionLocked(ctx context.Context, token string, hint domainauth.Role) {
	gen := s.supersedeLocked()
	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.sess.Resolving = true

	go func() {
		defer close(done)
		defer cancel()
		profile, err := s.resolver.Resolve(rctx, token, hint)
		s.applyResolution(rctx, gen, token, hint, profile, err)
	}()
}

func (s *AuthService) applyResolution(
	ctx context.Context,
	gen uint64,
	token string,
	hint domainauth.Role,
	profile *domainauth.Profile,
	err error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.sess.Token != token {
		s.metrics.Resolution("stale")
		s.logger.DebugContext(ctx, "discarding stale identity resolution", "generation", gen)
		return
	}
	s.cancel = nil
	s.sess.Resolving = false

	switch {
	case err == nil:
		s.sess.Profile = profile
		s.sess.Role = s.mapper.Map(hint, profile)
		s.persistLocked(ctx)
		if s.sess.Role == domainauth.RoleNone {
			s.logger.WarnContext(ctx, "profile resolved without a recognizable role", "endpoint", profile.Endpoint)
		}
	case errors.Is(err, ErrSessionInvalid):
		s.logger.InfoContext(ctx, "credential rejected during identity resolution")
		s.sess = domainauth.Session{}
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.logger.WarnContext(ctx, "clear stored session failed", "error", clearErr)
		}
	case errors.Is(err, ErrIdentityUnresolved):
		s.logger.InfoContext(ctx, "no profile endpoint served the credential", "role", hint)
		s.sess.Profile = nil
		s.sess.Role = hint
		s.persistLocked(ctx)
	default:
		s.logger.WarnContext(ctx, "identity resolution failed, keeping session",
			"error", err, "error_class", obserrors.Classify(err))
	}
}

func (s *AuthService) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, s.sess); err != nil {
		s.logger.WarnContext(ctx, "persist session failed", "error", err)
	}
}

// LoginErrorMessage turns a login failure into text fit for the login form.
func LoginErrorMessage(err error) string {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return ""
	case apperrors.IsCanceled(err):
		return "Sign-in was cancelled."
	case apperrors.IsUnauthorized(err):
		return "Invalid email or password."
	case apperrors.IsTransport(err), apperrors.IsTimeout(err), apperrors.IsUnavailable(err):
		return "The server is unavailable. Please try again later."
	case errors.As(err, &appErr) && appErr.Status != 0 && appErr.Message != "":
		return appErr.Message
	default:
		return "Login failed. Please try again."
	}
}
