package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"net/http"
	"sync"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI         = (*StubAuthAPI)(nil)
	_ ports.ProfileAPI      = (*StubProfileAPI)(nil)
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.RoleDecoder     = StaticRoleDecoder{}
)

// StubAuthAPI answers logins with a fixed token unless LoginFunc is set.
type StubAuthAPI struct {
	LoginFunc    func(ctx context.Context, email, password string) (ports.LoginResult, error)
	RegisterFunc func(ctx context.Context, in ports.RegisterInput) error

	// Token is returned by the default Login.
	Token string

	mu         sync.Mutex
	logins     int
	registered []ports.RegisterInput
}

func (s *StubAuthAPI) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	s.mu.Lock()
	s.logins++
	s.mu.Unlock()
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, email, password)
	}
	if s.Token == "" {
		return ports.LoginResult{}, apperrors.FromStatus(http.StatusUnauthorized, "Invalid email or password")
	}
	return ports.LoginResult{Token: s.Token}, nil
}

func (s *StubAuthAPI) Register(ctx context.Context, in ports.RegisterInput) error {
	s.mu.Lock()
	s.registered = append(s.registered, in)
	s.mu.Unlock()
	if s.RegisterFunc != nil {
		return s.RegisterFunc(ctx, in)
	}
	return nil
}

// Logins returns how many times Login was called.
func (s *StubAuthAPI) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Registered returns the registration payloads received so far.
func (s *StubAuthAPI) Registered() []ports.RegisterInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.RegisterInput(nil), s.registered...)
}

// StubProfileAPI serves canned profiles by path. Paths without an entry answer 404.
type StubProfileAPI struct {
	Profiles map[string]map[string]any
	// Errors overrides the answer for a path.
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

func (s *StubProfileAPI) FetchProfile(_ context.Context, _ string, path string) (map[string]any, error) {
	s.mu.Lock()
	s.calls = append(s.calls, path)
	s.mu.Unlock()
	if err, ok := s.Errors[path]; ok {
		return nil, err
	}
	if p, ok := s.Profiles[path]; ok {
		return p, nil
	}
	return nil, apperrors.FromStatus(http.StatusNotFound, "")
}

// Calls returns the probed paths in order.
func (s *StubProfileAPI) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// MemoryCredentialStore is an in-memory credential store for unit tests.
type MemoryCredentialStore struct {
	mu      sync.Mutex
	sess    domainauth.Session
	present bool
	saves   int
	clears  int

	// LoadErr and SaveErr force failures.
	LoadErr error
	SaveErr error
}

// NewMemoryCredentialStore creates a store, optionally seeded with a session.
func NewMemoryCredentialStore(seed ...domainauth.Session) *MemoryCredentialStore {
	m := &MemoryCredentialStore{}
	if len(seed) > 0 && seed[0].HasCredential() {
		m.sess = seed[0].Normalized()
		m.present = true
	}
	return m
}

func (m *MemoryCredentialStore) Load(_ context.Context) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return domainauth.Session{}, m.LoadErr
	}
	if !m.present {
		return domainauth.Session{}, nil
	}
	return m.sess, nil
}

func (m *MemoryCredentialStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.saves++
	sess = sess.Normalized()
	if !sess.HasCredential() {
		m.sess, m.present = domainauth.Session{}, false
		return nil
	}
	// Only the persisted fields survive, as with a real store.
	m.sess = domainauth.Session{Token: sess.Token, Role: sess.Role, Profile: sess.Profile}
	m.present = true
	return nil
}

func (m *MemoryCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.sess, m.present = domainauth.Session{}, false
	return nil
}

// Stored returns the persisted session and whether the key is present.
func (m *MemoryCredentialStore) Stored() (domainauth.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, m.present
}

// Saves returns the number of successful Save calls.
func (m *MemoryCredentialStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Clears returns the number of Clear calls.
func (m *MemoryCredentialStore) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// StaticRoleDecoder decodes every token to the same role.
type StaticRoleDecoder struct {
	Role domainauth.Role
}

func (d StaticRoleDecoder) DecodeRole(string) domainauth.Role { return d.Role }

// ErrStub is a generic failure for tests that only care that an error happened.
var ErrStub = errors.New("stub failure")
