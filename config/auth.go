package config

import (
	"fmt"
	"strings"
)

// AuthMode represents where credentials and profiles come from.
type AuthMode string

const (
	// AuthModeBackend authenticates against the booking backend.
	AuthModeBackend AuthMode = "backend"
	// AuthModeMock serves configured users in-process (for development only).
	AuthModeMock AuthMode = "mock"
)

const (
	// DefaultRoleClaimPath picks the singular claim, then the first roles entry, then the first authority.
	DefaultRoleClaimPath = "role || roles[0] || authorities[0]"
	// DefaultProfileRolePath reads the role field of a fetched profile.
	DefaultProfileRolePath = "role"

	defaultLoginPath         = "/login"
	defaultForbiddenRedirect = "/403"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "backend", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: backend, mock)", v)
	}
}

// MockAuthConfig controls the in-process auth backend.
// Used when AUTH_MODE=mock for development and testing.
type MockAuthConfig struct {
	// Users are "email:password:ROLE" triples.
	Users []string `env:"USERS" envDefault:"patient@example.com:patient:PATIENT,doctor@example.com:doctor:DOCTOR,admin@example.com:admin:ADMIN" envSeparator:","`

	// SigningKey signs the HS256 tokens handed out by the mock backend.
	SigningKey string `env:"SIGNING_KEY" envDefault:"medbook-dev-signing-key"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which auth backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"backend"`

	// RoleClaimPath is a JMESPath expression evaluated against decoded token claims.
	RoleClaimPath string `env:"AUTH_ROLE_CLAIM_PATH" envDefault:"role || roles[0] || authorities[0]"`

	// ProfileRolePath is a JMESPath expression evaluated against a fetched profile.
	ProfileRolePath string `env:"AUTH_PROFILE_ROLE_PATH" envDefault:"role"`

	// LoginPath is where unauthenticated browser requests are sent.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	// ForbiddenRedirect is where under-privileged requests are sent on every gated route.
	ForbiddenRedirect string `env:"AUTH_FORBIDDEN_REDIRECT" envDefault:"/403"`

	Mock MockAuthConfig `envPrefix:"AUTH_MOCK_"`
}

// Sanitize fills empty expressions and keeps redirect targets app-relative.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModeBackend
	}
	if a.RoleClaimPath = strings.TrimSpace(a.RoleClaimPath); a.RoleClaimPath == "" {
		a.RoleClaimPath = DefaultRoleClaimPath
	}
	if a.ProfileRolePath = strings.TrimSpace(a.ProfileRolePath); a.ProfileRolePath == "" {
		a.ProfileRolePath = DefaultProfileRolePath
	}
	a.LoginPath = relativePathOr(a.LoginPath, defaultLoginPath)
	a.ForbiddenRedirect = relativePathOr(a.ForbiddenRedirect, defaultForbiddenRedirect)
}

func relativePathOr(p, fallback string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return fallback
	}
	return p
}
