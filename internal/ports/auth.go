package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string `json:"token"`
	// Role is set by backends that echo the role next to the token.
	Role string `json:"role,omitempty"`
}

// AuthAPI exchanges credentials with the backend.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, in RegisterInput) error
}

// RegisterInput is the registration payload accepted by the backend.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// ProfileAPI fetches the principal's profile from a single endpoint.
// Failures carry the backend status as an *errors.AppError.
type ProfileAPI interface {
	FetchProfile(ctx context.Context, token, path string) (map[string]any, error)
}

// RoleDecoder extracts an advisory role from an unverified credential.
type RoleDecoder interface {
	DecodeRole(token string) domainauth.Role
}

// RoleMapper reconciles the token role with a fetched profile.
type RoleMapper interface {
	Map(tokenRole domainauth.Role, profile *domainauth.Profile) domainauth.Role
}

// CredentialStore persists the serialized session under a single key.
// Load returns a zero Session when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (domainauth.Session, error)
	Save(ctx context.Context, sess domainauth.Session) error
	Clear(ctx context.Context) error
}
