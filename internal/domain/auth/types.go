package auth

// Package auth contains domain-level types for credentials, roles and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence; the zero value means "no role".
type Role string

const (
	RoleNone    Role = ""
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// rolePrefix is the Spring-style authority prefix stripped during normalization.
const rolePrefix = "ROLE_"

// Roles lists the canonical roles in profile probe order.
func Roles() []Role {
	return []Role{RolePatient, RoleDoctor, RoleAdmin}
}

// NormalizeRole canonicalizes a raw role representation.
// It upper-cases, strips one leading ROLE_ prefix and maps anything outside
// the canonical set to RoleNone. It is idempotent.
func NormalizeRole(raw string) Role {
	v := strings.ToUpper(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, rolePrefix)
	switch r := Role(v); r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return r
	default:
		return RoleNone
	}
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	return NormalizeRole(string(r)) == r && r != RoleNone
}

// Profile is the authenticated principal's record as returned by the backend.
type Profile struct {
	// Endpoint is the profile path that answered.
	Endpoint string `json:"endpoint,omitempty"`
	// EndpointRole is the role implied by Endpoint, if any.
	EndpointRole Role `json:"endpointRole,omitempty"`
	// ClaimedRole is the role field found in the profile body, if any.
	ClaimedRole Role `json:"claimedRole,omitempty"`
	// Data is the raw profile body.
	Data map[string]any `json:"data,omitempty"`
}

// ID returns the backend identifier of the principal, or "".
func (p *Profile) ID() string {
	if p == nil {
		return ""
	}
	switch v := p.Data["id"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// Field returns a top-level string field of the profile body.
func (p *Profile) Field(name string) string {
	if p == nil {
		return ""
	}
	s, _ := p.Data[name].(string)
	return s
}

// Email returns the principal's email address, or "".
func (p *Profile) Email() string { return p.Field("email") }

// DisplayName joins first and last name, falling back to the email address.
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.Field("firstName") + " " + p.Field("lastName"))
	if name == "" {
		return p.Email()
	}
	return name
}

// State is the externally visible phase of a Session.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateResolving     State = "resolving"
	StateAuthenticated State = "authenticated"
	StateRoleOnly      State = "authenticated_role_only"
	StateDegraded      State = "degraded"
)

// Session is the client-side view of who is signed in.
// Only Token, Role and Profile are persisted.
type Session struct {
	Token   string   `json:"token,omitempty"`
	Role    Role     `json:"role,omitempty"`
	Profile *Profile `json:"user,omitempty"`

	// Resolving is set while an identity resolution for Token is in flight.
	Resolving bool `json:"-"`
	// LoggingIn is set while a login call is in flight.
	LoggingIn bool `json:"-"`
	// LastError is the last user-visible failure message.
	LastError string `json:"-"`
}

// HasCredential reports whether a bearer token is present.
func (s Session) HasCredential() bool { return s.Token != "" }

// Normalized enforces that a session without a credential carries no role or profile,
// and that Role is canonical.
func (s Session) Normalized() Session {
	if !s.HasCredential() {
		return Session{LoggingIn: s.LoggingIn, LastError: s.LastError}
	}
	s.Role = NormalizeRole(string(s.Role))
	return s
}

// State derives the lifecycle phase from the session fields.
func (s Session) State() State {
	switch {
	case !s.HasCredential():
		return StateAnonymous
	case s.Resolving:
		return StateResolving
	case s.Role == RoleNone:
		return StateDegraded
	case s.Profile == nil:
		return StateRoleOnly
	default:
		return StateAuthenticated
	}
}
