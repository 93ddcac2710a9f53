package auth

// Decision is the outcome of a route guard check.
type Decision string

const (
	DecisionAllow             Decision = "allow"
	DecisionRedirectLogin     Decision = "redirect_login"
	DecisionRedirectForbidden Decision = "redirect_forbidden"
	DecisionLoading           Decision = "loading"
)

// Requirement is the set of roles a route accepts. An empty set admits any authenticated session.
type Requirement struct {
	Roles []Role
}

// AnyAuthenticated admits every session holding a credential.
func AnyAuthenticated() Requirement { return Requirement{} }

// RequireRoles builds a requirement from raw role names.
// Unrecognized names stay in the set as RoleNone, which no session satisfies.
func RequireRoles(roles ...string) Requirement {
	req := Requirement{Roles: make([]Role, 0, len(roles))}
	for _, raw := range roles {
		req.Roles = append(req.Roles, NormalizeRole(raw))
	}
	return req
}

// Restricted reports whether the requirement names specific roles.
func (r Requirement) Restricted() bool { return len(r.Roles) > 0 }

// Permits reports whether role satisfies the requirement.
func (r Requirement) Permits(role Role) bool {
	if !r.Restricted() {
		return true
	}
	for _, want := range r.Roles {
		if want != RoleNone && want == role {
			return true
		}
	}
	return false
}

// Decide evaluates a session against a route requirement.
//
// A credential whose role is still being resolved yields DecisionLoading.
// Once nothing is in flight, an unresolved role only passes unrestricted routes.
func Decide(s Session, req Requirement) Decision {
	if !s.HasCredential() {
		return DecisionRedirectLogin
	}
	role := NormalizeRole(string(s.Role))
	if role == RoleNone {
		if s.Resolving || s.LoggingIn {
			return DecisionLoading
		}
		if req.Restricted() {
			return DecisionRedirectForbidden
		}
		return DecisionAllow
	}
	if req.Permits(role) {
		return DecisionAllow
	}
	return DecisionRedirectForbidden
}
