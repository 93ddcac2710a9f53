package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	obserrors "github.com/medbook/medbook-ui/internal/observability/errors"
	"github.com/medbook/medbook-ui/internal/observability/metrics"
	"github.com/medbook/medbook-ui/internal/ports"
)

var (
	// ErrSessionInvalid means the backend rejected the credential outright.
	ErrSessionInvalid = errors.New("session credential rejected")
	// ErrIdentityUnresolved means no profile endpoint would serve the credential.
	ErrIdentityUnresolved = errors.New("identity could not be resolved")
	// ErrLoginSuperseded means a logout or a newer login overtook a pending login.
	ErrLoginSuperseded = apperrors.Wrap(errors.New("login superseded"), apperrors.ErrCodeCanceled, "sign-in superseded")
)

// Profile endpoints, by the role they serve.
const (
	PatientProfilePath = "/api/patients/me"
	DoctorProfilePath  = "/api/doctors/me"
	AdminProfilePath   = "/api/admins/me"
	UserProfilePath    = "/api/users/me"
	AuthProfilePath    = "/api/auth/me"
)

var roleProfilePaths = map[domainauth.Role]string{
	domainauth.RolePatient: PatientProfilePath,
	domainauth.RoleDoctor:  DoctorProfilePath,
	domainauth.RoleAdmin:   AdminProfilePath,
}

var genericProfilePaths = []string{UserProfilePath, AuthProfilePath}

// ProfilePath returns the role-specific profile endpoint, or "" for RoleNone.
func ProfilePath(role domainauth.Role) string {
	return roleProfilePaths[domainauth.NormalizeRole(string(role))]
}

// EndpointRole returns the role a profile endpoint implies, or RoleNone for generic endpoints.
func EndpointRole(path string) domainauth.Role {
	for role, p := range roleProfilePaths {
		if p == path {
			return role
		}
	}
	return domainauth.RoleNone
}

// CandidatePaths lists the profile endpoints to probe: the hinted role's endpoint first,
// then every role endpoint, then the generic ones, without duplicates.
func CandidatePaths(hint domainauth.Role) []string {
	out := make([]string, 0, len(roleProfilePaths)+len(genericProfilePaths)+1)
	seen := make(map[string]struct{}, cap(out))
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	add(ProfilePath(hint))
	for _, role := range domainauth.Roles() {
		add(roleProfilePaths[role])
	}
	for _, p := range genericProfilePaths {
		add(p)
	}
	return out
}

// ProfileRoleExtractor reads the role a profile body claims for itself.
type ProfileRoleExtractor interface {
	ProfileRole(data map[string]any) domainauth.Role
}

type roleFieldExtractor struct{}

func (roleFieldExtractor) ProfileRole(data map[string]any) domainauth.Role {
	s, _ := data["role"].(string)
	return domainauth.NormalizeRole(s)
}

// IdentityResolverOptions groups dependencies for IdentityResolver.
type IdentityResolverOptions struct {
	Profiles     ports.ProfileAPI
	ProfileRoles ProfileRoleExtractor // optional; reads the "role" field when nil
	Metrics      metrics.Recorder     // optional
	Logger       *slog.Logger         // optional
}

// IdentityResolver finds the profile endpoint that serves a credential.
// It has no side effects on session state.
type IdentityResolver struct {
	profiles ports.ProfileAPI
	roles    ProfileRoleExtractor
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewIdentityResolver constructs a new IdentityResolver.
func NewIdentityResolver(opts IdentityResolverOptions) *IdentityResolver {
	roles := opts.ProfileRoles
	if roles == nil {
		roles = roleFieldExtractor{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityResolver{
		profiles: opts.Profiles,
		roles:    roles,
		metrics:  metrics.OrNoop(opts.Metrics),
		logger:   logger.With("component", "identity_resolver"),
	}
}

// Resolve probes CandidatePaths(hint) in order.
//
// A 401 stops with ErrSessionInvalid. A 403, 404 or 5xx moves on to the next candidate.
// Anything else, including transport failures, stops and is returned as is.
// Exhausting every candidate yields ErrIdentityUnresolved.
func (r *IdentityResolver) Resolve(ctx context.Context, token string, hint domainauth.Role) (*domainauth.Profile, error) {
	if token == "" {
		r.metrics.Resolution("invalid")
		return nil, ErrSessionInvalid
	}

	for _, path := range CandidatePaths(hint) {
		if err := ctx.Err(); err != nil {
			r.metrics.Resolution("canceled")
			return nil, err
		}

		data, err := r.profiles.FetchProfile(ctx, token, path)
		if err == nil {
			r.metrics.ProbeResult(path, "ok")
			r.metrics.Resolution("resolved")
			return &domainauth.Profile{
				Endpoint:     path,
				EndpointRole: EndpointRole(path),
				ClaimedRole:  r.roles.ProfileRole(data),
				Data:         data,
			}, nil
		}

		switch {
		case apperrors.IsUnauthorized(err):
			r.metrics.ProbeResult(path, "unauthorized")
			r.metrics.Resolution("invalid")
			return nil, fmt.Errorf("probe %s: %w", path, ErrSessionInvalid)
		case skippable(err):
			r.metrics.ProbeResult(path, "skipped")
			r.logger.DebugContext(ctx, "profile endpoint unavailable for credential",
				"path", path, "status", apperrors.GetStatus(err))
		default:
			r.metrics.ProbeResult(path, "error")
			r.metrics.Resolution("error")
			r.logger.WarnContext(ctx, "profile probe failed",
				"path", path, "error", err, "error_class", obserrors.Classify(err))
			return nil, fmt.Errorf("probe %s: %w", path, err)
		}
	}

	r.metrics.Resolution("unresolved")
	return nil, ErrIdentityUnresolved
}

// skippable reports whether a probe failure means the endpoint does not serve this
// credential, as opposed to the backend being unreachable.
func skippable(err error) bool {
	if apperrors.IsForbidden(err) || apperrors.IsNotFound(err) {
		return true
	}
	return apperrors.IsUnavailable(err) && apperrors.GetStatus(err) >= http.StatusInternalServerError
}
