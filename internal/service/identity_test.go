package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/mocks"
	"github.com/medbook/medbook-ui/internal/observability/metrics"
)

func TestCandidatePaths(t *testing.T) {
	tests := []struct {
		name string
		hint domainauth.Role
		want []string
	}{
		{"no hint", domainauth.RoleNone, []string{PatientProfilePath, DoctorProfilePath, AdminProfilePath, UserProfilePath, AuthProfilePath}},
		{"patient", domainauth.RolePatient, []string{PatientProfilePath, DoctorProfilePath, AdminProfilePath, UserProfilePath, AuthProfilePath}},
		{"doctor first", domainauth.RoleDoctor, []string{DoctorProfilePath, PatientProfilePath, AdminProfilePath, UserProfilePath, AuthProfilePath}},
		{"admin first", domainauth.RoleAdmin, []string{AdminProfilePath, PatientProfilePath, DoctorProfilePath, UserProfilePath, AuthProfilePath}},
		{"raw hint is normalized", domainauth.Role("role_admin"), []string{AdminProfilePath, PatientProfilePath, DoctorProfilePath, UserProfilePath, AuthProfilePath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidatePaths(tt.hint))
		})
	}
}

func TestEndpointRole(t *testing.T) {
	assert.Equal(t, domainauth.RoleDoctor, EndpointRole(DoctorProfilePath))
	assert.Equal(t, domainauth.RoleNone, EndpointRole(UserProfilePath))
	assert.Equal(t, PatientProfilePath, ProfilePath(domainauth.RolePatient))
	assert.Empty(t, ProfilePath(domainauth.RoleNone))
}

type recordingMetrics struct {
	metrics.Noop
	mu          sync.Mutex
	probes      []string
	resolutions []string
	logins      []string
}

func (r *recordingMetrics) ProbeResult(endpoint, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes = append(r.probes, endpoint+":"+result)
}

func (r *recordingMetrics) Resolution(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions = append(r.resolutions, outcome)
}

func (r *recordingMetrics) LoginAttempt(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, result)
}

func (r *recordingMetrics) Probes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.probes...)
}

func (r *recordingMetrics) Resolutions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.resolutions...)
}

func (r *recordingMetrics) Logins() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.logins...)
}

func statusErr(code int) error { return apperrors.FromStatus(code, "") }

func TestIdentityResolver_HintedEndpointServes(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileAPI(ctrl)
	profiles.EXPECT().FetchProfile(gomock.Any(), "tok", DoctorProfilePath).
		Return(map[string]any{"id": "7", "role": "ROLE_DOCTOR"}, nil)

	r := NewIdentityResolver(IdentityResolverOptions{Profiles: profiles})
	p, err := r.Resolve(context.Background(), "tok", domainauth.RoleDoctor)

	require.NoError(t, err)
	assert.Equal(t, DoctorProfilePath, p.Endpoint)
	assert.Equal(t, domainauth.RoleDoctor, p.EndpointRole)
	assert.Equal(t, domainauth.RoleDoctor, p.ClaimedRole)
	assert.Equal(t, "7", p.ID())
}

func TestIdentityResolver_SkipsForbiddenNotFoundAndServerErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileAPI(ctrl)
	gomock.InOrder(
		profiles.EXPECT().FetchProfile(gomock.Any(), "tok", PatientProfilePath).Return(nil, statusErr(http.StatusForbidden)),
		profiles.EXPECT().FetchProfile(gomock.Any(), "tok", DoctorProfilePath).Return(nil, statusErr(http.StatusNotFound)),
		profiles.EXPECT().FetchProfile(gomock.Any(), "tok", AdminProfilePath).Return(nil, statusErr(http.StatusBadGateway)),
		profiles.EXPECT().FetchProfile(gomock.Any(), "tok", UserProfilePath).Return(map[string]any{"id": "1"}, nil),
	)

	rec := &recordingMetrics{}
	r := NewIdentityResolver(IdentityResolverOptions{Profiles: profiles, Metrics: rec})
	p, err := r.Resolve(context.Background(), "tok", domainauth.RolePatient)

	require.NoError(t, err)
	assert.Equal(t, UserProfilePath, p.Endpoint)
	assert.Equal(t, domainauth.RoleNone, p.EndpointRole)
	assert.Equal(t, domainauth.RoleNone, p.ClaimedRole)
	assert.Equal(t, []string{
		PatientProfilePath + ":skipped",
		DoctorProfilePath + ":skipped",
		AdminProfilePath + ":skipped",
		UserProfilePath + ":ok",
	}, rec.Probes())
	assert.Equal(t, []string{"resolved"}, rec.Resolutions())
}

func TestIdentityResolver_UnauthorizedStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileAPI(ctrl)
	gomock.InOrder(
		profiles.EXPECT().FetchProfile(gomock.Any(), "tok", PatientProfilePath).Return(nil, statusErr(http.StatusForbidden)),
		profiles.EXPECT().FetchProfile(gomock.Any(), "tok", DoctorProfilePath).Return(nil, statusErr(http.StatusUnauthorized)),
	)

	r := NewIdentityResolver(IdentityResolverOptions{Profiles: profiles})
	_, err := r.Resolve(context.Background(), "tok", domainauth.RoleNone)

	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestIdentityResolver_UnexpectedFailurePropagates(t *testing.T) {
	transport := apperrors.FromTransport(errors.New("connection refused"))
	tests := []struct {
		name string
		err  error
	}{
		{"transport", transport},
		{"conflict status", statusErr(http.StatusConflict)},
		{"bad request", statusErr(http.StatusBadRequest)},
		{"plain error", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			profiles := mocks.NewMockProfileAPI(ctrl)
			profiles.EXPECT().FetchProfile(gomock.Any(), "tok", PatientProfilePath).Return(nil, tt.err)

			r := NewIdentityResolver(IdentityResolverOptions{Profiles: profiles})
			_, err := r.Resolve(context.Background(), "tok", domainauth.RolePatient)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, ErrSessionInvalid)
			assert.NotErrorIs(t, err, ErrIdentityUnresolved)
		})
	}
}

func TestIdentityResolver_Exhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileAPI(ctrl)
	profiles.EXPECT().FetchProfile(gomock.Any(), "tok", gomock.Any()).Return(nil, statusErr(http.StatusNotFound)).Times(5)

	r := NewIdentityResolver(IdentityResolverOptions{Profiles: profiles})
	_, err := r.Resolve(context.Background(), "tok", domainauth.RoleAdmin)

	require.ErrorIs(t, err, ErrIdentityUnresolved)
}

func TestIdentityResolver_EmptyTokenIsInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileAPI(ctrl)

	r := NewIdentityResolver(IdentityResolverOptions{Profiles: profiles})
	_, err := r.Resolve(context.Background(), "", domainauth.RolePatient)

	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestIdentityResolver_CanceledContextStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileAPI(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	profiles.EXPECT().FetchProfile(gomock.Any(), "tok", PatientProfilePath).
		DoAndReturn(func(context.Context, string, string) (map[string]any, error) {
			cancel()
			return nil, statusErr(http.StatusNotFound)
		})

	r := NewIdentityResolver(IdentityResolverOptions{Profiles: profiles})
	_, err := r.Resolve(ctx, "tok", domainauth.RolePatient)

	require.ErrorIs(t, err, context.Canceled)
}

func TestSkippable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"forbidden", apperrors.FromStatus(http.StatusForbidden, "Access Denied"), true},
		{"wrapped not found", fmt.Errorf("fetch: %w", apperrors.FromStatus(http.StatusNotFound, "")), true},
		{"server error", apperrors.FromStatus(http.StatusServiceUnavailable, ""), true},
		{"unavailable without a response", &apperrors.AppError{Code: apperrors.ErrCodeUnavailable, Message: "down"}, false},
		{"conflict", apperrors.FromStatus(http.StatusConflict, ""), false},
		{"transport", apperrors.FromTransport(errors.New("connection refused")), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, skippable(tt.err))
		})
	}
}
