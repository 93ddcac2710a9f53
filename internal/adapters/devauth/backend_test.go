package devauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/medbook-ui/internal/adapters/claims"
	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/ports"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	users, err := ParseUsers([]string{
		"pat@example.com:secret1:patient",
		"doc@example.com:secret2:ROLE_DOCTOR",
		"adm@example.com:secret3:ADMIN",
	})
	require.NoError(t, err)
	b, err := NewBackend(Config{Users: users, SigningKey: "test-key"})
	require.NoError(t, err)
	return b
}

func TestParseUsers(t *testing.T) {
	users, err := ParseUsers([]string{" a@b.c:pw:ROLE_ADMIN ", ""})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.c", users[0].Email)
	assert.Equal(t, domainauth.RoleAdmin, users[0].Role)

	_, err = ParseUsers([]string{"a@b.c:pw"})
	require.Error(t, err)

	_, err = ParseUsers([]string{"a@b.c:pw:NURSE"})
	require.Error(t, err)
}

func TestNewBackend_GeneratesKey(t *testing.T) {
	b, err := NewBackend(Config{})
	require.NoError(t, err)
	assert.Len(t, b.key, 32)
	assert.Equal(t, 8*time.Hour, b.ttl)
}

func TestLogin_TokenCarriesRole(t *testing.T) {
	b := newTestBackend(t)

	res, err := b.Login(context.Background(), "DOC@example.com", "secret2")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleDoctor, claims.MustDecoder().DecodeRole(res.Token))
}

func TestLogin_BadCredentials(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.Login(context.Background(), "pat@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = b.Login(context.Background(), "nobody@example.com", "secret1")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestFetchProfile(t *testing.T) {
	b := newTestBackend(t)
	res, err := b.Login(context.Background(), "pat@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		path     string
		wantCode apperrors.ErrorCode
	}{
		{"own role endpoint", res.Token, "/api/patients/me", ""},
		{"generic endpoint", "Bearer " + res.Token, "/api/users/me", ""},
		{"other role endpoint", res.Token, "/api/doctors/me", apperrors.ErrCodeForbidden},
		{"unknown endpoint", res.Token, "/api/nurses/me", apperrors.ErrCodeNotFound},
		{"garbage token", "not-a-token", "/api/patients/me", apperrors.ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := b.FetchProfile(context.Background(), tt.token, tt.path)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "pat@example.com", data["email"])
				assert.Equal(t, "PATIENT", data["role"])
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
		})
	}
}

func TestFetchProfile_ExpiredToken(t *testing.T) {
	b := newTestBackend(t)
	b.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	res, err := b.Login(context.Background(), "adm@example.com", "secret3")
	require.NoError(t, err)

	b.now = time.Now
	_, err = b.FetchProfile(context.Background(), res.Token, "/api/admins/me")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestFetchProfile_ForeignSignature(t *testing.T) {
	b := newTestBackend(t)
	other, err := NewBackend(Config{
		Users:      []User{{Email: "pat@example.com", Password: "x", Role: domainauth.RolePatient}},
		SigningKey: "other-key",
	})
	require.NoError(t, err)
	res, err := other.Login(context.Background(), "pat@example.com", "x")
	require.NoError(t, err)

	_, err = b.FetchProfile(context.Background(), res.Token, "/api/patients/me")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestRegister(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	err := b.Register(ctx, ports.RegisterInput{FirstName: "Ann", Email: "ann@example.com", Password: "secret9", Role: "PATIENT"})
	require.NoError(t, err)

	res, err := b.Login(ctx, "ann@example.com", "secret9")
	require.NoError(t, err)
	data, err := b.FetchProfile(ctx, res.Token, "/api/patients/me")
	require.NoError(t, err)
	assert.Equal(t, "Ann", data["firstName"])

	err = b.Register(ctx, ports.RegisterInput{Email: "ann@example.com", Password: "x", Role: "PATIENT"})
	assert.True(t, apperrors.IsConflict(err))

	err = b.Register(ctx, ports.RegisterInput{Email: "doc2@example.com", Password: "x", Role: "DOCTOR"})
	assert.True(t, apperrors.IsValidation(err))
}
