package ports_test

import (
	"testing"

	"github.com/medbook/medbook-ui/internal/adapters/authroles"
	"github.com/medbook/medbook-ui/internal/adapters/backend"
	"github.com/medbook/medbook-ui/internal/adapters/claims"
	"github.com/medbook/medbook-ui/internal/adapters/devauth"
	"github.com/medbook/medbook-ui/internal/adapters/filestore"
	"github.com/medbook/medbook-ui/internal/adapters/redis"
	"github.com/medbook/medbook-ui/internal/mocks"
	mockauth "github.com/medbook/medbook-ui/internal/mocks/auth"
	"github.com/medbook/medbook-ui/internal/ports"
)

// This test only verifies that adapters and mocks conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthAPI = (*backend.Client)(nil)
	var _ ports.ProfileAPI = (*backend.Client)(nil)
	var _ ports.BookingAPI = (*backend.Client)(nil)
	var _ ports.AuthAPI = (*devauth.Backend)(nil)
	var _ ports.ProfileAPI = (*devauth.Backend)(nil)
	var _ ports.RoleDecoder = (*claims.Decoder)(nil)
	var _ ports.RoleMapper = (*authroles.ProfileRoleMapper)(nil)
	var _ ports.CredentialStore = (*filestore.Store)(nil)
	var _ ports.CredentialStore = (*redis.CredentialStore)(nil)

	var _ ports.CredentialStore = (*mockauth.MemoryCredentialStore)(nil)
	var _ ports.AuthAPI = (*mockauth.StubAuthAPI)(nil)
	var _ ports.ProfileAPI = (*mocks.MockProfileAPI)(nil)
	var _ ports.CredentialStore = (*mocks.MockCredentialStore)(nil)
	var _ ports.BookingAPI = (*mocks.MockBookingAPI)(nil)
}
