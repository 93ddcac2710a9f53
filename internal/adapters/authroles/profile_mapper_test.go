package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
)

func TestProfileRoleMapper_Map(t *testing.T) {
	tests := []struct {
		name    string
		token   domainauth.Role
		profile *domainauth.Profile
		want    domainauth.Role
	}{
		{
			name:    "token role wins over profile claim",
			token:   domainauth.RolePatient,
			profile: &domainauth.Profile{ClaimedRole: domainauth.RoleAdmin, EndpointRole: domainauth.RoleDoctor},
			want:    domainauth.RolePatient,
		},
		{
			name:    "profile claim fills missing token role",
			profile: &domainauth.Profile{ClaimedRole: domainauth.RoleAdmin, EndpointRole: domainauth.RoleDoctor},
			want:    domainauth.RoleAdmin,
		},
		{
			name:    "endpoint role as last resort",
			profile: &domainauth.Profile{EndpointRole: domainauth.RoleDoctor},
			want:    domainauth.RoleDoctor,
		},
		{
			name:    "generic endpoint without role field",
			profile: &domainauth.Profile{Endpoint: "/api/users/me"},
			want:    domainauth.RoleNone,
		},
		{
			name: "nothing to go on",
			want: domainauth.RoleNone,
		},
		{
			name:  "non canonical token role is normalized",
			token: domainauth.Role("ROLE_doctor"),
			want:  domainauth.RoleDoctor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileRoleMapper{}.Map(tt.token, tt.profile))
		})
	}
}
