package authroles

import (
	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
)

// ProfileRoleMapper reconciles the token role with what a fetched profile says.
// The token role wins whenever it is canonical: the profile endpoint was picked from it
// and can fail or mislabel for reasons unrelated to the principal's actual role.
type ProfileRoleMapper struct{}

func (ProfileRoleMapper) Map(tokenRole domainauth.Role, profile *domainauth.Profile) domainauth.Role {
	if r := domainauth.NormalizeRole(string(tokenRole)); r != domainauth.RoleNone {
		return r
	}
	if profile == nil {
		return domainauth.RoleNone
	}
	if profile.ClaimedRole != domainauth.RoleNone {
		return domainauth.NormalizeRole(string(profile.ClaimedRole))
	}
	return domainauth.NormalizeRole(string(profile.EndpointRole))
}
