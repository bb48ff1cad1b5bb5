package authroles

import (
	"strings"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

// StaticRoleMapper maps the groups claim of a verified token to an application role.
// Admin membership wins over user membership; anything else is a guest.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if hasGroup(groups, m.AdminGroup) {
		return domainauth.RoleAdmin
	}
	if hasGroup(groups, m.UserGroup) {
		return domainauth.RoleUser
	}
	return domainauth.RoleGuest
}

func hasGroup(groups []string, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return false
	}
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), want) {
			return true
		}
	}
	return false
}
