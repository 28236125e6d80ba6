/******************************************************************************
 *
 *  Description :
 *    Static role hierarchy and core permission tables. Pure functions,
 *    no side effects.
 *
 *****************************************************************************/
package perm

import (
	"sort"

	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// Core permission tokens.
const (
	ContextView     = "context.view"
	ContextEdit     = "context.edit"
	ContextArchive  = "context.archive"
	ActivityCreate  = "activity.create"
	ActivityEditOwn = "activity.edit_own"
	ActivityDelOwn  = "activity.delete_own"
	ActivityDelAny  = "activity.delete_any"
	ActivityPin     = "activity.pin"
	MemberInvite    = "member.invite"
	MemberApprove   = "member.approve"
	MemberBan       = "member.ban"
)

// coreGrants maps a core permission to the least privileged role holding it.
// Role values are ordered by privilege, so every higher role holds it too.
var coreGrants = map[string]t.Role{
	ContextView:     t.RoleGuest,
	ContextEdit:     t.RoleAdmin,
	ContextArchive:  t.RoleOwner,
	ActivityCreate:  t.RoleMember,
	ActivityEditOwn: t.RoleMember,
	ActivityDelOwn:  t.RoleMember,
	ActivityDelAny:  t.RoleModerator,
	ActivityPin:     t.RoleModerator,
	MemberInvite:    t.RoleModerator,
	MemberApprove:   t.RoleModerator,
	MemberBan:       t.RoleModerator,
}

// RoleHasPermission is a core permission table lookup. Unknown permissions
// match no role.
func RoleHasPermission(role t.Role, permission string) bool {
	floor, found := coreGrants[permission]
	if !found || !role.IsValid() {
		return false
	}
	return role <= floor
}

// IsHigherRole reports whether a outranks b. Lower value means higher
// privilege.
func IsHigherRole(a, b t.Role) bool {
	return a < b
}

// IsEqualOrHigherRole reports whether a is at least as privileged as b.
func IsEqualOrHigherRole(a, b t.Role) bool {
	return a <= b
}

// RolesAtOrAbove returns all roles with privilege equal to or greater than
// the given role, in descending privilege order.
func RolesAtOrAbove(role t.Role) []t.Role {
	var out []t.Role
	for r := t.RoleOwner; r <= role; r++ {
		out = append(out, r)
	}
	return out
}

// RolesBelow returns all roles strictly less privileged than the given role,
// in descending privilege order.
func RolesBelow(role t.Role) []t.Role {
	var out []t.Role
	for r := role + 1; r <= t.RoleGuest; r++ {
		out = append(out, r)
	}
	return out
}

// CorePermissionsForRole returns the core permission set of the role, sorted.
func CorePermissionsForRole(role t.Role) []string {
	var out []string
	for p := range coreGrants {
		if RoleHasPermission(role, p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
