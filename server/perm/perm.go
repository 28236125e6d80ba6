/******************************************************************************
 *
 *  Description :
 *    Pure permission resolver. Combines the role tables, plugin-contributed
 *    permissions and per-membership overrides into allow/deny decisions.
 *    Safe for concurrent use: all inputs are caller-supplied snapshots.
 *
 *****************************************************************************/
package perm

import (
	"sort"
	"strings"

	"github.com/isomorphiccat/kemotown/server/plugin"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

const pluginPrefix = "plugin."

// IsPluginPermission reports whether the token has the plugin permission
// shape "plugin.{pluginId}.{permissionId}".
func IsPluginPermission(permission string) bool {
	return strings.HasPrefix(permission, pluginPrefix)
}

// parsePluginPermission splits a plugin permission token into plugin id and
// permission id. Malformed tokens yield ok=false.
func parsePluginPermission(permission string) (pluginID, permID string, ok bool) {
	parts := strings.Split(permission, ".")
	if len(parts) != 3 || parts[0] != "plugin" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// RoleHasPluginPermission checks the role against a plugin permission's
// default-role list. Malformed tokens and unknown plugins or permissions
// fail closed.
func RoleHasPluginPermission(reg *plugin.Registry, role t.Role, permission string) bool {
	pluginID, permID, ok := parsePluginPermission(permission)
	if !ok {
		return false
	}
	p := reg.Get(pluginID)
	if p == nil {
		return false
	}
	decl := p.Permission(permID)
	if decl == nil {
		return false
	}
	return decl.HeldByDefault(role)
}

// CheckPermission decides whether the membership grants the permission.
// A nil or non-approved membership grants nothing. An override entry for the
// exact permission key is authoritative either way and short-circuits role
// logic.
func CheckPermission(reg *plugin.Registry, sub *t.Membership, permission string) bool {
	if sub == nil || !sub.IsApproved() {
		return false
	}

	if sub.Overrides != nil {
		if allowed, found := sub.Overrides[permission]; found {
			return allowed
		}
	}

	if IsPluginPermission(permission) {
		return RoleHasPluginPermission(reg, sub.Role, permission)
	}
	return RoleHasPermission(sub.Role, permission)
}

// PermissionsForRole returns the union of the role's core permissions with
// every enabled plugin's permissions whose default roles include the role.
func PermissionsForRole(role t.Role, enabled []*plugin.Plugin) []string {
	out := CorePermissionsForRole(role)
	for _, p := range enabled {
		for i := range p.Permissions {
			if p.Permissions[i].HeldByDefault(role) {
				out = append(out, pluginPrefix+p.ID+"."+p.Permissions[i].ID)
			}
		}
	}
	sort.Strings(out)
	return out
}

// MembershipPermissions resolves the membership's full permission set:
// role-derived permissions adjusted by the override map. Applying the same
// override map again does not change the result.
func MembershipPermissions(sub *t.Membership, enabled []*plugin.Plugin) []string {
	if sub == nil || !sub.IsApproved() {
		return nil
	}

	derived := PermissionsForRole(sub.Role, enabled)
	if len(sub.Overrides) == 0 {
		return derived
	}

	set := make(map[string]bool, len(derived))
	for _, p := range derived {
		set[p] = true
	}
	for p, allowed := range sub.Overrides {
		if allowed {
			set[p] = true
		} else {
			delete(set, p)
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
