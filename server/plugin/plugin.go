/******************************************************************************
 *
 *  Description :
 *    Feature module descriptors. A plugin contributes permissions, custom
 *    activity types and address patterns for one or more context kinds,
 *    plus optional lifecycle hooks.
 *
 *****************************************************************************/
package plugin

import (
	"context"

	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// Permission is a capability a plugin adds to the permission space. Its full
// token is "plugin.{pluginId}.{permissionId}".
type Permission struct {
	ID           string
	Name         string
	DefaultRoles []t.Role
}

// HeldByDefault checks whether the given role is in the permission's
// default-role list.
func (p *Permission) HeldByDefault(role t.Role) bool {
	for _, r := range p.DefaultRoles {
		if r == role {
			return true
		}
	}
	return false
}

// AddressPattern declares a dynamic audience token "context:{id}:{suffix}".
// Resolve reports whether the user currently matches the pattern.
type AddressPattern struct {
	Suffix  string
	Resolve func(ctx context.Context, contextID, userID t.Uid) (bool, error)
}

// Hooks are optional plugin lifecycle callbacks. All of them are best-effort:
// a failing hook is logged by the registry and never aborts the caller.
type Hooks struct {
	OnContextCreate  func(ctx *t.Context) error
	OnContextUpdate  func(ctx *t.Context) error
	OnContextDelete  func(ctx *t.Context) error
	OnMemberJoin     func(ctx *t.Context, sub *t.Membership) error
	OnMemberLeave    func(ctx *t.Context, sub *t.Membership) error
	OnActivityCreate func(ctx *t.Context, act *t.Activity) error
	ValidateData     func(ctx *t.Context, data t.KVMap) []string
}

// Plugin describes one registered feature module.
type Plugin struct {
	ID              string
	Name            string
	ContextKinds    []string
	Permissions     []Permission
	ActivityTypes   []string
	AddressPatterns []AddressPattern
	Hooks           Hooks
}

// Permission finds a declared permission by its short id.
func (p *Plugin) Permission(id string) *Permission {
	for i := range p.Permissions {
		if p.Permissions[i].ID == id {
			return &p.Permissions[i]
		}
	}
	return nil
}

// AppliesTo checks if the plugin is compatible with the given context kind.
func (p *Plugin) AppliesTo(kind string) bool {
	for _, k := range p.ContextKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Pattern finds a declared address pattern by suffix.
func (p *Plugin) Pattern(suffix string) *AddressPattern {
	for i := range p.AddressPatterns {
		if p.AddressPatterns[i].Suffix == suffix {
			return &p.AddressPatterns[i]
		}
	}
	return nil
}
