/******************************************************************************
 *
 *  Description :
 *
 *  Builtin feature modules. "rsvp" adds attendance tracking to events,
 *  "staff" adds a staff audience and announcements to any context kind.
 *
 *****************************************************************************/

package main

import (
	"context"

	"github.com/isomorphiccat/kemotown/server/plugin"
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// RSVP states stored in the membership's plugin data under "rsvp".
var rsvpStates = map[string]bool{
	"attending": true,
	"maybe":     true,
	"declined":  true,
}

// approvedMembership loads the membership if it is approved, nil otherwise.
func approvedMembership(contextID, userID t.Uid) (*t.Membership, error) {
	sub, err := store.Memberships.Get(contextID, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil || !sub.IsApproved() {
		return nil, nil
	}
	return sub, nil
}

func rsvpPlugin() *plugin.Plugin {
	return &plugin.Plugin{
		ID:           "rsvp",
		Name:         "Attendance tracking",
		ContextKinds: []string{"event", "convention"},
		Permissions: []plugin.Permission{
			{
				ID:           "manage",
				Name:         "Manage attendance",
				DefaultRoles: []t.Role{t.RoleOwner, t.RoleAdmin, t.RoleModerator},
			},
		},
		ActivityTypes: []string{"rsvp"},
		AddressPatterns: []plugin.AddressPattern{
			{
				Suffix: "attendees",
				Resolve: func(_ context.Context, contextID, userID t.Uid) (bool, error) {
					sub, err := approvedMembership(contextID, userID)
					if err != nil || sub == nil {
						return false, err
					}
					state, _ := sub.PluginData["rsvp"].(string)
					return state == "attending", nil
				},
			},
			{
				Suffix: "hosts",
				Resolve: func(_ context.Context, contextID, userID t.Uid) (bool, error) {
					sub, err := approvedMembership(contextID, userID)
					if err != nil || sub == nil {
						return false, err
					}
					return sub.Role <= t.RoleAdmin, nil
				},
			},
		},
		Hooks: plugin.Hooks{
			ValidateData: func(_ *t.Context, data t.KVMap) []string {
				state, ok := data["rsvp"].(string)
				if !ok {
					return []string{"rsvp: missing or not a string"}
				}
				if !rsvpStates[state] {
					return []string{"rsvp: unknown state '" + state + "'"}
				}
				return nil
			},
		},
	}
}

func staffPlugin() *plugin.Plugin {
	return &plugin.Plugin{
		ID:           "staff",
		Name:         "Staff tools",
		ContextKinds: []string{"group", "event", "convention"},
		Permissions: []plugin.Permission{
			{
				ID:           "announce",
				Name:         "Post staff announcements",
				DefaultRoles: []t.Role{t.RoleOwner, t.RoleAdmin, t.RoleModerator},
			},
		},
		ActivityTypes: []string{"announcement"},
		AddressPatterns: []plugin.AddressPattern{
			{
				Suffix: "staff",
				Resolve: func(_ context.Context, contextID, userID t.Uid) (bool, error) {
					sub, err := approvedMembership(contextID, userID)
					if err != nil || sub == nil {
						return false, err
					}
					return sub.Role <= t.RoleModerator, nil
				},
			},
		},
	}
}

// registerBuiltinPlugins populates the registry at process start.
func registerBuiltinPlugins(reg *plugin.Registry) {
	reg.Register(rsvpPlugin())
	reg.Register(staffPlugin())
}
