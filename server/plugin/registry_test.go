package plugin

import (
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/isomorphiccat/kemotown/server/logs"
	"github.com/isomorphiccat/kemotown/server/store/types"
)

func TestMain(m *testing.M) {
	logs.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}

func rsvpPlugin() *Plugin {
	return &Plugin{
		ID:           "rsvp",
		Name:         "RSVP",
		ContextKinds: []string{"event", "convention"},
		Permissions: []Permission{
			{ID: "manage", Name: "Manage RSVPs",
				DefaultRoles: []types.Role{types.RoleOwner, types.RoleAdmin}},
		},
		ActivityTypes:   []string{"rsvp"},
		AddressPatterns: []AddressPattern{{Suffix: "attendees"}},
	}
}

func staffPlugin() *Plugin {
	return &Plugin{
		ID:              "staff",
		Name:            "Staff",
		ContextKinds:    []string{"group", "event"},
		ActivityTypes:   []string{"announcement"},
		AddressPatterns: []AddressPattern{{Suffix: "staff"}},
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(rsvpPlugin())
	reg.Register(staffPlugin())

	if p := reg.Get("rsvp"); p == nil || p.Name != "RSVP" {
		t.Errorf("Get(rsvp) = %+v", p)
	}
	if p := reg.Get("nosuch"); p != nil {
		t.Errorf("Get(nosuch) = %+v, want nil", p)
	}

	all := reg.All()
	if len(all) != 2 || all[0].ID != "rsvp" || all[1].ID != "staff" {
		t.Errorf("All() must preserve registration order, got %d plugins", len(all))
	}

	// Re-registering the same id replaces, not duplicates.
	updated := rsvpPlugin()
	updated.Name = "RSVP v2"
	reg.Register(updated)
	if len(reg.All()) != 2 {
		t.Errorf("re-register must not grow the registry: %d", len(reg.All()))
	}
	if p := reg.Get("rsvp"); p.Name != "RSVP v2" {
		t.Errorf("re-register must replace: got %q", p.Name)
	}

	reg.Unregister("rsvp")
	if reg.Get("rsvp") != nil {
		t.Error("Unregister must remove the plugin")
	}
	if len(reg.All()) != 1 {
		t.Errorf("registry size after Unregister: %d", len(reg.All()))
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	reg := NewRegistry()
	for _, p := range []*Plugin{nil, {Name: "anonymous"}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Register(%+v) must panic", p)
				}
			}()
			reg.Register(p)
		}()
	}
}

func TestForContext(t *testing.T) {
	reg := NewRegistry()
	reg.Register(rsvpPlugin())
	reg.Register(staffPlugin())

	ids := func(plugins []*Plugin) []string {
		var out []string
		for _, p := range plugins {
			out = append(out, p.ID)
		}
		return out
	}

	if diff := cmp.Diff([]string{"rsvp", "staff"}, ids(reg.ForContextKind("event"))); diff != "" {
		t.Errorf("ForContextKind(event) mismatch (-want +got):\n%s", diff)
	}
	if got := reg.ForContextKind("forum"); len(got) != 0 {
		t.Errorf("ForContextKind(forum) = %v, want none", ids(got))
	}

	// A plugin must be both kind-compatible and enabled on the context.
	ctx := &types.Context{Kind: "event", Features: []string{"rsvp"}}
	if diff := cmp.Diff([]string{"rsvp"}, ids(reg.ForContext(ctx))); diff != "" {
		t.Errorf("ForContext mismatch (-want +got):\n%s", diff)
	}
	ctx.Features = nil
	if got := reg.ForContext(ctx); len(got) != 0 {
		t.Errorf("ForContext with no features = %v, want none", ids(got))
	}
}

func TestAggregates(t *testing.T) {
	reg := NewRegistry()
	reg.Register(rsvpPlugin())
	reg.Register(staffPlugin())

	if diff := cmp.Diff([]string{"rsvp", "announcement"}, reg.AllActivityTypes()); diff != "" {
		t.Errorf("AllActivityTypes mismatch (-want +got):\n%s", diff)
	}

	patterns := reg.AllAddressPatterns()
	if len(patterns) != 2 {
		t.Fatalf("AllAddressPatterns: %d, want 2", len(patterns))
	}
	if patterns[0].Plugin != "rsvp" || patterns[0].Pattern.Suffix != "attendees" {
		t.Errorf("pattern 0: %s/%s", patterns[0].Plugin, patterns[0].Pattern.Suffix)
	}
	if patterns[1].Plugin != "staff" || patterns[1].Pattern.Suffix != "staff" {
		t.Errorf("pattern 1: %s/%s", patterns[1].Plugin, patterns[1].Pattern.Suffix)
	}
}

func TestValidateData(t *testing.T) {
	reg := NewRegistry()
	p := rsvpPlugin()
	p.Hooks.ValidateData = func(ctx *types.Context, data types.KVMap) []string {
		if _, ok := data["status"]; !ok {
			return []string{"status is required"}
		}
		return nil
	}
	reg.Register(p)

	ctx := &types.Context{Kind: "event", Features: []string{"rsvp"}}

	res := reg.ValidateData("rsvp", ctx, types.KVMap{"status": "attending"})
	if !res.Valid || len(res.Errors) != 0 {
		t.Errorf("valid data rejected: %+v", res)
	}

	res = reg.ValidateData("rsvp", ctx, types.KVMap{})
	if res.Valid || len(res.Errors) != 1 || res.Errors[0] != "status is required" {
		t.Errorf("invalid data accepted: %+v", res)
	}

	res = reg.ValidateData("nosuch", ctx, types.KVMap{})
	if res.Valid || len(res.Errors) != 1 {
		t.Errorf("unknown plugin must fail validation: %+v", res)
	}

	// A plugin without a validation hook accepts everything.
	reg.Register(staffPlugin())
	res = reg.ValidateData("staff", ctx, types.KVMap{"whatever": 1})
	if !res.Valid {
		t.Errorf("hook-less plugin must accept: %+v", res)
	}
}

func TestPermissionLookup(t *testing.T) {
	p := rsvpPlugin()

	decl := p.Permission("manage")
	if decl == nil {
		t.Fatal("Permission(manage) = nil")
	}
	if !decl.HeldByDefault(types.RoleAdmin) {
		t.Error("admin must hold rsvp.manage by default")
	}
	if decl.HeldByDefault(types.RoleMember) {
		t.Error("member must not hold rsvp.manage by default")
	}
	if p.Permission("nosuch") != nil {
		t.Error("Permission(nosuch) must be nil")
	}
}
