package address

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/isomorphiccat/kemotown/server/logs"
	"github.com/isomorphiccat/kemotown/server/plugin"
	"github.com/isomorphiccat/kemotown/server/store/types"
)

func TestMain(m *testing.M) {
	logs.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}

func testRegistry(resolve func(ctx context.Context, contextID, userID types.Uid) (bool, error)) *plugin.Registry {
	reg := plugin.NewRegistry()
	reg.Register(&plugin.Plugin{
		ID:           "rsvp",
		Name:         "RSVP",
		ContextKinds: []string{"event"},
		AddressPatterns: []plugin.AddressPattern{
			{Suffix: "attendees", Resolve: resolve},
		},
	})
	return reg
}

func TestParse(t *testing.T) {
	uid := types.Uid(12345)
	ctx := types.Uid(67890)

	cases := []struct {
		raw  string
		want Token
	}{
		{"public", Token{Kind: KindPublic}},
		{"followers", Token{Kind: KindFollowers}},
		{ForUser(uid), Token{Kind: KindUser, User: uid}},
		{ForContext(ctx, "attendees"), Token{Kind: KindContext, Context: ctx, Suffix: "attendees"}},
		// Anything else matches nobody.
		{"", Token{}},
		{"PUBLIC", Token{}},
		{"user:", Token{}},
		{"user:notanid", Token{}},
		{"context:" + ctx.String(), Token{}},
		{"context:" + ctx.String() + ":", Token{}},
		{"context:notanid:attendees", Token{}},
		{"everyone", Token{}},
	}
	for _, tc := range cases {
		if got := Parse(tc.raw); got != tc.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestRecipients(t *testing.T) {
	actor := types.Uid(1)
	alice := types.Uid(2)
	bob := types.Uid(3)

	to := []string{"public", ForUser(alice), ForUser(actor)}
	cc := []string{ForUser(bob), ForUser(alice), "followers", ForContext(types.Uid(9), "attendees")}

	got := Recipients(to, cc, actor)
	want := []types.Uid{alice, bob}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recipients mismatch (-want +got):\n%s", diff)
	}

	if got := Recipients([]string{"public", "followers"}, nil, actor); got != nil {
		t.Errorf("broadcast-only addressing produced recipients: %v", got)
	}
}

func TestValidate(t *testing.T) {
	reg := testRegistry(nil)
	ctx := types.Uid(42)

	ok := []string{"public", "followers", ForUser(types.Uid(7)), ForContext(ctx, "attendees")}
	if bad := Validate(ok, reg); bad != "" {
		t.Errorf("Validate rejected %q", bad)
	}

	cases := []struct {
		tokens []string
		want   string
	}{
		{[]string{"public", "user:"}, "user:"},
		{[]string{"everyone"}, "everyone"},
		{[]string{ForContext(ctx, "hosts")}, ForContext(ctx, "hosts")},
	}
	for _, tc := range cases {
		if bad := Validate(tc.tokens, reg); bad != tc.want {
			t.Errorf("Validate(%v) = %q, want %q", tc.tokens, bad, tc.want)
		}
	}
}

func TestCanSeeBasic(t *testing.T) {
	actor := types.Uid(1)
	follower := types.Uid(2)
	stranger := types.Uid(3)

	ev := NewEvaluator(plugin.NewRegistry(), func(a, b types.Uid) (bool, error) {
		return a == follower && b == actor, nil
	})
	bg := context.Background()

	act := &types.Activity{Type: types.ActivityCreate, Actor: actor.String(), To: []string{"followers"}}

	if !ev.CanSee(bg, act, actor) {
		t.Error("actor must see own activity")
	}
	if !ev.CanSee(bg, act, follower) {
		t.Error("follower must see followers-addressed activity")
	}
	if ev.CanSee(bg, act, stranger) {
		t.Error("stranger must not see followers-addressed activity")
	}
	if ev.CanSee(bg, act, types.ZeroUid) {
		t.Error("anonymous viewer must not see followers-addressed activity")
	}

	act.To = []string{"public"}
	if !ev.CanSee(bg, act, types.ZeroUid) {
		t.Error("anyone must see public activity")
	}

	act.To = []string{ForUser(stranger)}
	if !ev.CanSee(bg, act, stranger) {
		t.Error("addressed user must see direct activity")
	}
	if ev.CanSee(bg, act, follower) {
		t.Error("unaddressed user must not see direct activity")
	}

	now := types.TimeNow()
	act.DeletedAt = &now
	if ev.CanSee(bg, act, stranger) {
		t.Error("deleted activity must be invisible")
	}
	if ev.CanSee(bg, nil, stranger) {
		t.Error("nil activity must be invisible")
	}
}

func TestCanSeeContextToken(t *testing.T) {
	actor := types.Uid(1)
	attendee := types.Uid(2)
	evCtx := types.Uid(50)

	reg := testRegistry(func(_ context.Context, contextID, userID types.Uid) (bool, error) {
		return contextID == evCtx && userID == attendee, nil
	})
	ev := NewEvaluator(reg, func(a, b types.Uid) (bool, error) { return false, nil })
	bg := context.Background()

	act := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: actor.String(),
		To:    []string{ForContext(evCtx, "attendees")},
	}

	if !ev.CanSee(bg, act, attendee) {
		t.Error("resolver match must grant visibility")
	}
	if ev.CanSee(bg, act, types.Uid(3)) {
		t.Error("resolver miss must deny visibility")
	}
	if ev.CanSee(bg, act, types.ZeroUid) {
		t.Error("anonymous viewer must not match a context token")
	}

	// A token naming an unregistered pattern matches nobody.
	act.To = []string{ForContext(evCtx, "hosts")}
	if ev.CanSee(bg, act, attendee) {
		t.Error("unregistered pattern must deny visibility")
	}
}

func TestCanSeeFailsClosed(t *testing.T) {
	actor := types.Uid(1)
	viewer := types.Uid(2)
	evCtx := types.Uid(50)
	bg := context.Background()

	reg := testRegistry(func(context.Context, types.Uid, types.Uid) (bool, error) {
		return false, errors.New("resolver down")
	})
	ev := NewEvaluator(reg, func(types.Uid, types.Uid) (bool, error) {
		return false, errors.New("db down")
	})

	act := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: actor.String(),
		To:    []string{"followers", ForContext(evCtx, "attendees")},
	}
	if ev.CanSee(bg, act, viewer) {
		t.Error("resolver errors must deny visibility")
	}

	// An erroring token must not mask a later granting one.
	act.Cc = []string{ForUser(viewer)}
	if !ev.CanSee(bg, act, viewer) {
		t.Error("later direct token must still grant visibility")
	}
}
