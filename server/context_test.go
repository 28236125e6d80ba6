package main

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/isomorphiccat/kemotown/server/store"
	"github.com/isomorphiccat/kemotown/server/store/mock_store"
	"github.com/isomorphiccat/kemotown/server/store/types"
)

func TestCreateContext(t *testing.T) {
	defer resetGlobals()()

	ctrl := gomock.NewController(t)
	m := mock_store.NewMockContextsPersistenceInterface(ctrl)
	store.Contexts = m
	defer func() {
		store.Contexts = nil
		ctrl.Finish()
	}()

	owner := types.Uid(1)

	_, err := createContext(owner, &types.Context{Kind: "group", Slug: "g"})
	expectError(t, err, 400, "Context kind, slug and name are required.")

	_, err = createContext(owner, &types.Context{
		Kind: "group", Slug: "g", Name: "G", Features: []string{"karaoke"}})
	expectError(t, err, 400, "Unknown feature: karaoke")

	// rsvp applies to events, not plain groups.
	_, err = createContext(owner, &types.Context{
		Kind: "group", Slug: "g", Name: "G", Features: []string{"rsvp"}})
	expectError(t, err, 400, "Feature rsvp does not apply to kind group")

	m.EXPECT().Create(gomock.Any(), owner).Return(nil, types.ErrDuplicate)
	_, err = createContext(owner, &types.Context{Kind: "group", Slug: "taken", Name: "G"})
	expectError(t, err, 400, "Slug is already taken.")

	m.EXPECT().Create(gomock.Any(), owner).DoAndReturn(
		func(ctx *types.Context, _ types.Uid) (*types.Context, error) {
			ctx.Id = types.Uid(100).String()
			ctx.Owner = owner.String()
			return ctx, nil
		})
	ctx, err := createContext(owner, &types.Context{
		Kind: "event", Slug: "meetup", Name: "Meetup", Features: []string{"rsvp"}})
	if err != nil {
		t.Fatalf("createContext: %v", err)
	}
	if ctx.Owner != owner.String() {
		t.Errorf("owner = %q", ctx.Owner)
	}
}

func TestUpdateAndArchiveContext(t *testing.T) {
	defer resetGlobals()()

	ctrl := gomock.NewController(t)
	ctxs := mock_store.NewMockContextsPersistenceInterface(ctrl)
	subs := mock_store.NewMockMembershipsPersistenceInterface(ctrl)
	store.Contexts = ctxs
	store.Memberships = subs
	defer func() {
		store.Contexts = nil
		store.Memberships = nil
		ctrl.Finish()
	}()

	owner := types.Uid(1)
	mod := types.Uid(2)
	ctxUid := types.Uid(100)
	ctx := newTestContext(ctxUid, owner)

	// context.edit is admin-gated.
	subs.EXPECT().Get(ctxUid, mod).Return(membership(ctxUid, mod, types.RoleModerator, types.StatusApproved), nil)
	err := updateContext(mod, ctx, map[string]any{"Name": "Renamed"})
	expectError(t, err, 403, "Forbidden: role moderator lacks permission context.edit")

	subs.EXPECT().Get(ctxUid, owner).Return(membership(ctxUid, owner, types.RoleOwner, types.StatusApproved), nil)
	ctxs.EXPECT().Update(ctxUid, map[string]any{"Name": "Renamed"}).Return(nil)
	if err = updateContext(owner, ctx, map[string]any{"Name": "Renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// context.archive is owner-only.
	admin := types.Uid(3)
	subs.EXPECT().Get(ctxUid, admin).Return(membership(ctxUid, admin, types.RoleAdmin, types.StatusApproved), nil)
	err = archiveContext(admin, ctx)
	expectError(t, err, 403, "Forbidden: role admin lacks permission context.archive")

	subs.EXPECT().Get(ctxUid, owner).Return(membership(ctxUid, owner, types.RoleOwner, types.StatusApproved), nil)
	ctxs.EXPECT().Archive(ctxUid).Return(nil)
	if err = archiveContext(owner, ctx); err != nil {
		t.Fatalf("archive: %v", err)
	}
}

func TestValidatePluginData(t *testing.T) {
	defer resetGlobals()()

	ctx := newTestContext(types.Uid(100), types.Uid(1))
	ctx.Kind = "event"
	ctx.Features = []string{"rsvp"}

	res := validatePluginData(ctx, "rsvp", types.KVMap{"rsvp": "attending"})
	if !res.Valid {
		t.Errorf("valid rsvp rejected: %+v", res)
	}

	res = validatePluginData(ctx, "rsvp", types.KVMap{"rsvp": "perhaps"})
	if res.Valid || len(res.Errors) != 1 || res.Errors[0] != "rsvp: unknown state 'perhaps'" {
		t.Errorf("invalid rsvp accepted: %+v", res)
	}

	res = validatePluginData(ctx, "rsvp", types.KVMap{})
	if res.Valid || res.Errors[0] != "rsvp: missing or not a string" {
		t.Errorf("missing rsvp accepted: %+v", res)
	}

	// The feature must be enabled on the context, not just registered.
	res = validatePluginData(ctx, "staff", types.KVMap{})
	if res.Valid || res.Errors[0] != "feature not enabled: staff" {
		t.Errorf("disabled feature accepted: %+v", res)
	}
}

func TestMembershipPermissions(t *testing.T) {
	defer resetGlobals()()

	ctrl := gomock.NewController(t)
	subs := mock_store.NewMockMembershipsPersistenceInterface(ctrl)
	store.Memberships = subs
	defer func() {
		store.Memberships = nil
		ctrl.Finish()
	}()

	ctxUid := types.Uid(100)
	user := types.Uid(1)
	ctx := newTestContext(ctxUid, types.Uid(9))
	ctx.Kind = "event"
	ctx.Features = []string{"rsvp"}

	sub := membership(ctxUid, user, types.RoleModerator, types.StatusApproved)
	sub.Overrides = map[string]bool{"member.ban": false}
	subs.EXPECT().Get(ctxUid, user).Return(sub, nil)

	got, err := membershipPermissions(ctx, user)
	if err != nil {
		t.Fatalf("membershipPermissions: %v", err)
	}
	want := []string{
		"activity.create", "activity.delete_any", "activity.delete_own",
		"activity.edit_own", "activity.pin", "context.view",
		"member.approve", "member.invite", "plugin.rsvp.manage",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("permissions mismatch (-want +got):\n%s", diff)
	}

	// No membership resolves to an empty set.
	subs.EXPECT().Get(ctxUid, user).Return(nil, nil)
	got, err = membershipPermissions(ctx, user)
	if err != nil || len(got) != 0 {
		t.Errorf("no membership: %v err=%v", got, err)
	}
}

func TestFollowUser(t *testing.T) {
	defer resetGlobals()()

	ctrl := gomock.NewController(t)
	users := mock_store.NewMockUsersPersistenceInterface(ctrl)
	follows := mock_store.NewMockFollowsPersistenceInterface(ctrl)
	activities := mock_store.NewMockActivitiesPersistenceInterface(ctrl)
	inbox := mock_store.NewMockInboxPersistenceInterface(ctrl)
	store.Users = users
	store.Follows = follows
	store.Activities = activities
	store.Inbox = inbox
	defer func() {
		store.Users = nil
		store.Follows = nil
		store.Activities = nil
		store.Inbox = nil
		ctrl.Finish()
	}()

	follower := types.Uid(1)
	followee := types.Uid(2)

	err := followUser(follower, follower)
	expectError(t, err, 400, "Cannot follow yourself.")

	users.EXPECT().Get(followee).Return(nil, nil)
	err = followUser(follower, followee)
	expectError(t, err, 404, "user not found")

	target := &types.User{Handle: "fox"}
	target.Id = followee.String()

	users.EXPECT().Get(followee).Return(target, nil)
	follows.EXPECT().Upsert(gomock.Any()).DoAndReturn(func(f *types.Follow) error {
		if f.Follower != follower.String() || f.Followee != followee.String() ||
			f.Status != types.FollowAccepted {
			t.Errorf("follow = %+v", f)
		}
		return nil
	})
	actId := types.Uid(500)
	activities.EXPECT().Create(gomock.Any()).DoAndReturn(
		func(act *types.Activity) (*types.Activity, error) {
			if act.Type != types.ActivityFollow {
				t.Errorf("activity type = %q", act.Type)
			}
			act.Id = actId.String()
			return act, nil
		})
	inbox.EXPECT().Deliver(actId, types.CategoryFollow, []types.Uid{followee}).Return(nil)

	if err = followUser(follower, followee); err != nil {
		t.Fatalf("followUser: %v", err)
	}

	follows.EXPECT().Delete(follower, followee).Return(nil)
	if err = unfollowUser(follower, followee); err != nil {
		t.Fatalf("unfollowUser: %v", err)
	}
}
