package main

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/isomorphiccat/kemotown/server/address"
	"github.com/isomorphiccat/kemotown/server/store"
	"github.com/isomorphiccat/kemotown/server/store/mock_store"
	"github.com/isomorphiccat/kemotown/server/store/types"
)

type activityMocks struct {
	activities  *mock_store.MockActivitiesPersistenceInterface
	inbox       *mock_store.MockInboxPersistenceInterface
	contexts    *mock_store.MockContextsPersistenceInterface
	memberships *mock_store.MockMembershipsPersistenceInterface
}

func setupActivityMocks(t *testing.T) (*activityMocks, func()) {
	teardown := resetGlobals()
	globals.hub = testHub()

	ctrl := gomock.NewController(t)
	m := &activityMocks{
		activities:  mock_store.NewMockActivitiesPersistenceInterface(ctrl),
		inbox:       mock_store.NewMockInboxPersistenceInterface(ctrl),
		contexts:    mock_store.NewMockContextsPersistenceInterface(ctrl),
		memberships: mock_store.NewMockMembershipsPersistenceInterface(ctrl),
	}
	store.Activities = m.activities
	store.Inbox = m.inbox
	store.Contexts = m.contexts
	store.Memberships = m.memberships

	return m, func() {
		store.Activities = nil
		store.Inbox = nil
		store.Contexts = nil
		store.Memberships = nil
		globals.hub = nil
		ctrl.Finish()
		teardown()
	}
}

// expectCreate wires Activities.Create to assign the given id, imitating
// the real store.
func (m *activityMocks) expectCreate(id types.Uid) {
	m.activities.EXPECT().Create(gomock.Any()).DoAndReturn(
		func(act *types.Activity) (*types.Activity, error) {
			act.Id = id.String()
			act.CreatedAt = types.TimeNow()
			act.UpdatedAt = act.CreatedAt
			return act, nil
		})
}

func TestCreateActivityValidation(t *testing.T) {
	_, teardown := setupActivityMocks(t)
	defer teardown()

	actor := types.Uid(1)
	bg := context.Background()

	_, err := createActivity(bg, actor, &types.Activity{
		Type: "interpretive-dance", To: []string{"public"}})
	expectError(t, err, 400, "Unknown activity type.")

	_, err = createActivity(bg, actor, &types.Activity{Type: types.ActivityCreate})
	expectError(t, err, 400, "Activity has no addressees.")

	_, err = createActivity(bg, actor, &types.Activity{
		Type: types.ActivityCreate, To: []string{"public", "everyone"}})
	expectError(t, err, 400, "Invalid address token: everyone")

	// Context tokens must name a pattern some registered plugin declares.
	ctxUid := types.Uid(100)
	_, err = createActivity(bg, actor, &types.Activity{
		Type: types.ActivityCreate,
		To:   []string{address.ForContext(ctxUid, "nosuch")}})
	expectError(t, err, 400, "Invalid address token: "+address.ForContext(ctxUid, "nosuch"))
}

func TestCreateActivityFanOut(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	actor := types.Uid(1)
	alice := types.Uid(2)
	bob := types.Uid(3)
	actId := types.Uid(500)

	m.expectCreate(actId)
	// Addressed only to individuals: a direct notification each, the actor
	// excluded, the duplicate collapsed.
	m.inbox.EXPECT().Deliver(actId, types.CategoryDirect, []types.Uid{alice, bob}).Return(nil)

	act, err := createActivity(context.Background(), actor, &types.Activity{
		Type: types.ActivityCreate,
		To:   []string{address.ForUser(alice), address.ForUser(actor)},
		Cc:   []string{address.ForUser(bob), address.ForUser(alice)},
	})
	if err != nil {
		t.Fatalf("createActivity: %v", err)
	}
	if act.Actor != actor.String() {
		t.Errorf("actor = %q", act.Actor)
	}

	got, _ := routedChannels(t, globals.hub)
	if len(got) != 3 {
		// Actor's home plus one per recipient, no global for a direct post.
		t.Errorf("routed to %v, want 3 home channels", got)
	}
}

func TestCreateActivityDeliveryFailureIsNotFatal(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	actor := types.Uid(1)
	alice := types.Uid(2)

	m.expectCreate(types.Uid(500))
	m.inbox.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.ErrDuplicate)

	// The activity is persisted; a failed notification write is logged and
	// swallowed.
	_, err := createActivity(context.Background(), actor, &types.Activity{
		Type: types.ActivityCreate,
		To:   []string{"public", address.ForUser(alice)},
	})
	if err != nil {
		t.Fatalf("createActivity: %v", err)
	}
}

func TestCreateActivityInContext(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	actor := types.Uid(1)
	ctxUid := types.Uid(100)
	ctx := newTestContext(ctxUid, types.Uid(9))

	// A guest may not post.
	m.contexts.EXPECT().Get(ctxUid).Return(ctx, nil)
	m.memberships.EXPECT().Get(ctxUid, actor).
		Return(membership(ctxUid, actor, types.RoleGuest, types.StatusApproved), nil)
	_, err := createActivity(context.Background(), actor, &types.Activity{
		Type:    types.ActivityCreate,
		To:      []string{"public"},
		Context: ctxUid.String(),
	})
	expectError(t, err, 403, "Forbidden: role guest lacks permission activity.create")

	// A member may.
	m.contexts.EXPECT().Get(ctxUid).Return(ctx, nil)
	m.memberships.EXPECT().Get(ctxUid, actor).
		Return(membership(ctxUid, actor, types.RoleMember, types.StatusApproved), nil)
	m.expectCreate(types.Uid(500))
	if _, err = createActivity(context.Background(), actor, &types.Activity{
		Type:    types.ActivityCreate,
		To:      []string{"public"},
		Context: ctxUid.String(),
	}); err != nil {
		t.Fatalf("member post: %v", err)
	}

	// Unknown context.
	m.contexts.EXPECT().Get(ctxUid).Return(nil, nil)
	_, err = createActivity(context.Background(), actor, &types.Activity{
		Type:    types.ActivityCreate,
		To:      []string{"public"},
		Context: ctxUid.String(),
	})
	expectError(t, err, 404, "context not found")
}

func TestCreateReply(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	actor := types.Uid(1)
	author := types.Uid(2)
	parentId := types.Uid(400)

	parent := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: author.String(),
		To:    []string{"public"},
	}
	parent.Id = parentId.String()

	// Visible parent: the reply lands in the author's reply bucket.
	m.activities.EXPECT().Get(parentId).Return(parent, nil)
	m.expectCreate(types.Uid(500))
	m.inbox.EXPECT().Deliver(types.Uid(500), types.CategoryReply, []types.Uid{author}).Return(nil)

	_, err := createActivity(context.Background(), actor, &types.Activity{
		Type:      types.ActivityCreate,
		To:        []string{"public", address.ForUser(author)},
		InReplyTo: parentId.String(),
	})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	// A parent the actor cannot see is indistinguishable from a missing one.
	hidden := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: author.String(),
		To:    []string{address.ForUser(types.Uid(7))},
	}
	hidden.Id = parentId.String()
	m.activities.EXPECT().Get(parentId).Return(hidden, nil)
	_, err = createActivity(context.Background(), actor, &types.Activity{
		Type:      types.ActivityCreate,
		To:        []string{"public"},
		InReplyTo: parentId.String(),
	})
	expectError(t, err, 404, "activity not found")
}

func TestReact(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	author := types.Uid(1)
	reactor := types.Uid(2)
	targetId := types.Uid(400)

	target := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: author.String(),
		To:    []string{"public"},
	}
	target.Id = targetId.String()

	// A like notifies the author.
	m.activities.EXPECT().Get(targetId).Return(target, nil)
	m.expectCreate(types.Uid(500))
	m.inbox.EXPECT().Deliver(types.Uid(500), types.CategoryLike, []types.Uid{author}).Return(nil)

	reaction, err := react(context.Background(), reactor, targetId, types.ActivityLike)
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if reaction.ObjectId != target.Id || len(reaction.To) != 1 ||
		reaction.To[0] != address.ForUser(author) {
		t.Errorf("reaction = %+v", reaction)
	}

	// Liking your own post produces no notification.
	m.activities.EXPECT().Get(targetId).Return(target, nil)
	m.expectCreate(types.Uid(501))
	if _, err = react(context.Background(), author, targetId, types.ActivityLike); err != nil {
		t.Fatalf("self-like: %v", err)
	}

	// An announce lands in the repost bucket.
	m.activities.EXPECT().Get(targetId).Return(target, nil)
	m.expectCreate(types.Uid(502))
	m.inbox.EXPECT().Deliver(types.Uid(502), types.CategoryRepost, []types.Uid{author}).Return(nil)
	if _, err = react(context.Background(), reactor, targetId, types.ActivityAnnounce); err != nil {
		t.Fatalf("announce: %v", err)
	}

	// Only likes and announces are reactions.
	_, err = react(context.Background(), reactor, targetId, types.ActivityCreate)
	expectError(t, err, 400, "Unknown reaction type.")

	// An invisible target reads as missing.
	hidden := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: author.String(),
		To:    []string{address.ForUser(types.Uid(7))},
	}
	hidden.Id = targetId.String()
	m.activities.EXPECT().Get(targetId).Return(hidden, nil)
	_, err = react(context.Background(), reactor, targetId, types.ActivityLike)
	expectError(t, err, 404, "activity not found")
}

func TestDeleteActivity(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	author := types.Uid(1)
	other := types.Uid(2)
	actId := types.Uid(400)

	freestanding := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: author.String(),
		To:    []string{"public"},
	}
	freestanding.Id = actId.String()

	// Outside a context only the author may delete.
	m.activities.EXPECT().Get(actId).Return(freestanding, nil)
	err := deleteActivity(other, actId)
	expectError(t, err, 403, "Forbidden: cannot delete others' activities")

	m.activities.EXPECT().Get(actId).Return(freestanding, nil)
	m.activities.EXPECT().MarkDeleted(actId).Return(nil)
	if err = deleteActivity(author, actId); err != nil {
		t.Fatalf("author delete: %v", err)
	}

	// Inside a context moderation permissions apply.
	ctxUid := types.Uid(100)
	inContext := &types.Activity{
		Type:    types.ActivityCreate,
		Actor:   author.String(),
		To:      []string{"public"},
		Context: ctxUid.String(),
	}
	inContext.Id = actId.String()

	m.activities.EXPECT().Get(actId).Return(inContext, nil)
	m.memberships.EXPECT().Get(ctxUid, other).
		Return(membership(ctxUid, other, types.RoleModerator, types.StatusApproved), nil)
	m.activities.EXPECT().MarkDeleted(actId).Return(nil)
	if err = deleteActivity(other, actId); err != nil {
		t.Fatalf("moderator delete: %v", err)
	}

	// Deleting twice is 404: soft-deleted records read as absent.
	now := types.TimeNow()
	gone := &types.Activity{Type: types.ActivityCreate, Actor: author.String()}
	gone.Id = actId.String()
	gone.DeletedAt = &now
	m.activities.EXPECT().Get(actId).Return(gone, nil)
	err = deleteActivity(author, actId)
	expectError(t, err, 404, "activity not found")

	m.activities.EXPECT().Get(actId).Return(nil, nil)
	err = deleteActivity(author, actId)
	expectError(t, err, 404, "activity not found")
}

func TestFeedGlobalDecoration(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	viewer := types.Uid(9)
	postId := types.Uid(400)
	announceId := types.Uid(401)
	origId := types.Uid(300)

	post := types.Activity{Type: types.ActivityCreate, Actor: types.Uid(1).String(), To: []string{"public"}}
	post.Id = postId.String()
	announce := types.Activity{Type: types.ActivityAnnounce, Actor: types.Uid(2).String(),
		To: []string{"public"}, ObjectId: origId.String()}
	announce.Id = announceId.String()
	orig := &types.Activity{Type: types.ActivityCreate, Actor: types.Uid(3).String(), To: []string{"public"}}
	orig.Id = origId.String()

	next := types.TimeNow()
	page := &store.Page{Items: []types.Activity{post, announce}, NextCursor: &next, HasMore: true}

	m.activities.EXPECT().FeedGlobal(gomock.Any()).Return(page, nil)
	m.activities.EXPECT().AnnounceTargets(page).
		Return(map[string]*types.Activity{origId.String(): orig}, nil)
	m.activities.EXPECT().InteractionStates(viewer, []types.Uid{postId, announceId}).
		Return(map[types.Uid]types.InteractionState{postId: {Liked: true}}, nil)

	out, err := feedGlobal(viewer, &types.QueryOpt{Limit: 2})
	if err != nil {
		t.Fatalf("feedGlobal: %v", err)
	}
	if len(out.Items) != 2 || !out.HasMore || out.NextCursor == nil {
		t.Fatalf("page = %+v", out)
	}
	if out.Items[0].State == nil || !out.Items[0].State.Liked {
		t.Errorf("viewer's like must be attached: %+v", out.Items[0].State)
	}
	if out.Items[1].Original == nil || out.Items[1].Original.Id != orig.Id {
		t.Errorf("announce original must be attached: %+v", out.Items[1].Original)
	}

	// Anonymous viewers get no interaction states.
	m.activities.EXPECT().FeedGlobal(gomock.Any()).
		Return(&store.Page{Items: []types.Activity{post}}, nil)
	m.activities.EXPECT().AnnounceTargets(gomock.Any()).
		Return(map[string]*types.Activity{}, nil)
	out, err = feedGlobal(types.ZeroUid, nil)
	if err != nil {
		t.Fatalf("anonymous feedGlobal: %v", err)
	}
	if out.Items[0].State != nil {
		t.Error("anonymous viewer must have no interaction state")
	}
}

func TestThreadRepliesVisibility(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	viewer := types.Uid(9)
	parentId := types.Uid(400)
	author := types.Uid(1)

	// Invisible parent: an empty page, not an error, and no replies query.
	hidden := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: author.String(),
		To:    []string{address.ForUser(types.Uid(7))},
	}
	hidden.Id = parentId.String()
	m.activities.EXPECT().Get(parentId).Return(hidden, nil)

	out, err := threadReplies(context.Background(), parentId, viewer, nil)
	if err != nil || len(out.Items) != 0 {
		t.Fatalf("hidden parent: items=%d err=%v", len(out.Items), err)
	}

	// Visible parent with a mixed-visibility thread: invisible replies are
	// filtered out of the page.
	parent := &types.Activity{Type: types.ActivityCreate, Actor: author.String(), To: []string{"public"}}
	parent.Id = parentId.String()

	visible := types.Activity{Type: types.ActivityCreate, Actor: author.String(),
		To: []string{"public"}, InReplyTo: parent.Id}
	visible.Id = types.Uid(401).String()
	private := types.Activity{Type: types.ActivityCreate, Actor: author.String(),
		To: []string{address.ForUser(types.Uid(7))}, InReplyTo: parent.Id}
	private.Id = types.Uid(402).String()

	m.activities.EXPECT().Get(parentId).Return(parent, nil)
	m.activities.EXPECT().Replies(parentId, gomock.Any()).
		Return(&store.Page{Items: []types.Activity{visible, private}}, nil)
	m.activities.EXPECT().AnnounceTargets(gomock.Any()).
		Return(map[string]*types.Activity{}, nil)
	m.activities.EXPECT().InteractionStates(viewer, []types.Uid{types.Uid(401)}).
		Return(map[types.Uid]types.InteractionState{}, nil)

	out, err = threadReplies(context.Background(), parentId, viewer, nil)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Activity.Id != visible.Id {
		t.Errorf("thread items = %+v", out.Items)
	}
}

func TestListReactors(t *testing.T) {
	m, teardown := setupActivityMocks(t)
	defer teardown()

	viewer := types.Uid(9)
	targetId := types.Uid(400)

	target := &types.Activity{Type: types.ActivityCreate, Actor: types.Uid(1).String(), To: []string{"public"}}
	target.Id = targetId.String()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]types.Reaction, 3)
	for i := range rows {
		rows[i].CreatedAt = base.Add(-time.Duration(i) * time.Minute)
	}

	// The store returns pageSize+1 rows; the extra one becomes the cursor.
	m.activities.EXPECT().Get(targetId).Return(target, nil)
	m.activities.EXPECT().Reactors(targetId, types.ActivityLike, gomock.Any()).Return(rows, nil)

	out, err := listReactors(context.Background(), targetId, types.ActivityLike, viewer,
		&types.QueryOpt{Limit: 2})
	if err != nil {
		t.Fatalf("listReactors: %v", err)
	}
	if len(out.Items) != 2 || !out.HasMore || out.NextCursor == nil ||
		!out.NextCursor.Equal(rows[2].CreatedAt) {
		t.Errorf("page = %+v", out)
	}

	// An invisible target yields an empty listing, not an error.
	hidden := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: types.Uid(1).String(),
		To:    []string{address.ForUser(types.Uid(7))},
	}
	hidden.Id = targetId.String()
	m.activities.EXPECT().Get(targetId).Return(hidden, nil)
	out, err = listReactors(context.Background(), targetId, types.ActivityLike, viewer, nil)
	if err != nil || len(out.Items) != 0 || out.HasMore {
		t.Errorf("hidden target: %+v err=%v", out, err)
	}

	_, err = listReactors(context.Background(), targetId, types.ActivityCreate, viewer, nil)
	expectError(t, err, 400, "Unknown reaction type.")
}
