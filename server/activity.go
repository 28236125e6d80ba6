/******************************************************************************
 *
 *  Description :
 *
 *  Activity lifecycle: creation with address validation and inbox fan-out,
 *  reactions, soft deletion, and the timeline read paths.
 *
 *****************************************************************************/

package main

import (
	"context"
	"time"

	"github.com/isomorphiccat/kemotown/server/address"
	"github.com/isomorphiccat/kemotown/server/logs"
	"github.com/isomorphiccat/kemotown/server/perm"
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// coreActivityTypes are always accepted; plugins may declare more.
var coreActivityTypes = map[string]bool{
	t.ActivityCreate:   true,
	t.ActivityAnnounce: true,
	t.ActivityLike:     true,
	t.ActivityFollow:   true,
}

func logDeliveryFailure(activityID string, err error) {
	logs.Error.Println("inbox: delivery failed for activity", activityID, err)
}

func isKnownActivityType(atype string) bool {
	if coreActivityTypes[atype] {
		return true
	}
	for _, at := range globals.registry.AllActivityTypes() {
		if at == atype {
			return true
		}
	}
	return false
}

// createActivity validates, persists, fans out and broadcasts one new
// activity. Fan-out and broadcast are fire-and-forget side effects of the
// already persisted record.
func createActivity(reqCtx context.Context, actor t.Uid, act *t.Activity) (*t.Activity, error) {
	act.Actor = actor.String()

	if !isKnownActivityType(act.Type) {
		return nil, errBadRequest("Unknown activity type.")
	}
	if len(act.To) == 0 && len(act.Cc) == 0 {
		return nil, errBadRequest("Activity has no addressees.")
	}
	if bad := address.Validate(act.Addressees(), globals.registry); bad != "" {
		return nil, errBadRequest("Invalid address token: " + bad)
	}

	var ctx *t.Context
	if act.Context != "" {
		var err error
		ctx, err = store.Contexts.Get(t.ParseUid(act.Context))
		if err != nil {
			return nil, err
		}
		if ctx == nil {
			return nil, errNotFound("context")
		}
		ok, reason, err := hasPermissionWithReason(actor, ctx.Uid(), perm.ActivityCreate)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errForbidden(reason)
		}
	}

	category := t.CategoryMention
	if act.InReplyTo != "" {
		parent, err := store.Activities.Get(t.ParseUid(act.InReplyTo))
		if err != nil {
			return nil, err
		}
		if parent == nil || !globals.evaluator.CanSee(reqCtx, parent, actor) {
			return nil, errNotFound("activity")
		}
		category = t.CategoryReply
	} else if isDirectOnly(act) {
		category = t.CategoryDirect
	}

	act, err := store.Activities.Create(act)
	if err != nil {
		return nil, err
	}
	statsInc("ActivitiesCreatedTotal", 1)
	activitiesCreated.Inc()

	recipients := address.Recipients(act.To, act.Cc, actor)
	if len(recipients) > 0 {
		if err := store.Inbox.Deliver(act.Uid(), category, recipients); err != nil {
			// The activity is already persisted; notifications are
			// best-effort.
			logDeliveryFailure(act.Id, err)
		} else {
			statsInc("InboxDeliveriesTotal", len(recipients))
			inboxDeliveries.Add(float64(len(recipients)))
		}
	}

	if ctx != nil {
		globals.registry.OnActivityCreate(ctx, act)
	}

	broadcastNewActivity(act, recipients)

	return act, nil
}

// isDirectOnly reports whether the activity is addressed exclusively to
// individual users.
func isDirectOnly(act *t.Activity) bool {
	for _, raw := range act.Addressees() {
		if address.Parse(raw).Kind != address.KindUser {
			return false
		}
	}
	return true
}

// react records a like or announce of a visible target activity.
func react(reqCtx context.Context, actor t.Uid, target t.Uid, atype string) (*t.Activity, error) {
	if atype != t.ActivityLike && atype != t.ActivityAnnounce {
		return nil, errBadRequest("Unknown reaction type.")
	}

	orig, err := store.Activities.Get(target)
	if err != nil {
		return nil, err
	}
	if orig == nil || !globals.evaluator.CanSee(reqCtx, orig, actor) {
		return nil, errNotFound("activity")
	}

	author := t.ParseUid(orig.Actor)
	reaction := &t.Activity{
		Type:     atype,
		Actor:    actor.String(),
		To:       []string{address.ForUser(author)},
		Context:  orig.Context,
		ObjectId: orig.Id,
	}
	reaction, err = store.Activities.Create(reaction)
	if err != nil {
		return nil, err
	}

	if author != actor {
		category := t.CategoryLike
		if atype == t.ActivityAnnounce {
			category = t.CategoryRepost
		}
		if err := store.Inbox.Deliver(reaction.Uid(), category, []t.Uid{author}); err != nil {
			logDeliveryFailure(reaction.Id, err)
		} else {
			statsInc("InboxDeliveriesTotal", 1)
			inboxDeliveries.Inc()
		}
	}

	broadcastReaction(reaction, orig)

	return reaction, nil
}

// deleteActivity soft-deletes. Outside a context only the author may delete;
// inside, moderation permissions apply.
func deleteActivity(actor t.Uid, id t.Uid) error {
	act, err := store.Activities.Get(id)
	if err != nil {
		return err
	}
	if act == nil || act.IsDeleted() {
		return errNotFound("activity")
	}

	author := t.ParseUid(act.Actor)
	if act.Context == "" {
		if author != actor {
			return errForbidden("cannot delete others' activities")
		}
	} else {
		ok, reason, err := canActOnActivity(actor, t.ParseUid(act.Context), author, actionDelete)
		if err != nil {
			return err
		}
		if !ok {
			return errForbidden(reason)
		}
	}

	return store.Activities.MarkDeleted(id)
}

// TimelineItem is one decorated feed entry: the activity, the announced
// original when the entry is a repost, and the viewer's interaction state.
type TimelineItem struct {
	Activity t.Activity          `json:"activity"`
	Original *t.Activity         `json:"original,omitempty"`
	State    *t.InteractionState `json:"state,omitempty"`
}

// TimelinePage is a cursor-paginated feed response.
type TimelinePage struct {
	Items      []TimelineItem `json:"items"`
	NextCursor *time.Time     `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
}

// decoratePage resolves announce originals and the viewer's interaction
// states for a whole page in two extra round trips.
func decoratePage(page *store.Page, viewer t.Uid) (*TimelinePage, error) {
	out := &TimelinePage{
		Items:      make([]TimelineItem, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}

	originals, err := store.Activities.AnnounceTargets(page)
	if err != nil {
		return nil, err
	}

	var states map[t.Uid]t.InteractionState
	if !viewer.IsZero() && len(page.Items) > 0 {
		ids := make([]t.Uid, len(page.Items))
		for i := range page.Items {
			ids[i] = page.Items[i].Uid()
		}
		states, err = store.Activities.InteractionStates(viewer, ids)
		if err != nil {
			return nil, err
		}
	}

	for i := range page.Items {
		item := TimelineItem{Activity: page.Items[i]}
		if item.Activity.Type == t.ActivityAnnounce {
			item.Original = originals[item.Activity.ObjectId]
		}
		if states != nil {
			if state, found := states[item.Activity.Uid()]; found {
				item.State = &state
			}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// feedGlobal serves the public firehose. Viewer may be zero (anonymous).
func feedGlobal(viewer t.Uid, opts *t.QueryOpt) (*TimelinePage, error) {
	page, err := store.Activities.FeedGlobal(opts)
	if err != nil {
		return nil, err
	}
	return decoratePage(page, viewer)
}

// feedHome serves the viewer's home timeline. The audience filter is pushed
// entirely into the store query.
func feedHome(viewer t.Uid, opts *t.QueryOpt) (*TimelinePage, error) {
	page, err := store.Activities.FeedHome(viewer, opts)
	if err != nil {
		return nil, err
	}
	return decoratePage(page, viewer)
}

// feedContext serves a context's feed. The store applies the coarse filter;
// activities carrying dynamic audience tokens are re-checked per viewer
// because plugin resolvers cannot run inside the query.
func feedContext(reqCtx context.Context, ctx *t.Context, viewer t.Uid, opts *t.QueryOpt) (*TimelinePage, error) {
	if ctx.Visibility == t.VisibilityPrivate {
		ok, reason, err := hasPermissionWithReason(viewer, ctx.Uid(), perm.ContextView)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errForbidden(reason)
		}
	}

	page, err := store.Activities.FeedContext(ctx.Uid(), opts)
	if err != nil {
		return nil, err
	}

	kept := page.Items[:0]
	for i := range page.Items {
		if globals.evaluator.CanSee(reqCtx, &page.Items[i], viewer) {
			kept = append(kept, page.Items[i])
		}
	}
	page.Items = kept

	return decoratePage(page, viewer)
}

// feedProfile serves an author's activities as visible to the viewer.
func feedProfile(author, viewer t.Uid, opts *t.QueryOpt) (*TimelinePage, error) {
	page, err := store.Activities.FeedProfile(author, viewer, opts)
	if err != nil {
		return nil, err
	}
	return decoratePage(page, viewer)
}

// threadReplies serves a reply thread in ascending order. An invisible
// parent yields an empty page, not an error.
func threadReplies(reqCtx context.Context, parent t.Uid, viewer t.Uid, opts *t.QueryOpt) (*TimelinePage, error) {
	orig, err := store.Activities.Get(parent)
	if err != nil {
		return nil, err
	}
	if orig == nil || !globals.evaluator.CanSee(reqCtx, orig, viewer) {
		return &TimelinePage{Items: []TimelineItem{}}, nil
	}

	page, err := store.Activities.Replies(parent, opts)
	if err != nil {
		return nil, err
	}

	kept := page.Items[:0]
	for i := range page.Items {
		if globals.evaluator.CanSee(reqCtx, &page.Items[i], viewer) {
			kept = append(kept, page.Items[i])
		}
	}
	page.Items = kept

	return decoratePage(page, viewer)
}

// ReactorPage is a cursor-paginated listing of accounts which liked or
// announced an activity.
type ReactorPage struct {
	Items      []t.Reaction `json:"items"`
	NextCursor *time.Time   `json:"nextCursor,omitempty"`
	HasMore    bool         `json:"hasMore"`
}

// listReactors lists likers or reposters of an activity. An invisible
// target yields an empty result, not an error.
func listReactors(reqCtx context.Context, target t.Uid, atype string, viewer t.Uid, opts *t.QueryOpt) (*ReactorPage, error) {
	if atype != t.ActivityLike && atype != t.ActivityAnnounce {
		return nil, errBadRequest("Unknown reaction type.")
	}

	orig, err := store.Activities.Get(target)
	if err != nil {
		return nil, err
	}
	if orig == nil || !globals.evaluator.CanSee(reqCtx, orig, viewer) {
		return &ReactorPage{Items: []t.Reaction{}}, nil
	}

	reactions, err := store.Activities.Reactors(target, atype, opts)
	if err != nil {
		return nil, err
	}

	out := &ReactorPage{Items: reactions}
	pageSize := store.PageSize(opts)
	if len(out.Items) > pageSize {
		next := out.Items[pageSize].CreatedAt
		out.Items = out.Items[:pageSize]
		out.NextCursor = &next
		out.HasMore = true
	}
	if out.Items == nil {
		out.Items = []t.Reaction{}
	}
	return out, nil
}
