// Package adapter contains the interfaces to be implemented by the database adapter.
package adapter

import (
	"encoding/json"

	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// Adapter is the interface that must be implemented by a database adapter.
// The current schema supports a single connection by database type.
type Adapter interface {
	// General

	// Open and configure the adapter.
	Open(config json.RawMessage) error
	// Close the adapter.
	Close() error
	// IsOpen checks if the adapter is ready for use.
	IsOpen() bool
	// GetName returns the name of the adapter.
	GetName() string
	// SetMaxResults configures how many results can be returned in a single DB call.
	SetMaxResults(val int) error
	// CreateDb creates the database optionally dropping an existing database first.
	CreateDb(reset bool) error
	// CheckDbVersion checks if the actual database version matches adapter version.
	CheckDbVersion() error
	// Version returns adapter version.
	Version() int
	// Stats returns a DB connection stats object.
	Stats() any

	// Users

	// UserCreate creates a user record.
	UserCreate(user *t.User) error
	// UserGet returns a record for the given user id, (nil, nil) if missing.
	UserGet(uid t.Uid) (*t.User, error)
	// UserGetAll returns user records for the given list of user ids.
	UserGetAll(ids ...t.Uid) ([]t.User, error)

	// Contexts

	// ContextCreate creates a context record.
	ContextCreate(ctx *t.Context) error
	// ContextGet loads a single context by id, (nil, nil) if missing.
	ContextGet(id t.Uid) (*t.Context, error)
	// ContextGetBySlug loads a single context by slug, (nil, nil) if missing.
	ContextGetBySlug(slug string) (*t.Context, error)
	// ContextUpdate applies a partial update to a context record.
	ContextUpdate(id t.Uid, update map[string]any) error

	// Memberships

	// MembershipCreate inserts a membership. Returns types.ErrDuplicate if
	// the (context, user) pair already exists.
	MembershipCreate(sub *t.Membership) error
	// MembershipGet reads one membership by composite key, (nil, nil) if missing.
	MembershipGet(ctx, user t.Uid) (*t.Membership, error)
	// MembershipUpdate applies a partial update to a membership.
	MembershipUpdate(ctx, user t.Uid, update map[string]any) error
	// MembershipDelete removes a membership row. Used only when rejecting a
	// pending join request; all other transitions are status updates.
	MembershipDelete(ctx, user t.Uid) error
	// MembershipsForContext lists memberships of a context.
	MembershipsForContext(ctx t.Uid, opts *t.QueryOpt) ([]t.Membership, error)
	// MembershipsForUser lists all of the user's memberships.
	MembershipsForUser(user t.Uid) ([]t.Membership, error)

	// Follows

	// FollowUpsert creates or updates a follow relation.
	FollowUpsert(follow *t.Follow) error
	// FollowGet reads one follow relation, (nil, nil) if missing.
	FollowGet(follower, followee t.Uid) (*t.Follow, error)
	// FollowDelete removes a follow relation.
	FollowDelete(follower, followee t.Uid) error

	// Activities

	// ActivityCreate persists a new activity together with its address tokens.
	ActivityCreate(act *t.Activity) error
	// ActivityGet loads one activity by id including soft-deleted ones,
	// (nil, nil) if missing.
	ActivityGet(id t.Uid) (*t.Activity, error)
	// ActivityGetAll batch-loads activities by id, skipping missing and deleted.
	ActivityGetAll(ids ...t.Uid) ([]t.Activity, error)
	// ActivityMarkDeleted soft-deletes an activity.
	ActivityMarkDeleted(id t.Uid) error

	// Timeline queries. All of them exclude soft-deleted rows, apply the
	// cursor boundary from opts and return up to opts.Limit rows ordered by
	// creation time (descending except ActivityReplies).

	// ActivityFeedGlobal returns activities addressed to 'public'.
	ActivityFeedGlobal(opts *t.QueryOpt) ([]t.Activity, error)
	// ActivityFeedHome returns the viewer's own posts, posts of accepted
	// followees addressed to 'public' or 'followers', and anything directly
	// addressed to the viewer.
	ActivityFeedHome(viewer t.Uid, opts *t.QueryOpt) ([]t.Activity, error)
	// ActivityFeedContext returns activities posted into the given context.
	ActivityFeedContext(ctx t.Uid, opts *t.QueryOpt) ([]t.Activity, error)
	// ActivityFeedProfile returns the author's activities visible to the
	// viewer: 'public' always, 'followers' if the viewer is an accepted
	// follower, anything if the viewer is the author, and activities
	// directly addressed to the viewer.
	ActivityFeedProfile(author, viewer t.Uid, opts *t.QueryOpt) ([]t.Activity, error)
	// ActivityReplies returns replies to the given activity in ascending
	// creation order.
	ActivityReplies(parent t.Uid, opts *t.QueryOpt) ([]t.Activity, error)

	// Interactions

	// InteractionStates reports liked/reposted flags of the viewer for each
	// of the given activities in one query.
	InteractionStates(viewer t.Uid, ids []t.Uid) (map[t.Uid]t.InteractionState, error)
	// Reactors lists accounts which reacted to the target with the given
	// activity type ('like' or 'announce'), newest first.
	Reactors(target t.Uid, actType string, opts *t.QueryOpt) ([]t.Reaction, error)

	// Inbox

	// InboxAdd bulk-inserts notification records skipping duplicates, so
	// repeated delivery attempts are idempotent.
	InboxAdd(items []*t.InboxItem) error
	// InboxGet lists the user's notifications, newest first, muted excluded.
	InboxGet(user t.Uid, opts *t.QueryOpt) ([]t.InboxItem, error)
	// InboxMarkRead marks the given activities' notifications as read.
	InboxMarkRead(user t.Uid, activities []t.Uid) error
	// InboxMarkAllRead marks all of the user's notifications as read.
	InboxMarkAllRead(user t.Uid) error
	// InboxMute hides one notification from listings and counts. Rows are
	// never physically deleted.
	InboxMute(user t.Uid, activity t.Uid) error
	// InboxUnreadCounts returns per-category unread counts, muted excluded.
	InboxUnreadCounts(user t.Uid) (map[string]int, error)
}
