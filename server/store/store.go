// Package store provides methods for registering and accessing database adapters.
package store

import (
	"encoding/json"
	"errors"
	"time"

	adapter "github.com/isomorphiccat/kemotown/server/db"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

var adp adapter.Adapter
var availableAdapters = make(map[string]adapter.Adapter)

// Unique ID generator.
var uGen t.UidGenerator

// Page size used when the caller does not specify a limit.
const defaultPageSize = 32

// maxResults as configured for the store; feed limits are clamped to it.
var maxResults = 1024

type configType struct {
	// 16-byte key for XTEA. Used to initialize types.UidGenerator.
	UidKey []byte `json:"uid_key"`
	// Maximum number of results to return from the adapter.
	MaxResults int `json:"max_results"`
	// DB adapter name to use. Should be one of those specified in `Adapters`.
	UseAdapter string `json:"use_adapter"`
	// Configurations for individual adapters.
	Adapters map[string]json.RawMessage `json:"adapters"`
}

func openAdapter(workerId int, jsonconf json.RawMessage) error {
	var config configType
	if err := json.Unmarshal(jsonconf, &config); err != nil {
		return errors.New("store: failed to parse config: " + err.Error())
	}

	if adp == nil {
		if len(config.UseAdapter) > 0 {
			// Adapter name specified explicitly.
			if ad, ok := availableAdapters[config.UseAdapter]; ok {
				adp = ad
			} else {
				return errors.New("store: " + config.UseAdapter + " adapter is not available in this binary")
			}
		} else if len(availableAdapters) == 1 {
			// Default to the only entry in availableAdapters.
			for _, v := range availableAdapters {
				adp = v
			}
		} else {
			return errors.New("store: db adapter is not specified")
		}
	}

	if adp.IsOpen() {
		return errors.New("store: connection is already opened")
	}

	// Initialize snowflake.
	if workerId < 0 || workerId > 1023 {
		return errors.New("store: invalid worker ID")
	}

	if err := uGen.Init(uint(workerId), config.UidKey); err != nil {
		return errors.New("store: failed to init snowflake: " + err.Error())
	}

	if config.MaxResults > 0 {
		maxResults = config.MaxResults
	}
	if err := adp.SetMaxResults(maxResults); err != nil {
		return err
	}

	var adapterConfig json.RawMessage
	if config.Adapters != nil {
		adapterConfig = config.Adapters[adp.GetName()]
	}

	return adp.Open(adapterConfig)
}

// PersistentStorageInterface defines methods used for interaction with persistent storage.
type PersistentStorageInterface interface {
	Open(workerId int, jsonconf json.RawMessage) error
	Close() error
	IsOpen() bool
	GetAdapterName() string
	GetAdapterVersion() int
	InitDb(jsonconf json.RawMessage, reset bool) error
	GetUid() t.Uid
	GetUidString() string
	DbStats() func() any
}

// Store is the main object for interacting with persistent storage.
var Store PersistentStorageInterface

type storeObj struct{}

// Open initializes the persistence system. Adapter holds a connection pool
// for a database instance.
func (storeObj) Open(workerId int, jsonconf json.RawMessage) error {
	if err := openAdapter(workerId, jsonconf); err != nil {
		return err
	}

	return adp.CheckDbVersion()
}

// Close terminates connection to persistent storage.
func (storeObj) Close() error {
	if adp.IsOpen() {
		return adp.Close()
	}

	return nil
}

// IsOpen checks if persistent storage connection has been initialized.
func (storeObj) IsOpen() bool {
	if adp != nil {
		return adp.IsOpen()
	}

	return false
}

// GetAdapterName returns the name of the current adapter.
func (storeObj) GetAdapterName() string {
	if adp != nil {
		return adp.GetName()
	}

	return ""
}

// GetAdapterVersion returns version of the current adapter.
func (storeObj) GetAdapterVersion() int {
	if adp != nil {
		return adp.Version()
	}

	return -1
}

// InitDb creates and configures a new database instance. If 'reset' is true
// it will first attempt to drop an existing database. If jsonconf is non-nil
// and the adapter is not open, the config string is used to open it first.
func (s storeObj) InitDb(jsonconf json.RawMessage, reset bool) error {
	if !s.IsOpen() {
		if err := openAdapter(1, jsonconf); err != nil {
			return err
		}
	}
	return adp.CreateDb(reset)
}

// RegisterAdapter makes a persistence adapter available.
// If it is called twice or if the adapter is nil, it panics.
func RegisterAdapter(a adapter.Adapter) {
	if a == nil {
		panic("store: Register adapter is nil")
	}

	adapterName := a.GetName()
	if _, ok := availableAdapters[adapterName]; ok {
		panic("store: adapter '" + adapterName + "' is already registered")
	}
	availableAdapters[adapterName] = a
}

// GetUid generates a unique ID suitable for use as a primary key.
func (storeObj) GetUid() t.Uid {
	return uGen.Get()
}

// GetUidString generates a unique ID as a string.
func (storeObj) GetUidString() string {
	return uGen.GetStr()
}

// DecodeUid takes an XTEA encrypted Uid and decrypts it into an int64.
// This is needed for SQL compatibility: the original int64 values are
// generated by snowflake which ensures that the top bit is unset.
func DecodeUid(uid t.Uid) int64 {
	if uid.IsZero() {
		return 0
	}
	return uGen.DecodeUid(uid)
}

// EncodeUid applies XTEA encryption to an int64 value. It's the inverse of DecodeUid.
func EncodeUid(id int64) t.Uid {
	if id == 0 {
		return t.ZeroUid
	}
	return uGen.EncodeInt64(id)
}

// SetTestUidGenerator sets the uid codec directly, bypassing Open. Test use
// only.
func SetTestUidGenerator(ug t.UidGenerator) {
	uGen = ug
}

// DbStats returns a callback returning the db connection stats object.
func (s storeObj) DbStats() func() any {
	if !s.IsOpen() {
		return nil
	}
	return adp.Stats
}

// Page is one window of a cursor-paginated feed.
type Page struct {
	Items []t.Activity `json:"items"`
	// Creation time of the row after the last returned one; boundary for
	// the next query, exclusive. Nil when HasMore is false.
	NextCursor *time.Time `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

// clampLimit normalizes the requested page size.
func clampLimit(opts *t.QueryOpt) (t.QueryOpt, int) {
	var out t.QueryOpt
	if opts != nil {
		out = *opts
	}
	if out.Limit <= 0 {
		out.Limit = defaultPageSize
	}
	if out.Limit > maxResults {
		out.Limit = maxResults
	}
	pageSize := out.Limit
	// Fetch one extra row to detect whether more pages exist without a
	// separate count query.
	out.Limit = pageSize + 1
	return out, pageSize
}

// PageSize returns the effective page size for the given query options.
func PageSize(opts *t.QueryOpt) int {
	_, pageSize := clampLimit(opts)
	return pageSize
}

// trimPage converts a raw limit+1 result set into a Page.
func trimPage(items []t.Activity, pageSize int) *Page {
	page := &Page{Items: items}
	if len(items) > pageSize {
		// The extra row is not returned; its timestamp becomes the cursor.
		next := items[pageSize].CreatedAt
		page.Items = items[:pageSize]
		page.NextCursor = &next
		page.HasMore = true
	}
	return page
}

// UsersPersistenceInterface holds the methods for persistence mapping of User objects.
type UsersPersistenceInterface interface {
	Create(user *t.User) (*t.User, error)
	Get(uid t.Uid) (*t.User, error)
	GetAll(uids ...t.Uid) ([]t.User, error)
}

type usersMapper struct{}

// Users is the anchor for storing/retrieving User objects.
var Users UsersPersistenceInterface

// Create inserts a User object into the database, assigns an id and timestamps.
func (usersMapper) Create(user *t.User) (*t.User, error) {
	user.SetUid(Store.GetUid())
	user.InitTimes()

	if err := adp.UserCreate(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns a user object for the given user id.
func (usersMapper) Get(uid t.Uid) (*t.User, error) {
	return adp.UserGet(uid)
}

// GetAll returns a slice of user objects for the given user ids.
func (usersMapper) GetAll(uids ...t.Uid) ([]t.User, error) {
	return adp.UserGetAll(uids...)
}

// ContextsPersistenceInterface holds the methods for persistence mapping of Context objects.
type ContextsPersistenceInterface interface {
	Create(ctx *t.Context, owner t.Uid) (*t.Context, error)
	Get(id t.Uid) (*t.Context, error)
	GetBySlug(slug string) (*t.Context, error)
	Update(id t.Uid, update map[string]any) error
	Archive(id t.Uid) error
}

type contextsMapper struct{}

// Contexts is the anchor for storing/retrieving Context objects.
var Contexts ContextsPersistenceInterface

// Create creates a context and the owner's APPROVED OWNER membership.
func (contextsMapper) Create(ctx *t.Context, owner t.Uid) (*t.Context, error) {
	ctx.SetUid(Store.GetUid())
	ctx.InitTimes()
	ctx.Owner = owner.String()

	if err := adp.ContextCreate(ctx); err != nil {
		return nil, err
	}

	err := Memberships.Create(&t.Membership{
		CreatedAt: ctx.CreatedAt,
		Context:   ctx.Id,
		User:      ctx.Owner,
		Role:      t.RoleOwner,
		Status:    t.StatusApproved,
	})
	if err != nil {
		return nil, err
	}

	return ctx, nil
}

// Get loads a single context by id.
func (contextsMapper) Get(id t.Uid) (*t.Context, error) {
	return adp.ContextGet(id)
}

// GetBySlug loads a single context by its slug.
func (contextsMapper) GetBySlug(slug string) (*t.Context, error) {
	return adp.ContextGetBySlug(slug)
}

// Update is a generic context update.
func (contextsMapper) Update(id t.Uid, update map[string]any) error {
	if _, ok := update["UpdatedAt"]; !ok {
		update["UpdatedAt"] = t.TimeNow()
	}
	return adp.ContextUpdate(id, update)
}

// Archive soft-hides the context from listings. Not a delete.
func (contextsMapper) Archive(id t.Uid) error {
	return adp.ContextUpdate(id, map[string]any{"Archived": true, "UpdatedAt": t.TimeNow()})
}

// MembershipsPersistenceInterface holds the methods for persistence mapping
// of Membership objects.
type MembershipsPersistenceInterface interface {
	Create(sub *t.Membership) error
	Get(ctx, user t.Uid) (*t.Membership, error)
	Update(ctx, user t.Uid, update map[string]any) error
	Delete(ctx, user t.Uid) error
	GetForContext(ctx t.Uid, opts *t.QueryOpt) ([]t.Membership, error)
	GetForUser(user t.Uid) ([]t.Membership, error)
}

type membershipsMapper struct{}

// Memberships is the anchor for storing/retrieving Membership objects.
var Memberships MembershipsPersistenceInterface

// Create inserts a membership record. The unique (context, user) key is the
// safety net for duplicate-join races: the second insert fails with
// types.ErrDuplicate.
func (membershipsMapper) Create(sub *t.Membership) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = t.TimeNow()
	}
	sub.UpdatedAt = sub.CreatedAt
	return adp.MembershipCreate(sub)
}

// Get reads the given membership.
func (membershipsMapper) Get(ctx, user t.Uid) (*t.Membership, error) {
	return adp.MembershipGet(ctx, user)
}

// Update changes values of a membership.
func (membershipsMapper) Update(ctx, user t.Uid, update map[string]any) error {
	if _, ok := update["UpdatedAt"]; !ok {
		update["UpdatedAt"] = t.TimeNow()
	}
	return adp.MembershipUpdate(ctx, user, update)
}

// Delete removes a membership row. Reject-of-pending only.
func (membershipsMapper) Delete(ctx, user t.Uid) error {
	return adp.MembershipDelete(ctx, user)
}

// GetForContext lists memberships of the given context.
func (membershipsMapper) GetForContext(ctx t.Uid, opts *t.QueryOpt) ([]t.Membership, error) {
	return adp.MembershipsForContext(ctx, opts)
}

// GetForUser lists all memberships of the given user.
func (membershipsMapper) GetForUser(user t.Uid) ([]t.Membership, error) {
	return adp.MembershipsForUser(user)
}

// FollowsPersistenceInterface holds the methods for persistence mapping of
// Follow relations.
type FollowsPersistenceInterface interface {
	Upsert(follow *t.Follow) error
	Get(follower, followee t.Uid) (*t.Follow, error)
	Delete(follower, followee t.Uid) error
	IsAccepted(follower, followee t.Uid) (bool, error)
}

type followsMapper struct{}

// Follows is the anchor for storing/retrieving Follow relations.
var Follows FollowsPersistenceInterface

// Upsert creates or updates a follow relation.
func (followsMapper) Upsert(follow *t.Follow) error {
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = t.TimeNow()
	}
	return adp.FollowUpsert(follow)
}

// Get reads one follow relation.
func (followsMapper) Get(follower, followee t.Uid) (*t.Follow, error) {
	return adp.FollowGet(follower, followee)
}

// Delete removes a follow relation.
func (followsMapper) Delete(follower, followee t.Uid) error {
	return adp.FollowDelete(follower, followee)
}

// IsAccepted reports whether follower is an accepted follower of followee.
func (followsMapper) IsAccepted(follower, followee t.Uid) (bool, error) {
	f, err := adp.FollowGet(follower, followee)
	if err != nil {
		return false, err
	}
	return f != nil && f.Status == t.FollowAccepted, nil
}

// ActivitiesPersistenceInterface holds the methods for persistence mapping
// of Activity objects and timeline queries.
type ActivitiesPersistenceInterface interface {
	Create(act *t.Activity) (*t.Activity, error)
	Get(id t.Uid) (*t.Activity, error)
	GetAll(ids ...t.Uid) ([]t.Activity, error)
	MarkDeleted(id t.Uid) error
	FeedGlobal(opts *t.QueryOpt) (*Page, error)
	FeedHome(viewer t.Uid, opts *t.QueryOpt) (*Page, error)
	FeedContext(ctx t.Uid, opts *t.QueryOpt) (*Page, error)
	FeedProfile(author, viewer t.Uid, opts *t.QueryOpt) (*Page, error)
	Replies(parent t.Uid, opts *t.QueryOpt) (*Page, error)
	AnnounceTargets(page *Page) (map[string]*t.Activity, error)
	InteractionStates(viewer t.Uid, ids []t.Uid) (map[t.Uid]t.InteractionState, error)
	Reactors(target t.Uid, actType string, opts *t.QueryOpt) ([]t.Reaction, error)
}

type activitiesMapper struct{}

// Activities is the anchor for storing/retrieving Activity objects.
var Activities ActivitiesPersistenceInterface

// Create persists an activity, assigning an id and timestamps. Once saved
// the record is immutable except for the soft-delete flag.
func (activitiesMapper) Create(act *t.Activity) (*t.Activity, error) {
	act.SetUid(Store.GetUid())
	act.InitTimes()

	if err := adp.ActivityCreate(act); err != nil {
		return nil, err
	}
	return act, nil
}

// Get loads one activity including soft-deleted ones.
func (activitiesMapper) Get(id t.Uid) (*t.Activity, error) {
	return adp.ActivityGet(id)
}

// GetAll batch-loads activities, skipping missing and deleted ones.
func (activitiesMapper) GetAll(ids ...t.Uid) ([]t.Activity, error) {
	return adp.ActivityGetAll(ids...)
}

// MarkDeleted soft-deletes an activity.
func (activitiesMapper) MarkDeleted(id t.Uid) error {
	return adp.ActivityMarkDeleted(id)
}

// FeedGlobal returns one page of the public firehose.
func (activitiesMapper) FeedGlobal(opts *t.QueryOpt) (*Page, error) {
	qopt, pageSize := clampLimit(opts)
	items, err := adp.ActivityFeedGlobal(&qopt)
	if err != nil {
		return nil, err
	}
	return trimPage(items, pageSize), nil
}

// FeedHome returns one page of the viewer's home timeline.
func (activitiesMapper) FeedHome(viewer t.Uid, opts *t.QueryOpt) (*Page, error) {
	qopt, pageSize := clampLimit(opts)
	items, err := adp.ActivityFeedHome(viewer, &qopt)
	if err != nil {
		return nil, err
	}
	return trimPage(items, pageSize), nil
}

// FeedContext returns one page of a context's feed.
func (activitiesMapper) FeedContext(ctx t.Uid, opts *t.QueryOpt) (*Page, error) {
	qopt, pageSize := clampLimit(opts)
	items, err := adp.ActivityFeedContext(ctx, &qopt)
	if err != nil {
		return nil, err
	}
	return trimPage(items, pageSize), nil
}

// FeedProfile returns one page of an author's profile feed as seen by viewer.
func (activitiesMapper) FeedProfile(author, viewer t.Uid, opts *t.QueryOpt) (*Page, error) {
	qopt, pageSize := clampLimit(opts)
	items, err := adp.ActivityFeedProfile(author, viewer, &qopt)
	if err != nil {
		return nil, err
	}
	return trimPage(items, pageSize), nil
}

// Replies returns one page of a reply thread in ascending order.
func (activitiesMapper) Replies(parent t.Uid, opts *t.QueryOpt) (*Page, error) {
	qopt, pageSize := clampLimit(opts)
	items, err := adp.ActivityReplies(parent, &qopt)
	if err != nil {
		return nil, err
	}
	return trimPage(items, pageSize), nil
}

// AnnounceTargets batch-fetches original activities referenced by announce
// items on the page, in a single additional query. The result is keyed by
// activity id.
func (activitiesMapper) AnnounceTargets(page *Page) (map[string]*t.Activity, error) {
	var ids []t.Uid
	seen := make(map[string]bool)
	for i := range page.Items {
		act := &page.Items[i]
		if act.Type != t.ActivityAnnounce || act.ObjectId == "" || seen[act.ObjectId] {
			continue
		}
		seen[act.ObjectId] = true
		if id := t.ParseUid(act.ObjectId); !id.IsZero() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]*t.Activity{}, nil
	}

	targets, err := adp.ActivityGetAll(ids...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*t.Activity, len(targets))
	for i := range targets {
		out[targets[i].Id] = &targets[i]
	}
	return out, nil
}

// InteractionStates resolves liked/reposted flags for a whole page in one
// round trip.
func (activitiesMapper) InteractionStates(viewer t.Uid, ids []t.Uid) (map[t.Uid]t.InteractionState, error) {
	if len(ids) == 0 {
		return map[t.Uid]t.InteractionState{}, nil
	}
	return adp.InteractionStates(viewer, ids)
}

// Reactors lists accounts which liked or announced the target.
func (activitiesMapper) Reactors(target t.Uid, actType string, opts *t.QueryOpt) ([]t.Reaction, error) {
	qopt, _ := clampLimit(opts)
	return adp.Reactors(target, actType, &qopt)
}

// InboxPersistenceInterface holds the methods for persistence mapping of
// InboxItem objects.
type InboxPersistenceInterface interface {
	Deliver(activity t.Uid, category string, recipients []t.Uid) error
	Get(user t.Uid, opts *t.QueryOpt) ([]t.InboxItem, error)
	MarkRead(user t.Uid, activities []t.Uid) error
	MarkAllRead(user t.Uid) error
	Mute(user t.Uid, activity t.Uid) error
	UnreadCounts(user t.Uid) (map[string]int, error)
}

type inboxMapper struct{}

// Inbox is the anchor for storing/retrieving InboxItem objects.
var Inbox InboxPersistenceInterface

// Deliver fans one activity out into durable notification records. Relies
// on the adapter's duplicate-skip insert for idempotence.
func (inboxMapper) Deliver(activity t.Uid, category string, recipients []t.Uid) error {
	if len(recipients) == 0 {
		return nil
	}
	now := t.TimeNow()
	items := make([]*t.InboxItem, 0, len(recipients))
	for _, uid := range recipients {
		items = append(items, &t.InboxItem{
			CreatedAt: now,
			User:      uid.String(),
			Activity:  activity.String(),
			Category:  category,
		})
	}
	return adp.InboxAdd(items)
}

// Get lists the user's notifications, newest first.
func (inboxMapper) Get(user t.Uid, opts *t.QueryOpt) ([]t.InboxItem, error) {
	qopt, _ := clampLimit(opts)
	return adp.InboxGet(user, &qopt)
}

// MarkRead marks notifications for the given activities as read. Scoped by
// the owning user: one user cannot mutate another's inbox.
func (inboxMapper) MarkRead(user t.Uid, activities []t.Uid) error {
	if len(activities) == 0 {
		return nil
	}
	return adp.InboxMarkRead(user, activities)
}

// MarkAllRead marks all of the user's notifications as read.
func (inboxMapper) MarkAllRead(user t.Uid) error {
	return adp.InboxMarkAllRead(user)
}

// Mute implements notification deletion: the record is hidden, not removed.
func (inboxMapper) Mute(user t.Uid, activity t.Uid) error {
	return adp.InboxMute(user, activity)
}

// UnreadCounts returns unread counts per category plus a "total" bucket
// which excludes the direct-message category.
func (inboxMapper) UnreadCounts(user t.Uid) (map[string]int, error) {
	counts, err := adp.InboxUnreadCounts(user)
	if err != nil {
		return nil, err
	}
	total := 0
	for cat, n := range counts {
		if cat != t.CategoryDirect {
			total += n
		}
	}
	counts["total"] = total
	return counts, nil
}

func init() {
	Store = storeObj{}
	Users = usersMapper{}
	Contexts = contextsMapper{}
	Memberships = membershipsMapper{}
	Follows = followsMapper{}
	Activities = activitiesMapper{}
	Inbox = inboxMapper{}
}
