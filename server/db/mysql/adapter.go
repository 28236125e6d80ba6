// Package mysql is a database adapter for MySQL.
package mysql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	ms "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// adapter holds MySQL connection data.
type adapter struct {
	db         *sqlx.DB
	dsn        string
	dbName     string
	maxResults int
	version    int
}

const (
	defaultDSN      = "root:@tcp(localhost:3306)/kemotown?parseTime=true"
	defaultDatabase = "kemotown"

	adpVersion = 100

	adapterName = "mysql"

	defaultMaxResults = 1024
)

type configType struct {
	DSN    string `json:"dsn,omitempty"`
	DBName string `json:"database,omitempty"`
}

// Open initializes the MySQL connection pool.
func (a *adapter) Open(jsonconfig json.RawMessage) error {
	if a.db != nil {
		return errors.New("mysql adapter is already connected")
	}

	var err error
	var config configType

	if jsonconfig != nil {
		if err = json.Unmarshal(jsonconfig, &config); err != nil {
			return errors.New("mysql adapter failed to parse config: " + err.Error())
		}
	}

	a.dsn = config.DSN
	if a.dsn == "" {
		a.dsn = defaultDSN
	}

	a.dbName = config.DBName
	if a.dbName == "" {
		a.dbName = defaultDatabase
	}

	a.db, err = sqlx.Open("mysql", a.dsn)
	if err != nil {
		return err
	}

	// sql.Open does not open the network connection.
	// Force network connection here.
	if err = a.db.Ping(); err != nil {
		return err
	}

	a.version = -1

	return nil
}

// Close closes the underlying database connection.
func (a *adapter) Close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
		a.db = nil
		a.version = -1
	}
	return err
}

// IsOpen returns true if connection to database has been established. It
// does not check if the connection is actually live.
func (a *adapter) IsOpen() bool {
	return a.db != nil
}

// GetName returns string that adapter uses to register itself with store.
func (a *adapter) GetName() string {
	return adapterName
}

// SetMaxResults configures how many results can be returned in a single DB call.
func (a *adapter) SetMaxResults(val int) error {
	if val <= 0 {
		a.maxResults = defaultMaxResults
	} else {
		a.maxResults = val
	}

	return nil
}

// Read current database version.
func (a *adapter) getDbVersion() (int, error) {
	var vers int
	err := a.db.Get(&vers, "SELECT `value` FROM kvmeta WHERE `key`='version'")
	if err != nil {
		return -1, err
	}
	a.version = vers

	return a.version, nil
}

// CheckDbVersion checks whether the actual DB version matches the expected
// version of this adapter.
func (a *adapter) CheckDbVersion() error {
	version, err := a.getDbVersion()
	if err != nil {
		return err
	}

	if version != adpVersion {
		return errors.New("Invalid database version " + strconv.Itoa(version) +
			". Expected " + strconv.Itoa(adpVersion))
	}

	return nil
}

// Version returns adapter version.
func (a *adapter) Version() int {
	return adpVersion
}

// Stats returns connection pool stats.
func (a *adapter) Stats() any {
	if a.db == nil {
		return nil
	}
	return a.db.Stats()
}

// CreateDb initializes the storage.
func (a *adapter) CreateDb(reset bool) error {
	var err error
	var tx *sql.Tx

	// Can't use the pooled connection because it's configured with a database
	// name which may not exist yet. Open a separate nameless connection.
	// This DSN has been parsed before and produced no error, not checking for errors here.
	cfg, _ := ms.ParseDSN(a.dsn)
	cfg.DBName = ""

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if tx, err = db.Begin(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if reset {
		if _, err = tx.Exec("DROP DATABASE IF EXISTS " + a.dbName); err != nil {
			return err
		}
	}

	if _, err = tx.Exec("CREATE DATABASE " + a.dbName + " CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"); err != nil {
		return err
	}

	if _, err = tx.Exec("USE " + a.dbName); err != nil {
		return err
	}

	if _, err = tx.Exec(
		`CREATE TABLE users(
			id        BIGINT NOT NULL,
			createdat DATETIME(3) NOT NULL,
			updatedat DATETIME(3) NOT NULL,
			deletedat DATETIME(3),
			handle    VARCHAR(32) NOT NULL,
			public    JSON,
			PRIMARY KEY(id),
			UNIQUE INDEX users_handle(handle)
		)`); err != nil {
		return err
	}

	if _, err = tx.Exec(
		`CREATE TABLE contexts(
			id           BIGINT NOT NULL,
			createdat    DATETIME(3) NOT NULL,
			updatedat    DATETIME(3) NOT NULL,
			deletedat    DATETIME(3),
			kind         VARCHAR(32) NOT NULL,
			slug         VARCHAR(64) NOT NULL,
			name         VARCHAR(255) NOT NULL,
			visibility   SMALLINT NOT NULL DEFAULT 0,
			joinpolicy   SMALLINT NOT NULL DEFAULT 0,
			owner        BIGINT NOT NULL,
			features     JSON,
			pluginconfig JSON,
			archived     TINYINT NOT NULL DEFAULT 0,
			PRIMARY KEY(id),
			UNIQUE INDEX contexts_slug(slug)
		)`); err != nil {
		return err
	}

	if _, err = tx.Exec(
		`CREATE TABLE memberships(
			contextid  BIGINT NOT NULL,
			userid     BIGINT NOT NULL,
			createdat  DATETIME(3) NOT NULL,
			updatedat  DATETIME(3) NOT NULL,
			role       SMALLINT NOT NULL,
			status     SMALLINT NOT NULL,
			overrides  JSON,
			plugindata JSON,
			PRIMARY KEY(contextid, userid),
			INDEX memberships_userid(userid)
		)`); err != nil {
		return err
	}

	if _, err = tx.Exec(
		`CREATE TABLE follows(
			follower  BIGINT NOT NULL,
			followee  BIGINT NOT NULL,
			createdat DATETIME(3) NOT NULL,
			status    SMALLINT NOT NULL,
			PRIMARY KEY(follower, followee),
			INDEX follows_followee(followee)
		)`); err != nil {
		return err
	}

	if _, err = tx.Exec(
		`CREATE TABLE activities(
			id         BIGINT NOT NULL,
			createdat  DATETIME(3) NOT NULL,
			updatedat  DATETIME(3) NOT NULL,
			deletedat  DATETIME(3),
			type       VARCHAR(32) NOT NULL,
			actor      BIGINT NOT NULL,
			objecttype VARCHAR(32),
			object     JSON,
			tto        JSON,
			cc         JSON,
			contextid  BIGINT,
			inreplyto  BIGINT,
			objectid   BIGINT,
			PRIMARY KEY(id),
			INDEX activities_createdat(createdat),
			INDEX activities_actor(actor, createdat),
			INDEX activities_context(contextid, createdat),
			INDEX activities_inreplyto(inreplyto, createdat),
			INDEX activities_objectid(objectid, type, actor)
		)`); err != nil {
		return err
	}

	// Address tokens are denormalized into a separate indexed table so feed
	// filters can join on them, same as user tags in 'usertags'.
	if _, err = tx.Exec(
		`CREATE TABLE addressees(
			activityid BIGINT NOT NULL,
			token      VARCHAR(96) NOT NULL,
			PRIMARY KEY(activityid, token),
			INDEX addressees_token(token, activityid)
		)`); err != nil {
		return err
	}

	if _, err = tx.Exec(
		`CREATE TABLE inbox(
			userid     BIGINT NOT NULL,
			activityid BIGINT NOT NULL,
			createdat  DATETIME(3) NOT NULL,
			category   VARCHAR(16) NOT NULL,
			isread     TINYINT NOT NULL DEFAULT 0,
			muted      TINYINT NOT NULL DEFAULT 0,
			PRIMARY KEY(userid, activityid),
			INDEX inbox_unread(userid, isread, muted)
		)`); err != nil {
		return err
	}

	if _, err = tx.Exec(
		"CREATE TABLE kvmeta(`key` CHAR(32), `value` TEXT, PRIMARY KEY(`key`))"); err != nil {
		return err
	}
	if _, err = tx.Exec("INSERT INTO kvmeta(`key`, `value`) VALUES('version', ?)", adpVersion); err != nil {
		return err
	}

	return tx.Commit()
}

// User management

// UserCreate creates a user record.
func (a *adapter) UserCreate(user *t.User) error {
	_, err := a.db.Exec("INSERT INTO users(id,createdat,updatedat,handle,public) VALUES(?,?,?,?,?)",
		store.DecodeUid(user.Uid()), user.CreatedAt, user.UpdatedAt, user.Handle, toJSON(user.Public))
	if err != nil && isDupe(err) {
		return t.ErrDuplicate
	}
	return err
}

// UserGet returns a record for the given user id.
func (a *adapter) UserGet(uid t.Uid) (*t.User, error) {
	rows, err := a.db.Query(
		"SELECT id,createdat,updatedat,deletedat,handle,public FROM users WHERE id=? AND deletedat IS NULL",
		store.DecodeUid(uid))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	user, err := scanUser(rows)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UserGetAll returns user records for the given list of user ids.
func (a *adapter) UserGetAll(ids ...t.Uid) ([]t.User, error) {
	uids := make([]any, len(ids))
	for i, id := range ids {
		uids[i] = store.DecodeUid(id)
	}

	q, uids, _ := sqlx.In(
		"SELECT id,createdat,updatedat,deletedat,handle,public FROM users WHERE id IN (?) AND deletedat IS NULL",
		uids)
	rows, err := a.db.Query(q, uids...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []t.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Context management

// ContextCreate creates a context record.
func (a *adapter) ContextCreate(ctx *t.Context) error {
	_, err := a.db.Exec(
		"INSERT INTO contexts(id,createdat,updatedat,kind,slug,name,visibility,joinpolicy,owner,features,pluginconfig,archived) "+
			"VALUES(?,?,?,?,?,?,?,?,?,?,?,?)",
		store.DecodeUid(ctx.Uid()), ctx.CreatedAt, ctx.UpdatedAt, ctx.Kind, ctx.Slug, ctx.Name,
		ctx.Visibility, ctx.JoinPolicy, decodeString(ctx.Owner), toJSON(ctx.Features),
		toJSON(ctx.PluginConfig), ctx.Archived)
	if err != nil && isDupe(err) {
		return t.ErrDuplicate
	}
	return err
}

const contextCols = "id,createdat,updatedat,deletedat,kind,slug,name,visibility,joinpolicy,owner,features,pluginconfig,archived"

// ContextGet loads a single context by id.
func (a *adapter) ContextGet(id t.Uid) (*t.Context, error) {
	return a.contextGetBy("id=?", store.DecodeUid(id))
}

// ContextGetBySlug loads a single context by slug.
func (a *adapter) ContextGetBySlug(slug string) (*t.Context, error) {
	return a.contextGetBy("slug=?", slug)
}

func (a *adapter) contextGetBy(cond string, arg any) (*t.Context, error) {
	rows, err := a.db.Query("SELECT "+contextCols+" FROM contexts WHERE "+cond+" AND deletedat IS NULL", arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanContext(rows)
}

// ContextUpdate applies a partial update to a context record.
func (a *adapter) ContextUpdate(id t.Uid, update map[string]any) error {
	cols, args := updateByMap(update)
	args = append(args, store.DecodeUid(id))
	_, err := a.db.Exec("UPDATE contexts SET "+strings.Join(cols, ",")+" WHERE id=?", args...)
	return err
}

// Membership management

// MembershipCreate inserts a membership record.
func (a *adapter) MembershipCreate(sub *t.Membership) error {
	_, err := a.db.Exec(
		"INSERT INTO memberships(contextid,userid,createdat,updatedat,role,status,overrides,plugindata) "+
			"VALUES(?,?,?,?,?,?,?,?)",
		decodeString(sub.Context), decodeString(sub.User), sub.CreatedAt, sub.UpdatedAt,
		sub.Role, sub.Status, toJSON(sub.Overrides), toJSON(sub.PluginData))
	if err != nil && isDupe(err) {
		return t.ErrDuplicate
	}
	return err
}

const membershipCols = "contextid,userid,createdat,updatedat,role,status,overrides,plugindata"

// MembershipGet reads one membership by composite key.
func (a *adapter) MembershipGet(ctx, user t.Uid) (*t.Membership, error) {
	rows, err := a.db.Query(
		"SELECT "+membershipCols+" FROM memberships WHERE contextid=? AND userid=?",
		store.DecodeUid(ctx), store.DecodeUid(user))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanMembership(rows)
}

// MembershipUpdate applies a partial update to a membership.
func (a *adapter) MembershipUpdate(ctx, user t.Uid, update map[string]any) error {
	cols, args := updateByMap(update)
	args = append(args, store.DecodeUid(ctx), store.DecodeUid(user))
	_, err := a.db.Exec("UPDATE memberships SET "+strings.Join(cols, ",")+
		" WHERE contextid=? AND userid=?", args...)
	return err
}

// MembershipDelete removes a membership row.
func (a *adapter) MembershipDelete(ctx, user t.Uid) error {
	res, err := a.db.Exec("DELETE FROM memberships WHERE contextid=? AND userid=?",
		store.DecodeUid(ctx), store.DecodeUid(user))
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return t.ErrNotFound
	}
	return nil
}

// MembershipsForContext lists memberships of a context.
func (a *adapter) MembershipsForContext(ctx t.Uid, opts *t.QueryOpt) ([]t.Membership, error) {
	limit := a.maxResults
	if opts != nil && opts.Limit > 0 && opts.Limit < limit {
		limit = opts.Limit
	}

	rows, err := a.db.Query(
		"SELECT "+membershipCols+" FROM memberships WHERE contextid=? ORDER BY createdat LIMIT ?",
		store.DecodeUid(ctx), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemberships(rows)
}

// MembershipsForUser lists all of the user's memberships.
func (a *adapter) MembershipsForUser(user t.Uid) ([]t.Membership, error) {
	rows, err := a.db.Query(
		"SELECT "+membershipCols+" FROM memberships WHERE userid=? ORDER BY createdat LIMIT ?",
		store.DecodeUid(user), a.maxResults)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemberships(rows)
}

// Follow management

// FollowUpsert creates or updates a follow relation.
func (a *adapter) FollowUpsert(follow *t.Follow) error {
	_, err := a.db.Exec(
		"INSERT INTO follows(follower,followee,createdat,status) VALUES(?,?,?,?) "+
			"ON DUPLICATE KEY UPDATE status=VALUES(status)",
		decodeString(follow.Follower), decodeString(follow.Followee), follow.CreatedAt, follow.Status)
	return err
}

// FollowGet reads one follow relation.
func (a *adapter) FollowGet(follower, followee t.Uid) (*t.Follow, error) {
	var createdAt time.Time
	var status int
	err := a.db.QueryRow("SELECT createdat,status FROM follows WHERE follower=? AND followee=?",
		store.DecodeUid(follower), store.DecodeUid(followee)).Scan(&createdAt, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t.Follow{
		CreatedAt: createdAt,
		Follower:  follower.String(),
		Followee:  followee.String(),
		Status:    t.FollowStatus(status),
	}, nil
}

// FollowDelete removes a follow relation.
func (a *adapter) FollowDelete(follower, followee t.Uid) error {
	_, err := a.db.Exec("DELETE FROM follows WHERE follower=? AND followee=?",
		store.DecodeUid(follower), store.DecodeUid(followee))
	return err
}

// Activity management

// ActivityCreate persists a new activity and its address tokens.
func (a *adapter) ActivityCreate(act *t.Activity) error {
	tx, err := a.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	decodedID := store.DecodeUid(act.Uid())
	_, err = tx.Exec(
		"INSERT INTO activities(id,createdat,updatedat,type,actor,objecttype,object,tto,cc,contextid,inreplyto,objectid) "+
			"VALUES(?,?,?,?,?,?,?,?,?,?,?,?)",
		decodedID, act.CreatedAt, act.UpdatedAt, act.Type, decodeString(act.Actor),
		act.ObjectType, toJSON(act.Object), toJSON(act.To), toJSON(act.Cc),
		decodeNullable(act.Context), decodeNullable(act.InReplyTo), decodeNullable(act.ObjectId))
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, token := range act.Addressees() {
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		if _, err = tx.Exec("INSERT INTO addressees(activityid,token) VALUES(?,?)", decodedID, token); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const activityCols = "id,createdat,updatedat,deletedat,type,actor,objecttype,object,tto,cc,contextid,inreplyto,objectid"

// ActivityGet loads one activity including soft-deleted ones.
func (a *adapter) ActivityGet(id t.Uid) (*t.Activity, error) {
	rows, err := a.db.Query("SELECT "+activityCols+" FROM activities WHERE id=?", store.DecodeUid(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanActivity(rows)
}

// ActivityGetAll batch-loads activities by id, skipping missing and deleted.
func (a *adapter) ActivityGetAll(ids ...t.Uid) ([]t.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	uids := make([]any, len(ids))
	for i, id := range ids {
		uids[i] = store.DecodeUid(id)
	}

	q, uids, _ := sqlx.In("SELECT "+activityCols+" FROM activities WHERE id IN (?) AND deletedat IS NULL", uids)
	rows, err := a.db.Query(q, uids...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ActivityMarkDeleted soft-deletes an activity.
func (a *adapter) ActivityMarkDeleted(id t.Uid) error {
	now := t.TimeNow()
	res, err := a.db.Exec("UPDATE activities SET updatedat=?,deletedat=? WHERE id=? AND deletedat IS NULL",
		now, now, store.DecodeUid(id))
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return t.ErrNotFound
	}
	return nil
}

// feedWindow renders the shared cursor/order/limit tail of feed queries.
// Descending feeds use 'createdat < cursor', ascending threads flip both.
func feedWindow(opts *t.QueryOpt, ascending bool) (string, []any) {
	var clause string
	var args []any
	if opts != nil && opts.Cursor != nil {
		if ascending {
			clause = " AND a.createdat>?"
		} else {
			clause = " AND a.createdat<?"
		}
		args = append(args, *opts.Cursor)
	}
	if ascending {
		clause += " ORDER BY a.createdat ASC LIMIT ?"
	} else {
		clause += " ORDER BY a.createdat DESC LIMIT ?"
	}
	args = append(args, opts.Limit)
	return clause, args
}

// ActivityFeedGlobal returns activities addressed to 'public'.
func (a *adapter) ActivityFeedGlobal(opts *t.QueryOpt) ([]t.Activity, error) {
	tail, targs := feedWindow(opts, false)
	args := append([]any{}, targs...)

	rows, err := a.db.Query(
		"SELECT "+prefixed(activityCols)+" FROM activities AS a"+
			" JOIN addressees AS ad ON ad.activityid=a.id AND ad.token='public'"+
			" WHERE a.deletedat IS NULL"+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ActivityFeedHome returns the viewer's home timeline page.
func (a *adapter) ActivityFeedHome(viewer t.Uid, opts *t.QueryOpt) ([]t.Activity, error) {
	tail, targs := feedWindow(opts, false)
	uid := store.DecodeUid(viewer)
	args := []any{uid, "user:" + viewer.String(), uid}
	args = append(args, targs...)

	rows, err := a.db.Query(
		"SELECT DISTINCT "+prefixed(activityCols)+" FROM activities AS a"+
			" JOIN addressees AS ad ON ad.activityid=a.id"+
			" WHERE a.deletedat IS NULL AND (a.actor=? OR ad.token=?"+
			" OR (ad.token IN ('public','followers') AND a.actor IN"+
			" (SELECT followee FROM follows WHERE follower=? AND status=1)))"+tail,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ActivityFeedContext returns activities posted into the given context.
func (a *adapter) ActivityFeedContext(ctx t.Uid, opts *t.QueryOpt) ([]t.Activity, error) {
	tail, targs := feedWindow(opts, false)
	filter := " AND a.inreplyto IS NULL"
	if opts != nil && opts.WithReplies {
		filter = ""
	}
	args := []any{store.DecodeUid(ctx)}
	args = append(args, targs...)

	rows, err := a.db.Query(
		"SELECT "+prefixed(activityCols)+" FROM activities AS a"+
			" WHERE a.deletedat IS NULL AND a.contextid=?"+filter+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ActivityFeedProfile returns the author's activities visible to the viewer.
func (a *adapter) ActivityFeedProfile(author, viewer t.Uid, opts *t.QueryOpt) ([]t.Activity, error) {
	tail, targs := feedWindow(opts, false)
	filter := " AND a.inreplyto IS NULL"
	if opts != nil && opts.WithReplies {
		filter = ""
	}

	if author == viewer {
		// Authors see their own profile unfiltered.
		args := append([]any{store.DecodeUid(author)}, targs...)
		rows, err := a.db.Query(
			"SELECT "+prefixed(activityCols)+" FROM activities AS a"+
				" WHERE a.deletedat IS NULL AND a.actor=?"+filter+tail, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanActivities(rows)
	}

	args := []any{store.DecodeUid(author), "user:" + viewer.String(),
		store.DecodeUid(viewer), store.DecodeUid(author)}
	args = append(args, targs...)

	rows, err := a.db.Query(
		"SELECT DISTINCT "+prefixed(activityCols)+" FROM activities AS a"+
			" JOIN addressees AS ad ON ad.activityid=a.id"+
			" WHERE a.deletedat IS NULL AND a.actor=?"+filter+
			" AND (ad.token='public' OR ad.token=?"+
			" OR (ad.token='followers' AND EXISTS"+
			" (SELECT 1 FROM follows WHERE follower=? AND followee=? AND status=1)))"+tail,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ActivityReplies returns replies in ascending creation order.
func (a *adapter) ActivityReplies(parent t.Uid, opts *t.QueryOpt) ([]t.Activity, error) {
	tail, targs := feedWindow(opts, true)
	args := append([]any{store.DecodeUid(parent)}, targs...)

	rows, err := a.db.Query(
		"SELECT "+prefixed(activityCols)+" FROM activities AS a"+
			" WHERE a.deletedat IS NULL AND a.inreplyto=?"+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// InteractionStates reports liked/reposted flags for a page of activities
// in one query.
func (a *adapter) InteractionStates(viewer t.Uid, ids []t.Uid) (map[t.Uid]t.InteractionState, error) {
	uids := make([]any, len(ids))
	for i, id := range ids {
		uids[i] = store.DecodeUid(id)
	}

	q, args, _ := sqlx.In(
		"SELECT objectid,type FROM activities WHERE actor=? AND deletedat IS NULL"+
			" AND type IN ('like','announce') AND objectid IN (?)",
		store.DecodeUid(viewer), uids)
	rows, err := a.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[t.Uid]t.InteractionState, len(ids))
	for _, id := range ids {
		states[id] = t.InteractionState{}
	}
	for rows.Next() {
		var objectid int64
		var actType string
		if err = rows.Scan(&objectid, &actType); err != nil {
			return nil, err
		}
		id := store.EncodeUid(objectid)
		state := states[id]
		switch actType {
		case t.ActivityLike:
			state.Liked = true
		case t.ActivityAnnounce:
			state.Reposted = true
		}
		states[id] = state
	}
	return states, rows.Err()
}

// Reactors lists accounts which reacted to the target, newest reaction first.
func (a *adapter) Reactors(target t.Uid, actType string, opts *t.QueryOpt) ([]t.Reaction, error) {
	var args []any
	cursor := ""
	if opts != nil && opts.Cursor != nil {
		cursor = " AND a.createdat<?"
	}
	args = append(args, store.DecodeUid(target), actType)
	if cursor != "" {
		args = append(args, *opts.Cursor)
	}
	args = append(args, opts.Limit)

	rows, err := a.db.Query(
		"SELECT u.id,u.createdat,u.updatedat,u.deletedat,u.handle,u.public,a.createdat"+
			" FROM activities AS a JOIN users AS u ON u.id=a.actor"+
			" WHERE a.objectid=? AND a.type=? AND a.deletedat IS NULL"+cursor+
			" ORDER BY a.createdat DESC LIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []t.Reaction
	for rows.Next() {
		var r t.Reaction
		var id int64
		var deletedAt sql.NullTime
		var public []byte
		if err = rows.Scan(&id, &r.Actor.CreatedAt, &r.Actor.UpdatedAt, &deletedAt,
			&r.Actor.Handle, &public, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Actor.SetUid(store.EncodeUid(id))
		if deletedAt.Valid {
			r.Actor.DeletedAt = &deletedAt.Time
		}
		r.Actor.Public = fromJSON(public)
		reactions = append(reactions, r)
	}
	return reactions, rows.Err()
}

// Inbox management

// InboxAdd bulk-inserts notification records skipping duplicates.
func (a *adapter) InboxAdd(items []*t.InboxItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := a.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// INSERT IGNORE makes redundant delivery a no-op on the unique
	// (userid, activityid) key.
	insert, err := tx.Prepare(
		"INSERT IGNORE INTO inbox(userid,activityid,createdat,category,isread,muted) VALUES(?,?,?,?,0,0)")
	if err != nil {
		return err
	}
	for _, item := range items {
		if _, err = insert.Exec(decodeString(item.User), decodeString(item.Activity),
			item.CreatedAt, item.Category); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// InboxGet lists the user's notifications, newest first, muted excluded.
func (a *adapter) InboxGet(user t.Uid, opts *t.QueryOpt) ([]t.InboxItem, error) {
	var args []any
	cursor := ""
	if opts != nil && opts.Cursor != nil {
		cursor = " AND createdat<?"
	}
	args = append(args, store.DecodeUid(user))
	if cursor != "" {
		args = append(args, *opts.Cursor)
	}
	args = append(args, opts.Limit)

	rows, err := a.db.Query(
		"SELECT userid,activityid,createdat,category,isread,muted FROM inbox"+
			" WHERE userid=? AND muted=0"+cursor+" ORDER BY createdat DESC LIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []t.InboxItem
	for rows.Next() {
		var item t.InboxItem
		var userid, activityid int64
		if err = rows.Scan(&userid, &activityid, &item.CreatedAt, &item.Category,
			&item.Read, &item.Muted); err != nil {
			return nil, err
		}
		item.User = store.EncodeUid(userid).String()
		item.Activity = store.EncodeUid(activityid).String()
		items = append(items, item)
	}
	return items, rows.Err()
}

// InboxMarkRead marks the given activities' notifications as read.
func (a *adapter) InboxMarkRead(user t.Uid, activities []t.Uid) error {
	ids := make([]any, len(activities))
	for i, id := range activities {
		ids[i] = store.DecodeUid(id)
	}

	q, args, _ := sqlx.In("UPDATE inbox SET isread=1 WHERE userid=? AND activityid IN (?)",
		store.DecodeUid(user), ids)
	_, err := a.db.Exec(q, args...)
	return err
}

// InboxMarkAllRead marks all of the user's notifications as read.
func (a *adapter) InboxMarkAllRead(user t.Uid) error {
	_, err := a.db.Exec("UPDATE inbox SET isread=1 WHERE userid=? AND isread=0", store.DecodeUid(user))
	return err
}

// InboxMute hides one notification. The row is kept.
func (a *adapter) InboxMute(user t.Uid, activity t.Uid) error {
	res, err := a.db.Exec("UPDATE inbox SET muted=1 WHERE userid=? AND activityid=?",
		store.DecodeUid(user), store.DecodeUid(activity))
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return t.ErrNotFound
	}
	return nil
}

// InboxUnreadCounts returns per-category unread counts in a single grouped query.
func (a *adapter) InboxUnreadCounts(user t.Uid) (map[string]int, error) {
	rows, err := a.db.Query(
		"SELECT category,COUNT(*) FROM inbox WHERE userid=? AND isread=0 AND muted=0 GROUP BY category",
		store.DecodeUid(user))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err = rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// Helper functions

// Check if the error is MySQL Error 1062: Duplicate entry ... for key ...
func isDupe(err error) bool {
	if err == nil {
		return false
	}
	myerr, ok := err.(*ms.MySQLError)
	return ok && myerr.Number == 1062
}

// Convert to JSON before storing to a JSON field.
func toJSON(src any) []byte {
	if src == nil {
		return nil
	}

	jval, _ := json.Marshal(src)
	return jval
}

// Deserialize JSON data from the DB.
func fromJSON(src []byte) any {
	if len(src) == 0 {
		return nil
	}
	var out any
	json.Unmarshal(src, &out)
	return out
}

// UIDs are stored as decoded int64 values. Take the base64 string
// representation of an Uid, produce the stored value.
func decodeString(str string) int64 {
	return store.DecodeUid(t.ParseUid(str))
}

// decodeNullable converts an optional Uid string to a nullable column value.
func decodeNullable(str string) any {
	if str == "" {
		return nil
	}
	return decodeString(str)
}

// encodeNullable converts a nullable int64 column back to an Uid string.
func encodeNullable(val sql.NullInt64) string {
	if !val.Valid {
		return ""
	}
	return store.EncodeUid(val.Int64).String()
}

// prefixed qualifies a comma-separated column list with the "a." alias.
func prefixed(cols string) string {
	return "a." + strings.ReplaceAll(cols, ",", ",a.")
}

// updateByMap converts a partial update map into SQL assignments. Map keys
// are Go field names; values requiring JSON serialization are converted.
func updateByMap(update map[string]any) (cols []string, args []any) {
	for col, arg := range update {
		col = strings.ToLower(col)
		switch col {
		case "features", "pluginconfig", "overrides", "plugindata", "public", "object":
			arg = toJSON(arg)
		}
		cols = append(cols, col+"=?")
		args = append(args, arg)
	}
	return
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(rows rowScanner) (*t.User, error) {
	var user t.User
	var id int64
	var deletedAt sql.NullTime
	var public []byte
	if err := rows.Scan(&id, &user.CreatedAt, &user.UpdatedAt, &deletedAt, &user.Handle, &public); err != nil {
		return nil, err
	}
	user.SetUid(store.EncodeUid(id))
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	user.Public = fromJSON(public)
	return &user, nil
}

func scanContext(rows rowScanner) (*t.Context, error) {
	var ctx t.Context
	var id, owner int64
	var deletedAt sql.NullTime
	var features, pluginConfig []byte
	if err := rows.Scan(&id, &ctx.CreatedAt, &ctx.UpdatedAt, &deletedAt, &ctx.Kind, &ctx.Slug,
		&ctx.Name, &ctx.Visibility, &ctx.JoinPolicy, &owner, &features, &pluginConfig,
		&ctx.Archived); err != nil {
		return nil, err
	}
	ctx.SetUid(store.EncodeUid(id))
	if deletedAt.Valid {
		ctx.DeletedAt = &deletedAt.Time
	}
	ctx.Owner = store.EncodeUid(owner).String()
	if features != nil {
		json.Unmarshal(features, &ctx.Features)
	}
	if pluginConfig != nil {
		json.Unmarshal(pluginConfig, &ctx.PluginConfig)
	}
	return &ctx, nil
}

func scanMembership(rows rowScanner) (*t.Membership, error) {
	var sub t.Membership
	var contextid, userid int64
	var overrides, pluginData []byte
	if err := rows.Scan(&contextid, &userid, &sub.CreatedAt, &sub.UpdatedAt, &sub.Role,
		&sub.Status, &overrides, &pluginData); err != nil {
		return nil, err
	}
	sub.Context = store.EncodeUid(contextid).String()
	sub.User = store.EncodeUid(userid).String()
	if overrides != nil {
		json.Unmarshal(overrides, &sub.Overrides)
	}
	if pluginData != nil {
		json.Unmarshal(pluginData, &sub.PluginData)
	}
	return &sub, nil
}

func scanMemberships(rows *sql.Rows) ([]t.Membership, error) {
	var subs []t.Membership
	for rows.Next() {
		sub, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func scanActivity(rows rowScanner) (*t.Activity, error) {
	var act t.Activity
	var id, actor int64
	var deletedAt sql.NullTime
	var objectType sql.NullString
	var object, to, cc []byte
	var contextid, inReplyTo, objectid sql.NullInt64
	if err := rows.Scan(&id, &act.CreatedAt, &act.UpdatedAt, &deletedAt, &act.Type, &actor,
		&objectType, &object, &to, &cc, &contextid, &inReplyTo, &objectid); err != nil {
		return nil, err
	}
	act.SetUid(store.EncodeUid(id))
	if deletedAt.Valid {
		act.DeletedAt = &deletedAt.Time
	}
	act.Actor = store.EncodeUid(actor).String()
	act.ObjectType = objectType.String
	act.Object = fromJSON(object)
	if to != nil {
		json.Unmarshal(to, &act.To)
	}
	if cc != nil {
		json.Unmarshal(cc, &act.Cc)
	}
	act.Context = encodeNullable(contextid)
	act.InReplyTo = encodeNullable(inReplyTo)
	act.ObjectId = encodeNullable(objectid)
	return &act, nil
}

func scanActivities(rows *sql.Rows) ([]t.Activity, error) {
	var acts []t.Activity
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		acts = append(acts, *act)
	}
	return acts, rows.Err()
}

func init() {
	store.RegisterAdapter(&adapter{})
}
