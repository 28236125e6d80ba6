// Package types defines entities stored by the persistence layer.
package types

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"
)

// Uid is a database-specific record id, suitable to be used as a primary key.
type Uid uint64

// ZeroUid is a value of an unset Uid.
var ZeroUid Uid

const (
	uidBase64Unpadded = 11
	uidBase64Padded   = 12
)

// Common storage errors.
var (
	// ErrNotFound is returned when the requested object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("duplicate object")
	// ErrMalformed is returned when a request cannot be parsed.
	ErrMalformed = errors.New("malformed request")
	// ErrPermissionDenied is returned when an actor lacks rights to an object.
	ErrPermissionDenied = errors.New("permission denied")
)

// IsZero returns true if the Uid is unset.
func (uid Uid) IsZero() bool {
	return uid == 0
}

// MarshalBinary converts Uid to byte slice.
func (uid Uid) MarshalBinary() ([]byte, error) {
	dst := make([]byte, 8)
	binary.LittleEndian.PutUint64(dst, uint64(uid))
	return dst, nil
}

// UnmarshalBinary reads Uid from a byte slice.
func (uid *Uid) UnmarshalBinary(b []byte) error {
	if len(b) < 8 {
		return errors.New("Uid.UnmarshalBinary: invalid length")
	}
	*uid = Uid(binary.LittleEndian.Uint64(b))
	return nil
}

// UnmarshalText reads Uid from its base64 text representation.
func (uid *Uid) UnmarshalText(src []byte) error {
	if len(src) != uidBase64Unpadded {
		return errors.New("Uid.UnmarshalText: invalid length")
	}
	dec := make([]byte, base64.URLEncoding.DecodedLen(uidBase64Padded))
	for len(src) < uidBase64Padded {
		src = append(src, '=')
	}
	count, err := base64.URLEncoding.Decode(dec, src)
	if count < 8 {
		if err != nil {
			return errors.New("Uid.UnmarshalText: failed to decode " + err.Error())
		}
		return errors.New("Uid.UnmarshalText: failed to decode")
	}
	*uid = Uid(binary.LittleEndian.Uint64(dec))
	return nil
}

// MarshalText converts Uid to base64 text. Zero Uid becomes an empty string.
func (uid Uid) MarshalText() ([]byte, error) {
	if uid == 0 {
		return []byte{}, nil
	}
	src := make([]byte, 8)
	dst := make([]byte, base64.URLEncoding.EncodedLen(8))
	binary.LittleEndian.PutUint64(src, uint64(uid))
	base64.URLEncoding.Encode(dst, src)
	return dst[0:uidBase64Unpadded], nil
}

// MarshalJSON converts Uid to a quoted string.
func (uid Uid) MarshalJSON() ([]byte, error) {
	dst, _ := uid.MarshalText()
	return append(append([]byte{'"'}, dst...), '"'), nil
}

// UnmarshalJSON reads Uid from a quoted string.
func (uid *Uid) UnmarshalJSON(b []byte) error {
	size := len(b)
	if size != (uidBase64Unpadded + 2) {
		return errors.New("Uid.UnmarshalJSON: invalid length")
	} else if b[0] != '"' || b[size-1] != '"' {
		return errors.New("Uid.UnmarshalJSON: unrecognized")
	}
	return uid.UnmarshalText(b[1 : size-1])
}

// String returns the base64 text representation of the Uid.
func (uid Uid) String() string {
	buf, _ := uid.MarshalText()
	return string(buf)
}

// ParseUid parses a base64 string into an Uid. Returns ZeroUid on failure.
func ParseUid(s string) Uid {
	var uid Uid
	uid.UnmarshalText([]byte(s))
	return uid
}

// TimeNow returns current wall time in UTC rounded to milliseconds.
func TimeNow() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

// ObjHeader is the header shared by all stored objects.
type ObjHeader struct {
	Id        string `json:"id,omitempty"`
	id        Uid
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Uid returns the id of the object as Uid.
func (h *ObjHeader) Uid() Uid {
	if h.id.IsZero() && h.Id != "" {
		h.id.UnmarshalText([]byte(h.Id))
	}
	return h.id
}

// SetUid assigns the given Uid to the object.
func (h *ObjHeader) SetUid(uid Uid) {
	h.id = uid
	h.Id = uid.String()
}

// InitTimes initializes time.Time variables in the header to current time.
func (h *ObjHeader) InitTimes() {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = TimeNow()
	}
	h.UpdatedAt = h.CreatedAt
	h.DeletedAt = nil
}

// IsDeleted returns true if the object is soft-deleted.
func (h *ObjHeader) IsDeleted() bool {
	return h.DeletedAt != nil
}

// Role is a member's rank inside a context. Lower hierarchy index means
// higher privilege.
type Role int

// Roles, from the most to the least privileged.
const (
	RoleOwner Role = iota
	RoleAdmin
	RoleModerator
	RoleMember
	RoleGuest

	roleCount
)

var roleNames = []string{"owner", "admin", "moderator", "member", "guest"}

// String returns the lowercase name of the role.
func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "unknown"
	}
	return roleNames[r]
}

// IsValid checks if the value is one of the defined roles.
func (r Role) IsValid() bool {
	return r >= RoleOwner && r < roleCount
}

// MarshalText converts Role to a string name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, errors.New("Role: invalid value")
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText parses a role name. Lowercase only.
func (r *Role) UnmarshalText(b []byte) error {
	name := string(b)
	for i, rn := range roleNames {
		if rn == name {
			*r = Role(i)
			return nil
		}
	}
	return errors.New("Role: unrecognized name '" + name + "'")
}

// ParseRole converts a role name to a Role. The second value is false if
// the name is not recognized.
func ParseRole(s string) (Role, bool) {
	var r Role
	if err := r.UnmarshalText([]byte(s)); err != nil {
		return RoleGuest, false
	}
	return r, true
}

// MemberStatus is the state of a user's membership in a context.
type MemberStatus int

// Membership states.
const (
	StatusPending MemberStatus = iota
	StatusApproved
	StatusBanned
	StatusLeft
)

var memberStatusNames = []string{"pending", "approved", "banned", "left"}

// String returns the lowercase name of the status.
func (s MemberStatus) String() string {
	if s < StatusPending || s > StatusLeft {
		return "unknown"
	}
	return memberStatusNames[s]
}

// MarshalText converts MemberStatus to a string name.
func (s MemberStatus) MarshalText() ([]byte, error) {
	if s < StatusPending || s > StatusLeft {
		return nil, errors.New("MemberStatus: invalid value")
	}
	return []byte(memberStatusNames[s]), nil
}

// UnmarshalText parses a status name.
func (s *MemberStatus) UnmarshalText(b []byte) error {
	name := string(b)
	for i, sn := range memberStatusNames {
		if sn == name {
			*s = MemberStatus(i)
			return nil
		}
	}
	return errors.New("MemberStatus: unrecognized name '" + name + "'")
}

// KVMap is a free-form key-value container used for plugin configuration
// and per-plugin membership data. Unknown keys must be ignored by consumers.
type KVMap map[string]any

// Copy returns a shallow copy of the map.
func (m KVMap) Copy() KVMap {
	if m == nil {
		return nil
	}
	out := make(KVMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// JoinPolicy controls how users become members of a context.
type JoinPolicy int

// Join policies.
const (
	// JoinOpen: anyone may join, membership is approved immediately.
	JoinOpen JoinPolicy = iota
	// JoinApproval: join requests wait for moderator approval.
	JoinApproval
	// JoinInvite: only invited users may join.
	JoinInvite
)

// Visibility of a context.
type Visibility int

// Context visibility values.
const (
	VisibilityPublic Visibility = iota
	VisibilityUnlisted
	VisibilityPrivate
)

// User is a minimal account record. Authentication is external; the engine
// only needs the account to exist and carry public profile data.
type User struct {
	ObjHeader
	Handle string `json:"handle"`
	Public any    `json:"public,omitempty"`
}

// Context is a group, event or convention container.
type Context struct {
	ObjHeader
	Kind       string     `json:"kind"`
	Slug       string     `json:"slug"`
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
	JoinPolicy JoinPolicy `json:"join_policy"`
	Owner      string     `json:"owner"`
	// Ids of enabled feature plugins.
	Features []string `json:"features,omitempty"`
	// Per-plugin configuration, keyed by plugin id.
	PluginConfig KVMap `json:"plugin_config,omitempty"`
	// Archived contexts are hidden from listings but not deleted.
	Archived bool `json:"archived,omitempty"`
}

// HasFeature checks if the given plugin is enabled for the context.
func (c *Context) HasFeature(pluginID string) bool {
	for _, f := range c.Features {
		if f == pluginID {
			return true
		}
	}
	return false
}

// Membership binds one user to one context. Unique on (Context, User).
type Membership struct {
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Context   string       `json:"context"`
	User      string       `json:"user"`
	Role      Role         `json:"role"`
	Status    MemberStatus `json:"status"`
	// Per-permission grant/revoke overriding role defaults. A key present
	// with value true grants, false revokes. Missing key defers to role.
	Overrides map[string]bool `json:"overrides,omitempty"`
	// Free-form per-plugin state (e.g. RSVP), keyed by plugin id.
	PluginData KVMap `json:"plugin_data,omitempty"`
}

// IsApproved returns true if the membership is in the APPROVED state.
// A membership grants no permissions in any other state.
func (m *Membership) IsApproved() bool {
	return m != nil && m.Status == StatusApproved
}

// Activity types. Plugins may declare additional ones.
const (
	ActivityCreate   = "create"
	ActivityAnnounce = "announce"
	ActivityLike     = "like"
	ActivityFollow   = "follow"
)

// Activity is an immutable-once-published unit of content or action.
// The To/Cc address tokens are the sole source of truth for visibility.
type Activity struct {
	ObjHeader
	Type       string   `json:"type"`
	Actor      string   `json:"actor"`
	ObjectType string   `json:"object_type,omitempty"`
	Object     any      `json:"object,omitempty"`
	To         []string `json:"to,omitempty"`
	Cc         []string `json:"cc,omitempty"`
	// Id of the context the activity was posted into, if any.
	Context string `json:"context,omitempty"`
	// Id of the parent activity for replies.
	InReplyTo string `json:"in_reply_to,omitempty"`
	// Id of the target activity for likes and announces.
	ObjectId string `json:"object_id,omitempty"`
}

// Addressees returns the union of To and Cc.
func (a *Activity) Addressees() []string {
	out := make([]string, 0, len(a.To)+len(a.Cc))
	out = append(out, a.To...)
	return append(out, a.Cc...)
}

// Inbox categories, i.e. notification buckets.
const (
	CategoryMention = "mention"
	CategoryReply   = "reply"
	CategoryLike    = "like"
	CategoryRepost  = "repost"
	CategoryFollow  = "follow"
	CategoryDirect  = "direct"
)

// InboxCategories lists all notification buckets.
var InboxCategories = []string{
	CategoryMention, CategoryReply, CategoryLike,
	CategoryRepost, CategoryFollow, CategoryDirect,
}

// InboxItem is a durable notification record. Unique on (User, Activity).
type InboxItem struct {
	CreatedAt time.Time `json:"created_at"`
	User      string    `json:"user"`
	Activity  string    `json:"activity"`
	Category  string    `json:"category"`
	Read      bool      `json:"read"`
	// Muted items are hidden from listings and counts. Deleting a
	// notification mutes it, the row is never removed.
	Muted bool `json:"muted"`
}

// FollowStatus is the state of a follow relation.
type FollowStatus int

// Follow states.
const (
	FollowPending FollowStatus = iota
	FollowAccepted
)

// Follow is a directed follower relation. Unique on (Follower, Followee).
type Follow struct {
	CreatedAt time.Time    `json:"created_at"`
	Follower  string       `json:"follower"`
	Followee  string       `json:"followee"`
	Status    FollowStatus `json:"status"`
}

// Reaction is one account's like or announce of an activity, as returned
// by likers/reposters listings.
type Reaction struct {
	Actor     User      `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// InteractionState reports the viewer's relation to one activity.
type InteractionState struct {
	Liked    bool `json:"liked"`
	Reposted bool `json:"reposted"`
}

// QueryOpt is a pagination window for feed and listing queries.
type QueryOpt struct {
	// Exclusive cursor boundary: rows strictly older (descending feeds) or
	// strictly newer (ascending reply threads) than Cursor.
	Cursor *time.Time
	// Maximum number of rows requested by the caller.
	Limit int
	// Include replies in profile and context feeds.
	WithReplies bool
}
