/******************************************************************************
 *
 *  Description :
 *
 *  HTTP API endpoints. Thin JSON shims over the operation layer.
 *
 *****************************************************************************/

package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

func decodeReq(req *http.Request, into any) error {
	if err := json.NewDecoder(req.Body).Decode(into); err != nil {
		return errBadRequest("Malformed request body.")
	}
	return nil
}

// parseQueryOpt reads pagination parameters from the query string.
func parseQueryOpt(req *http.Request) *t.QueryOpt {
	opts := &t.QueryOpt{}
	if v := req.FormValue("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := req.FormValue("cursor"); v != "" {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			opts.Cursor = &ts
		}
	}
	opts.WithReplies = req.FormValue("replies") == "true"
	return opts
}

// viewerUid extracts the authenticated user if a token is present. Public
// read paths accept anonymous viewers.
func viewerUid(req *http.Request) t.Uid {
	uid, _ := checkSessionToken(getSessionToken(req))
	return uid
}

func parseUidValue(req *http.Request, name string) (t.Uid, error) {
	uid := t.ParseUid(req.PathValue(name))
	if uid.IsZero() {
		return t.ZeroUid, errBadRequest("Malformed " + name + " id.")
	}
	return uid, nil
}

// Accounts

func handleUserCreate(wrt http.ResponseWriter, req *http.Request) {
	var body struct {
		Handle string `json:"handle"`
		Public any    `json:"public"`
	}
	if err := decodeReq(req, &body); err != nil {
		writeError(wrt, err)
		return
	}
	if body.Handle == "" {
		writeError(wrt, errBadRequest("Handle is required."))
		return
	}

	user, err := store.Users.Create(&t.User{Handle: body.Handle, Public: body.Public})
	if err != nil {
		if err == t.ErrDuplicate {
			writeError(wrt, errBadRequest("Handle is already taken."))
			return
		}
		writeError(wrt, err)
		return
	}

	writeJSON(wrt, http.StatusCreated, user)
}

// handleTokenIssue mints a session token. The endpoint is meant for the
// trusted web frontend which performs its own login; credential checking
// is not part of this service.
func handleTokenIssue(wrt http.ResponseWriter, req *http.Request) {
	var body struct {
		User string `json:"user"`
	}
	if err := decodeReq(req, &body); err != nil {
		writeError(wrt, err)
		return
	}
	uid := t.ParseUid(body.User)
	if uid.IsZero() {
		writeError(wrt, errBadRequest("Malformed user id."))
		return
	}
	user, err := store.Users.Get(uid)
	if err != nil {
		writeError(wrt, err)
		return
	}
	if user == nil {
		writeError(wrt, errNotFound("user"))
		return
	}

	writeJSON(wrt, http.StatusOK, map[string]any{
		"token":      makeSessionToken(uid, globals.tokenExpiresIn),
		"expires_in": int(globals.tokenExpiresIn.Seconds()),
	})
}

// Contexts

func handleContextCreate(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	var ctx t.Context
	if err := decodeReq(req, &ctx); err != nil {
		writeError(wrt, err)
		return
	}

	created, err := createContext(uid, &ctx)
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusCreated, created)
}

func handleContextGet(wrt http.ResponseWriter, req *http.Request) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}

	if ctx.Visibility == t.VisibilityPrivate {
		sub, err := store.Memberships.Get(ctx.Uid(), viewerUid(req))
		if err != nil {
			writeError(wrt, err)
			return
		}
		if !sub.IsApproved() {
			// Fail closed without revealing existence.
			writeError(wrt, errNotFound("context"))
			return
		}
	}

	writeJSON(wrt, http.StatusOK, ctx)
}

func handleContextUpdate(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}

	var update map[string]any
	if err := decodeReq(req, &update); err != nil {
		writeError(wrt, err)
		return
	}
	// Only presentation fields are updatable through this path.
	allowed := map[string]bool{"Name": true, "Visibility": true, "JoinPolicy": true,
		"Features": true, "PluginConfig": true}
	for key := range update {
		if !allowed[key] {
			writeError(wrt, errBadRequest("Field is not updatable: "+key))
			return
		}
	}

	if err := updateContext(uid, ctx, update); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

func handleContextArchive(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}
	if err := archiveContext(uid, ctx); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

func handlePermissionsGet(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}
	perms, err := membershipPermissions(ctx, uid)
	if err != nil {
		writeError(wrt, err)
		return
	}
	if perms == nil {
		perms = []string{}
	}
	writeJSON(wrt, http.StatusOK, map[string]any{"permissions": perms})
}

func handlePluginValidate(wrt http.ResponseWriter, req *http.Request, uid t.Uid, ctx *t.Context) {
	var data t.KVMap
	if err := decodeReq(req, &data); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, validatePluginData(ctx, req.PathValue("plugin"), data))
}

// Membership

func handleJoin(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}
	sub, err := joinContext(ctx, uid)
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusCreated, sub)
}

func handleLeave(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}
	if err := leaveContext(ctx, uid); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

func handleMemberList(wrt http.ResponseWriter, req *http.Request, uid t.Uid, ctx *t.Context) {
	subs, err := store.Memberships.GetForContext(ctx.Uid(), parseQueryOpt(req))
	if err != nil {
		writeError(wrt, err)
		return
	}
	if subs == nil {
		subs = []t.Membership{}
	}
	writeJSON(wrt, http.StatusOK, map[string]any{"members": subs})
}

// memberTransition builds a handler for one moderation transition.
func memberTransition(op func(ctx *t.Context, actor, target t.Uid) error) http.HandlerFunc {
	return authenticated(func(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
		ctx, err := loadContext(req)
		if err != nil {
			writeError(wrt, err)
			return
		}
		target, err := parseUidValue(req, "user")
		if err != nil {
			writeError(wrt, err)
			return
		}
		if err := op(ctx, uid, target); err != nil {
			writeError(wrt, err)
			return
		}
		writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func handleRoleUpdate(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}
	target, err := parseUidValue(req, "user")
	if err != nil {
		writeError(wrt, err)
		return
	}

	var body struct {
		Role t.Role `json:"role"`
	}
	if err := decodeReq(req, &body); err != nil {
		writeError(wrt, err)
		return
	}

	if err := updateRole(ctx, uid, target, body.Role); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

// Activities

func handleActivityCreate(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	var act t.Activity
	if err := decodeReq(req, &act); err != nil {
		writeError(wrt, err)
		return
	}

	created, err := createActivity(req.Context(), uid, &act)
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusCreated, created)
}

func handleActivityDelete(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	id, err := parseUidValue(req, "id")
	if err != nil {
		writeError(wrt, err)
		return
	}
	if err := deleteActivity(uid, id); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReaction(atype string) http.HandlerFunc {
	return authenticated(func(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
		id, err := parseUidValue(req, "id")
		if err != nil {
			writeError(wrt, err)
			return
		}
		reaction, err := react(req.Context(), uid, id, atype)
		if err != nil {
			writeError(wrt, err)
			return
		}
		writeJSON(wrt, http.StatusCreated, reaction)
	})
}

func handleReplies(wrt http.ResponseWriter, req *http.Request) {
	id, err := parseUidValue(req, "id")
	if err != nil {
		writeError(wrt, err)
		return
	}
	page, err := threadReplies(req.Context(), id, viewerUid(req), parseQueryOpt(req))
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, page)
}

func handleReactors(atype string) http.HandlerFunc {
	return func(wrt http.ResponseWriter, req *http.Request) {
		id, err := parseUidValue(req, "id")
		if err != nil {
			writeError(wrt, err)
			return
		}
		page, err := listReactors(req.Context(), id, atype, viewerUid(req), parseQueryOpt(req))
		if err != nil {
			writeError(wrt, err)
			return
		}
		writeJSON(wrt, http.StatusOK, page)
	}
}

// Timelines

func handleFeedGlobal(wrt http.ResponseWriter, req *http.Request) {
	page, err := feedGlobal(viewerUid(req), parseQueryOpt(req))
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, page)
}

func handleFeedHome(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	page, err := feedHome(uid, parseQueryOpt(req))
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, page)
}

func handleFeedContext(wrt http.ResponseWriter, req *http.Request) {
	ctx, err := loadContext(req)
	if err != nil {
		writeError(wrt, err)
		return
	}
	page, err := feedContext(req.Context(), ctx, viewerUid(req), parseQueryOpt(req))
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, page)
}

func handleFeedProfile(wrt http.ResponseWriter, req *http.Request) {
	author, err := parseUidValue(req, "user")
	if err != nil {
		writeError(wrt, err)
		return
	}
	page, err := feedProfile(author, viewerUid(req), parseQueryOpt(req))
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, page)
}

// Follows

func handleFollow(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	followee, err := parseUidValue(req, "user")
	if err != nil {
		writeError(wrt, err)
		return
	}
	if err := followUser(uid, followee); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusCreated, map[string]string{"status": "ok"})
}

func handleUnfollow(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	followee, err := parseUidValue(req, "user")
	if err != nil {
		writeError(wrt, err)
		return
	}
	if err := unfollowUser(uid, followee); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

// Inbox

func handleInboxList(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	items, err := listNotifications(uid, parseQueryOpt(req))
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]any{"items": items})
}

func handleInboxMarkRead(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	var body struct {
		Activities []string `json:"activities"`
	}
	if err := decodeReq(req, &body); err != nil {
		writeError(wrt, err)
		return
	}
	if err := markItemsRead(uid, body.Activities); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

func handleInboxMarkAllRead(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	if err := markAllRead(uid); err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

func handleInboxCounts(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	counts, err := getUnreadCounts(uid)
	if err != nil {
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, counts)
}

func handleInboxDelete(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
	id, err := parseUidValue(req, "id")
	if err != nil {
		writeError(wrt, err)
		return
	}
	if err := deleteNotification(uid, id); err != nil {
		if err == t.ErrNotFound {
			writeError(wrt, errNotFound("notification"))
			return
		}
		writeError(wrt, err)
		return
	}
	writeJSON(wrt, http.StatusOK, map[string]string{"status": "ok"})
}

// setupMux wires all endpoints.
func setupMux(mux *http.ServeMux) {
	// Accounts and tokens.
	mux.HandleFunc("POST /v0/users", handleUserCreate)
	mux.HandleFunc("POST /v0/tokens", handleTokenIssue)

	// Contexts.
	mux.HandleFunc("POST /v0/contexts", authenticated(handleContextCreate))
	mux.HandleFunc("GET /v0/contexts/{ctx}", handleContextGet)
	mux.HandleFunc("PATCH /v0/contexts/{ctx}", authenticated(handleContextUpdate))
	mux.HandleFunc("POST /v0/contexts/{ctx}/archive", authenticated(handleContextArchive))
	mux.HandleFunc("GET /v0/contexts/{ctx}/permissions", authenticated(handlePermissionsGet))
	mux.HandleFunc("POST /v0/contexts/{ctx}/plugins/{plugin}/validate",
		requireMembership(handlePluginValidate))

	// Membership.
	mux.HandleFunc("POST /v0/contexts/{ctx}/members", authenticated(handleJoin))
	mux.HandleFunc("DELETE /v0/contexts/{ctx}/members", authenticated(handleLeave))
	mux.HandleFunc("GET /v0/contexts/{ctx}/members", requireMembership(handleMemberList))
	mux.HandleFunc("POST /v0/contexts/{ctx}/members/{user}/approve", memberTransition(approveMember))
	mux.HandleFunc("POST /v0/contexts/{ctx}/members/{user}/reject", memberTransition(rejectMember))
	mux.HandleFunc("POST /v0/contexts/{ctx}/members/{user}/ban", memberTransition(banMember))
	mux.HandleFunc("POST /v0/contexts/{ctx}/members/{user}/unban", memberTransition(unbanMember))
	mux.HandleFunc("PUT /v0/contexts/{ctx}/members/{user}/role", authenticated(handleRoleUpdate))

	// Activities.
	mux.HandleFunc("POST /v0/activities", authenticated(handleActivityCreate))
	mux.HandleFunc("DELETE /v0/activities/{id}", authenticated(handleActivityDelete))
	mux.HandleFunc("POST /v0/activities/{id}/like", handleReaction(t.ActivityLike))
	mux.HandleFunc("POST /v0/activities/{id}/announce", handleReaction(t.ActivityAnnounce))
	mux.HandleFunc("GET /v0/activities/{id}/replies", handleReplies)
	mux.HandleFunc("GET /v0/activities/{id}/likers", handleReactors(t.ActivityLike))
	mux.HandleFunc("GET /v0/activities/{id}/reposters", handleReactors(t.ActivityAnnounce))

	// Timelines.
	mux.HandleFunc("GET /v0/feeds/global", handleFeedGlobal)
	mux.HandleFunc("GET /v0/feeds/home", authenticated(handleFeedHome))
	mux.HandleFunc("GET /v0/contexts/{ctx}/feed", handleFeedContext)
	mux.HandleFunc("GET /v0/users/{user}/feed", handleFeedProfile)

	// Follows.
	mux.HandleFunc("POST /v0/users/{user}/follow", authenticated(handleFollow))
	mux.HandleFunc("DELETE /v0/users/{user}/follow", authenticated(handleUnfollow))

	// Inbox.
	mux.HandleFunc("GET /v0/inbox", authenticated(handleInboxList))
	mux.HandleFunc("POST /v0/inbox/read", authenticated(handleInboxMarkRead))
	mux.HandleFunc("POST /v0/inbox/read_all", authenticated(handleInboxMarkAllRead))
	mux.HandleFunc("GET /v0/inbox/counts", authenticated(handleInboxCounts))
	mux.HandleFunc("DELETE /v0/inbox/{id}", authenticated(handleInboxDelete))

	// Live streaming.
	mux.HandleFunc("/v0/channels", serveLiveStream)
}
