/******************************************************************************
 *
 *  Description :
 *
 *  Permission middleware factories wrapping request handlers.
 *
 *****************************************************************************/

package main

import (
	"encoding/json"
	"net/http"

	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// ctxHandler is a request handler enriched with the authenticated user and
// the resolved context.
type ctxHandler func(wrt http.ResponseWriter, req *http.Request, uid t.Uid, ctx *t.Context)

// userHandler is a request handler enriched with the authenticated user only.
type userHandler func(wrt http.ResponseWriter, req *http.Request, uid t.Uid)

func writeJSON(wrt http.ResponseWriter, code int, body any) {
	wrt.Header().Set("Content-Type", "application/json; charset=utf-8")
	wrt.WriteHeader(code)
	json.NewEncoder(wrt).Encode(body)
}

func writeError(wrt http.ResponseWriter, err error) {
	if ae, ok := err.(*apiError); ok {
		writeJSON(wrt, ae.Code, ae)
		return
	}
	writeJSON(wrt, http.StatusInternalServerError,
		&apiError{http.StatusInternalServerError, "Internal error"})
}

// authenticated extracts the user from the session token. Missing identity
// is fatal to the request.
func authenticated(next userHandler) http.HandlerFunc {
	return func(wrt http.ResponseWriter, req *http.Request) {
		uid, valid := checkSessionToken(getSessionToken(req))
		if !valid {
			writeError(wrt, errUnauthorized())
			return
		}
		next(wrt, req, uid)
	}
}

// loadContext resolves the {ctx} path value into a context record.
func loadContext(req *http.Request) (*t.Context, error) {
	id := t.ParseUid(req.PathValue("ctx"))
	if id.IsZero() {
		return nil, errBadRequest("Malformed context id.")
	}
	ctx, err := store.Contexts.Get(id)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, errNotFound("context")
	}
	return ctx, nil
}

// requireMembership wraps a handler, admitting only approved members of the
// addressed context.
func requireMembership(next ctxHandler) http.HandlerFunc {
	return authenticated(func(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
		ctx, err := loadContext(req)
		if err != nil {
			writeError(wrt, err)
			return
		}

		sub, err := store.Memberships.Get(ctx.Uid(), uid)
		if err != nil {
			writeError(wrt, err)
			return
		}
		if sub == nil {
			writeError(wrt, errForbidden("not a member"))
			return
		}
		if !sub.IsApproved() {
			writeError(wrt, errForbidden("membership status is "+sub.Status.String()))
			return
		}

		next(wrt, req, uid, ctx)
	})
}

// requirePermission wraps a handler, admitting only members holding the
// given permission in the addressed context.
func requirePermission(permission string, next ctxHandler) http.HandlerFunc {
	return authenticated(func(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
		ctx, err := loadContext(req)
		if err != nil {
			writeError(wrt, err)
			return
		}

		ok, reason, err := hasPermissionWithReason(uid, ctx.Uid(), permission)
		if err != nil {
			writeError(wrt, err)
			return
		}
		if !ok {
			writeError(wrt, errForbidden(reason))
			return
		}

		next(wrt, req, uid, ctx)
	})
}

// requireAnyPermission admits members holding at least one of the given
// permissions.
func requireAnyPermission(permissions []string, next ctxHandler) http.HandlerFunc {
	return authenticated(func(wrt http.ResponseWriter, req *http.Request, uid t.Uid) {
		ctx, err := loadContext(req)
		if err != nil {
			writeError(wrt, err)
			return
		}

		ok, err := hasAnyPermission(uid, ctx.Uid(), permissions)
		if err != nil {
			writeError(wrt, err)
			return
		}
		if !ok {
			writeError(wrt, errForbidden("insufficient permissions"))
			return
		}

		next(wrt, req, uid, ctx)
	})
}
