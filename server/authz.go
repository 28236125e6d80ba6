/******************************************************************************
 *
 *  Description :
 *
 *  DB-backed permission checks. Fetches membership state and delegates to
 *  the pure resolver, producing human-readable denial reasons.
 *
 *****************************************************************************/

package main

import (
	"github.com/isomorphiccat/kemotown/server/perm"
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// Activity actions gated by canActOnActivity.
const (
	actionEdit   = "edit"
	actionDelete = "delete"
	actionPin    = "pin"
)

// hasPermissionWithReason checks one permission for a user inside a context.
// On denial the reason names the membership status or the role and missing
// permission, suitable for user-facing error messages.
func hasPermissionWithReason(user, ctx t.Uid, permission string) (bool, string, error) {
	sub, err := store.Memberships.Get(ctx, user)
	if err != nil {
		return false, "", err
	}
	if sub == nil {
		permissionDenials.Inc()
		return false, "not a member", nil
	}
	if !sub.IsApproved() {
		permissionDenials.Inc()
		return false, "membership status is " + sub.Status.String(), nil
	}

	if !perm.CheckPermission(globals.registry, sub, permission) {
		permissionDenials.Inc()
		return false, "role " + sub.Role.String() + " lacks permission " + permission, nil
	}
	return true, "", nil
}

// hasPermission is the boolean-only wrapper around hasPermissionWithReason.
func hasPermission(user, ctx t.Uid, permission string) (bool, error) {
	ok, _, err := hasPermissionWithReason(user, ctx, permission)
	return ok, err
}

// hasAllPermissions checks a permission list, short-circuiting on the first
// denial.
func hasAllPermissions(user, ctx t.Uid, permissions []string) (bool, string, error) {
	for _, p := range permissions {
		ok, reason, err := hasPermissionWithReason(user, ctx, p)
		if err != nil || !ok {
			return ok, reason, err
		}
	}
	return true, "", nil
}

// hasAnyPermission checks a permission list, short-circuiting on the first
// grant.
func hasAnyPermission(user, ctx t.Uid, permissions []string) (bool, error) {
	for _, p := range permissions {
		ok, err := hasPermission(user, ctx, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// canActOnActivity decides whether the user may edit, delete or pin an
// activity authored by activityActor inside the context. Edits are always
// self-scoped: there is no permission which allows editing others' posts.
func canActOnActivity(user, ctx, activityActor t.Uid, action string) (bool, string, error) {
	isAuthor := user == activityActor

	switch action {
	case actionEdit:
		if !isAuthor {
			return false, "cannot edit others' activities", nil
		}
		return hasPermissionWithReason(user, ctx, perm.ActivityEditOwn)

	case actionDelete:
		if isAuthor {
			return hasPermissionWithReason(user, ctx, perm.ActivityDelOwn)
		}
		return hasPermissionWithReason(user, ctx, perm.ActivityDelAny)

	case actionPin:
		return hasPermissionWithReason(user, ctx, perm.ActivityPin)
	}

	return false, "unknown action " + action, nil
}
