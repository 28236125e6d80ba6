/******************************************************************************
 *
 *  Description :
 *
 *  Membership state transitions: join, leave, approve, reject, ban, unban
 *  and role changes. Transitions are read-then-conditional-write; the
 *  uniqueness constraint on (context, user) guards duplicate-join races.
 *
 *****************************************************************************/

package main

import (
	"errors"

	"github.com/isomorphiccat/kemotown/server/perm"
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// joinContext requests membership. Open contexts admit immediately, all
// others create a PENDING request.
func joinContext(ctx *t.Context, user t.Uid) (*t.Membership, error) {
	if ctx.Archived {
		return nil, errBadRequest("Context is archived.")
	}

	status := t.StatusPending
	if ctx.JoinPolicy == t.JoinOpen {
		status = t.StatusApproved
	}
	now := t.TimeNow()

	// A row may survive from an earlier membership: leaving keeps it with
	// LEFT status. Rejoin resets it instead of creating a new one.
	if sub, err := store.Memberships.Get(ctx.Uid(), user); err != nil {
		return nil, err
	} else if sub != nil {
		if sub.Status != t.StatusLeft {
			return nil, errBadRequest("Already a member or join already requested.")
		}
		if err = store.Memberships.Update(ctx.Uid(), user,
			map[string]any{"UpdatedAt": now, "Role": t.RoleMember, "Status": status}); err != nil {
			return nil, err
		}
		sub.UpdatedAt = now
		sub.Role = t.RoleMember
		sub.Status = status

		globals.registry.OnMemberJoin(ctx, sub)

		return sub, nil
	}

	sub := &t.Membership{
		CreatedAt: now,
		UpdatedAt: now,
		Context:   ctx.Id,
		User:      user.String(),
		Role:      t.RoleMember,
		Status:    status,
	}
	if err := store.Memberships.Create(sub); err != nil {
		if errors.Is(err, t.ErrDuplicate) {
			return nil, errBadRequest("Already a member or join already requested.")
		}
		return nil, err
	}

	globals.registry.OnMemberJoin(ctx, sub)

	return sub, nil
}

// leaveContext marks the member as LEFT. The membership row is kept.
func leaveContext(ctx *t.Context, user t.Uid) error {
	if ctx.Owner == user.String() {
		return errBadRequest("Owner cannot leave the context.")
	}

	sub, err := store.Memberships.Get(ctx.Uid(), user)
	if err != nil {
		return err
	}
	if sub == nil {
		return errNotFound("membership")
	}

	if err = store.Memberships.Update(ctx.Uid(), user,
		map[string]any{"UpdatedAt": t.TimeNow(), "Status": t.StatusLeft}); err != nil {
		return err
	}

	globals.registry.OnMemberLeave(ctx, sub)

	return nil
}

// moderatorCheck verifies the actor holds a moderation role and is approved.
// The required permission is only used in the denial reason.
func moderatorCheck(ctx t.Uid, actor t.Uid, required string) (*t.Membership, error) {
	sub, err := store.Memberships.Get(ctx, actor)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errForbidden("not a member")
	}
	if !sub.IsApproved() {
		return nil, errForbidden("membership status is " + sub.Status.String())
	}
	if sub.Role > t.RoleModerator {
		return nil, errForbidden("role " + sub.Role.String() + " lacks permission " + required)
	}
	return sub, nil
}

// approveMember admits a pending membership request.
func approveMember(ctx *t.Context, actor, target t.Uid) error {
	if _, err := moderatorCheck(ctx.Uid(), actor, perm.MemberApprove); err != nil {
		return err
	}

	sub, err := store.Memberships.Get(ctx.Uid(), target)
	if err != nil {
		return err
	}
	if sub == nil {
		return errNotFound("membership")
	}
	if sub.Status != t.StatusPending {
		return errBadRequest("Membership is not pending.")
	}

	return store.Memberships.Update(ctx.Uid(), target,
		map[string]any{"UpdatedAt": t.TimeNow(), "Status": t.StatusApproved})
}

// rejectMember removes a pending request. This is the only transition which
// hard-deletes a membership row.
func rejectMember(ctx *t.Context, actor, target t.Uid) error {
	if _, err := moderatorCheck(ctx.Uid(), actor, perm.MemberApprove); err != nil {
		return err
	}

	sub, err := store.Memberships.Get(ctx.Uid(), target)
	if err != nil {
		return err
	}
	if sub == nil {
		return errNotFound("membership")
	}
	if sub.Status != t.StatusPending {
		return errBadRequest("Membership is not pending.")
	}

	return store.Memberships.Delete(ctx.Uid(), target)
}

// banMember bans an existing member. Blocked against targets of equal or
// higher rank unless the actor is the owner.
func banMember(ctx *t.Context, actor, target t.Uid) error {
	actorSub, err := moderatorCheck(ctx.Uid(), actor, perm.MemberBan)
	if err != nil {
		return err
	}

	sub, err := store.Memberships.Get(ctx.Uid(), target)
	if err != nil {
		return err
	}
	if sub == nil {
		return errNotFound("membership")
	}

	if actorSub.Role != t.RoleOwner && perm.IsEqualOrHigherRole(sub.Role, actorSub.Role) {
		return errBadRequest("Cannot ban member with equal or higher role.")
	}

	return store.Memberships.Update(ctx.Uid(), target,
		map[string]any{"UpdatedAt": t.TimeNow(), "Status": t.StatusBanned})
}

// unbanMember lifts a ban, restoring APPROVED status.
func unbanMember(ctx *t.Context, actor, target t.Uid) error {
	if _, err := moderatorCheck(ctx.Uid(), actor, perm.MemberBan); err != nil {
		return err
	}

	sub, err := store.Memberships.Get(ctx.Uid(), target)
	if err != nil {
		return err
	}
	if sub == nil {
		return errNotFound("membership")
	}
	if sub.Status != t.StatusBanned {
		return errBadRequest("Membership is not banned.")
	}

	return store.Memberships.Update(ctx.Uid(), target,
		map[string]any{"UpdatedAt": t.TimeNow(), "Status": t.StatusApproved})
}

// updateRole changes a member's role through the generic role-update path.
// OWNER can never be assigned here and the context owner's role can never
// be changed here; ownership transfer is a separate operation.
func updateRole(ctx *t.Context, actor, target t.Uid, newRole t.Role) error {
	actorSub, err := store.Memberships.Get(ctx.Uid(), actor)
	if err != nil {
		return err
	}
	if actorSub == nil {
		return errForbidden("not a member")
	}
	if !actorSub.IsApproved() {
		return errForbidden("membership status is " + actorSub.Status.String())
	}
	if actorSub.Role > t.RoleAdmin {
		return errForbidden("role " + actorSub.Role.String() + " cannot change roles")
	}

	if !newRole.IsValid() {
		return errBadRequest("Unknown role.")
	}
	if newRole == t.RoleOwner {
		return errBadRequest("Cannot assign owner role.")
	}
	if newRole == t.RoleAdmin && actorSub.Role != t.RoleOwner {
		return errForbidden("only the owner may promote to admin")
	}

	if ctx.Owner == target.String() {
		return errBadRequest("Cannot change owner role.")
	}

	sub, err := store.Memberships.Get(ctx.Uid(), target)
	if err != nil {
		return err
	}
	if sub == nil {
		return errNotFound("membership")
	}

	if actorSub.Role != t.RoleOwner && perm.IsEqualOrHigherRole(sub.Role, actorSub.Role) {
		return errBadRequest("Cannot change role of member with equal or higher role.")
	}

	return store.Memberships.Update(ctx.Uid(), target,
		map[string]any{"UpdatedAt": t.TimeNow(), "Role": newRole})
}
