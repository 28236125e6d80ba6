/******************************************************************************
 *
 *  Description :
 *
 *  Follow relations. Follows are accepted immediately; the pending state
 *  is reserved for accounts requiring approval.
 *
 *****************************************************************************/

package main

import (
	"github.com/isomorphiccat/kemotown/server/address"
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// followUser records follower -> followee and notifies the followee.
func followUser(follower, followee t.Uid) error {
	if follower == followee {
		return errBadRequest("Cannot follow yourself.")
	}

	target, err := store.Users.Get(followee)
	if err != nil {
		return err
	}
	if target == nil {
		return errNotFound("user")
	}

	err = store.Follows.Upsert(&t.Follow{
		CreatedAt: t.TimeNow(),
		Follower:  follower.String(),
		Followee:  followee.String(),
		Status:    t.FollowAccepted,
	})
	if err != nil {
		return err
	}

	// The notification references a follow activity addressed to the
	// followee.
	act, err := store.Activities.Create(&t.Activity{
		Type:  t.ActivityFollow,
		Actor: follower.String(),
		To:    []string{address.ForUser(followee)},
	})
	if err != nil {
		return err
	}
	if err = store.Inbox.Deliver(act.Uid(), t.CategoryFollow, []t.Uid{followee}); err != nil {
		logDeliveryFailure(act.Id, err)
	} else {
		statsInc("InboxDeliveriesTotal", 1)
		inboxDeliveries.Inc()
	}

	return nil
}

// unfollowUser removes the relation. Removing a non-existent follow is a
// no-op.
func unfollowUser(follower, followee t.Uid) error {
	return store.Follows.Delete(follower, followee)
}
