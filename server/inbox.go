/******************************************************************************
 *
 *  Description :
 *
 *  Notification operations. All of them are scoped by the owning user;
 *  one user can never mutate another's inbox.
 *
 *****************************************************************************/

package main

import (
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// listNotifications returns one page of the user's notifications, newest
// first, muted items excluded.
func listNotifications(user t.Uid, opts *t.QueryOpt) ([]t.InboxItem, error) {
	items, err := store.Inbox.Get(user, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []t.InboxItem{}
	}
	return items, nil
}

// markItemsRead marks notifications for the listed activities as read.
func markItemsRead(user t.Uid, activityIDs []string) error {
	ids := make([]t.Uid, 0, len(activityIDs))
	for _, raw := range activityIDs {
		id := t.ParseUid(raw)
		if id.IsZero() {
			return errBadRequest("Malformed activity id: " + raw)
		}
		ids = append(ids, id)
	}
	return store.Inbox.MarkRead(user, ids)
}

// markAllRead marks every notification of the user as read.
func markAllRead(user t.Uid) error {
	return store.Inbox.MarkAllRead(user)
}

// getUnreadCounts returns unread notification counts per category plus the
// "total" bucket.
func getUnreadCounts(user t.Uid) (map[string]int, error) {
	return store.Inbox.UnreadCounts(user)
}

// deleteNotification hides one notification. The record is muted, never
// physically removed.
func deleteNotification(user t.Uid, activity t.Uid) error {
	return store.Inbox.Mute(user, activity)
}
