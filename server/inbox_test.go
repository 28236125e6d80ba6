package main

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/isomorphiccat/kemotown/server/store"
	"github.com/isomorphiccat/kemotown/server/store/mock_store"
	"github.com/isomorphiccat/kemotown/server/store/types"
)

func setupInbox(t *testing.T) (*mock_store.MockInboxPersistenceInterface, func()) {
	ctrl := gomock.NewController(t)
	m := mock_store.NewMockInboxPersistenceInterface(ctrl)
	store.Inbox = m
	return m, func() {
		store.Inbox = nil
		ctrl.Finish()
	}
}

func TestListNotifications(t *testing.T) {
	m, teardown := setupInbox(t)
	defer teardown()

	user := types.Uid(1)

	item := types.InboxItem{
		User:     user.String(),
		Activity: types.Uid(400).String(),
		Category: types.CategoryMention,
	}
	m.EXPECT().Get(user, gomock.Any()).Return([]types.InboxItem{item}, nil)
	items, err := listNotifications(user, nil)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: items=%d err=%v", len(items), err)
	}

	// An empty inbox serializes as [], not null.
	m.EXPECT().Get(user, gomock.Any()).Return(nil, nil)
	items, err = listNotifications(user, nil)
	if err != nil || items == nil || len(items) != 0 {
		t.Errorf("empty list: items=%v err=%v", items, err)
	}
}

func TestMarkItemsRead(t *testing.T) {
	m, teardown := setupInbox(t)
	defer teardown()

	user := types.Uid(1)
	a := types.Uid(400)
	b := types.Uid(401)

	m.EXPECT().MarkRead(user, []types.Uid{a, b}).Return(nil)
	if err := markItemsRead(user, []string{a.String(), b.String()}); err != nil {
		t.Fatalf("markItemsRead: %v", err)
	}

	// One malformed id fails the whole batch before any write.
	err := markItemsRead(user, []string{a.String(), "oops"})
	expectError(t, err, 400, "Malformed activity id: oops")

	m.EXPECT().MarkAllRead(user).Return(nil)
	if err := markAllRead(user); err != nil {
		t.Fatalf("markAllRead: %v", err)
	}
}

func TestDeleteNotificationMutes(t *testing.T) {
	m, teardown := setupInbox(t)
	defer teardown()

	user := types.Uid(1)
	activity := types.Uid(400)

	// Deletion is a mute: the row survives so re-delivery stays suppressed.
	m.EXPECT().Mute(user, activity).Return(nil)
	if err := deleteNotification(user, activity); err != nil {
		t.Fatalf("deleteNotification: %v", err)
	}
}

func TestGetUnreadCounts(t *testing.T) {
	m, teardown := setupInbox(t)
	defer teardown()

	user := types.Uid(1)
	m.EXPECT().UnreadCounts(user).Return(map[string]int{
		"total":              3,
		types.CategoryReply:  2,
		types.CategoryFollow: 1,
	}, nil)

	counts, err := getUnreadCounts(user)
	if err != nil {
		t.Fatalf("getUnreadCounts: %v", err)
	}
	if counts["total"] != 3 || counts[types.CategoryReply] != 2 {
		t.Errorf("counts = %v", counts)
	}
}
