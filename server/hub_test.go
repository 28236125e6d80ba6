package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/isomorphiccat/kemotown/server/store/types"
)

// testHub builds a hub without starting its run loop; tests drive attach,
// detach and publish directly.
func testHub() *Hub {
	return &Hub{
		channels:    make(map[string]*channel),
		join:        make(chan *hubReq, 16),
		leave:       make(chan *hubReq, 16),
		route:       make(chan *broadcast, 16),
		sessionGone: make(chan *Session, 16),
		shutdown:    make(chan chan<- bool),
	}
}

func testSession(sid string, uid types.Uid, queue int) *Session {
	return &Session{
		sid:      sid,
		uid:      uid,
		channels: make(map[string]bool),
		send:     make(chan []byte, queue),
		stop:     make(chan []byte, 1),
		detach:   make(chan string, 16),
	}
}

func TestHubAttachDetach(t *testing.T) {
	h := testHub()
	uid := types.Uid(1)

	s1 := testSession("s1", uid, 4)
	s2 := testSession("s2", uid, 4)

	h.attach(channelGlobal, s1)
	h.attach(channelGlobal, s2)
	// Attaching twice is a no-op.
	h.attach(channelGlobal, s1)

	ch := h.channels[channelGlobal]
	if ch == nil || len(ch.sessions) != 2 {
		t.Fatalf("expected 2 subscribers, got %+v", ch)
	}
	if !s1.isAttachedTo(channelGlobal) || !s2.isAttachedTo(channelGlobal) {
		t.Error("sessions must record their attachment")
	}

	h.detach(channelGlobal, s1)
	if len(h.channels[channelGlobal].sessions) != 1 {
		t.Error("detach must remove the session")
	}
	if got := <-s1.detach; got != channelGlobal {
		t.Errorf("detach notification = %q", got)
	}

	// Removing the last subscriber removes the channel.
	h.detach(channelGlobal, s2)
	if h.channels[channelGlobal] != nil {
		t.Error("empty channel must be deleted")
	}

	// Detaching from an unknown channel is a no-op.
	h.detach("CONTEXT:nosuch", s1)
}

func TestSessionChannelsConcurrentAccess(t *testing.T) {
	// The hub goroutine records attachments while the session's writeLoop
	// processes detach notifications; the channel set must survive both
	// sides running at once.
	sess := testSession("s1", types.Uid(1), 4)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sess.addChannel(fmt.Sprintf("CONTEXT:%d", i%7))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sess.delChannel(fmt.Sprintf("CONTEXT:%d", i%7))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sess.attachedChannels()
		}
	}()
	wg.Wait()
}

func TestHubPerUserConnectionCap(t *testing.T) {
	h := testHub()
	uid := types.Uid(1)
	other := types.Uid(2)

	name := channelHome(uid)
	sessions := make([]*Session, maxSessionsPerUserChannel)
	for i := range sessions {
		sessions[i] = testSession(fmt.Sprintf("s%d", i), uid, 4)
		h.attach(name, sessions[i])
	}
	bystander := testSession("bystander", other, 4)
	h.attach(name, bystander)

	// The cap is reached; one more connection evicts the user's oldest.
	extra := testSession("extra", uid, 4)
	h.attach(name, extra)

	ch := h.channels[name]
	if len(ch.sessions) != maxSessionsPerUserChannel+1 {
		t.Fatalf("subscribers = %d, want %d", len(ch.sessions), maxSessionsPerUserChannel+1)
	}
	for _, s := range ch.sessions {
		if s == sessions[0] {
			t.Error("oldest session of the capped user must be evicted")
		}
	}
	if got := <-sessions[0].detach; got != name {
		t.Errorf("evicted session notified with %q", got)
	}
	if !bystander.isAttachedTo(name) {
		t.Error("other users' sessions must be untouched by the cap")
	}
}

func TestHubPublishEvictsUnresponsive(t *testing.T) {
	h := testHub()

	healthy := testSession("healthy", types.Uid(1), 4)
	// A session with a full send queue cannot accept the payload.
	stuck := testSession("stuck", types.Uid(2), 1)
	stuck.send <- []byte("backlog")

	h.attach(channelGlobal, healthy)
	h.attach(channelGlobal, stuck)

	h.publish(h.channels[channelGlobal], []byte("payload"))

	if got := string(<-healthy.send); got != "payload" {
		t.Errorf("healthy session received %q", got)
	}
	ch := h.channels[channelGlobal]
	if len(ch.sessions) != 1 || ch.sessions[0] != healthy {
		t.Errorf("unresponsive session must be evicted: %d subscribers", len(ch.sessions))
	}
}

func TestHubSweep(t *testing.T) {
	h := testHub()

	live := testSession("live", types.Uid(1), 4)
	dead := testSession("dead", types.Uid(2), 1)
	dead.send <- []byte("backlog")

	h.attach(channelGlobal, live)
	h.attach(channelGlobal, dead)

	h.sweep()

	var ping LiveMessage
	if err := json.Unmarshal(<-live.send, &ping); err != nil || ping.What != "ping" {
		t.Errorf("sweep payload: %+v err=%v", ping, err)
	}
	if len(h.channels[channelGlobal].sessions) != 1 {
		t.Error("sweep must evict connections which cannot accept data")
	}
}

func routedChannels(t *testing.T, h *Hub) ([]string, []byte) {
	t.Helper()
	select {
	case msg := <-h.route:
		out := append([]string{}, msg.channels...)
		sort.Strings(out)
		return out, msg.data
	default:
		t.Fatal("nothing routed")
		return nil, nil
	}
}

func TestBroadcastNewActivity(t *testing.T) {
	defer resetGlobals()()
	globals.hub = testHub()
	defer func() { globals.hub = nil }()

	actor := types.Uid(1)
	alice := types.Uid(2)
	ctxUid := types.Uid(100)

	act := &types.Activity{
		Type:    types.ActivityCreate,
		Actor:   actor.String(),
		To:      []string{"public"},
		Context: ctxUid.String(),
	}
	act.Id = types.Uid(500).String()

	broadcastNewActivity(act, []types.Uid{alice})

	got, data := routedChannels(t, globals.hub)
	want := []string{
		channelGlobal,
		channelContext(ctxUid),
		channelHome(actor),
		channelHome(alice),
	}
	sort.Strings(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("routed channels mismatch (-want +got):\n%s", diff)
	}

	var msg LiveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if msg.What != "activity" || msg.Activity == nil || msg.Activity.Id != act.Id {
		t.Errorf("payload = %+v", msg)
	}

	// A non-public post outside any context reaches home channels only.
	direct := &types.Activity{
		Type:  types.ActivityCreate,
		Actor: actor.String(),
		To:    []string{"user:" + alice.String()},
	}
	direct.Id = types.Uid(501).String()
	broadcastNewActivity(direct, []types.Uid{alice})

	got, _ = routedChannels(t, globals.hub)
	want = []string{channelHome(actor), channelHome(alice)}
	sort.Strings(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("direct routing mismatch (-want +got):\n%s", diff)
	}
}

func TestBroadcastReaction(t *testing.T) {
	defer resetGlobals()()
	globals.hub = testHub()
	defer func() { globals.hub = nil }()

	author := types.Uid(1)
	reactor := types.Uid(2)
	ctxUid := types.Uid(100)

	target := &types.Activity{
		Type:    types.ActivityCreate,
		Actor:   author.String(),
		Context: ctxUid.String(),
	}
	target.Id = types.Uid(500).String()

	reaction := &types.Activity{
		Type:     types.ActivityLike,
		Actor:    reactor.String(),
		ObjectId: target.Id,
	}
	reaction.Id = types.Uid(501).String()

	broadcastReaction(reaction, target)

	got, data := routedChannels(t, globals.hub)
	want := []string{channelContext(ctxUid), channelHome(author)}
	sort.Strings(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("routed channels mismatch (-want +got):\n%s", diff)
	}

	var msg LiveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if msg.What != "reaction" || msg.Reaction == nil ||
		msg.Reaction.Type != types.ActivityLike ||
		msg.Reaction.Actor != reactor.String() ||
		msg.Reaction.Target != target.Id {
		t.Errorf("payload = %+v", msg)
	}
}
