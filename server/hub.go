/******************************************************************************
 *
 *  Description :
 *
 *    Hub for routing live broadcasts. Maps channel names (GLOBAL,
 *    CONTEXT:{id}, HOME:{userId}) to sets of attached sessions. Publishing
 *    is fire and forget: a broadcast with zero subscribers is dropped.
 *
 *****************************************************************************/

package main

import (
	"encoding/json"
	"time"

	"github.com/isomorphiccat/kemotown/server/address"
	"github.com/isomorphiccat/kemotown/server/logs"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

const (
	channelGlobal        = "GLOBAL"
	channelContextPrefix = "CONTEXT:"
	channelHomePrefix    = "HOME:"

	// Maximum simultaneous connections one user may hold on one channel.
	// Attaching beyond the cap evicts the user's oldest connection.
	maxSessionsPerUserChannel = 5

	// How often the hub sweeps channels for dead connections.
	channelSweepPeriod = 55 * time.Second
)

func channelContext(ctx t.Uid) string {
	return channelContextPrefix + ctx.String()
}

func channelHome(user t.Uid) string {
	return channelHomePrefix + user.String()
}

// hubReq is a request to attach or detach a session.
type hubReq struct {
	channel string
	sess    *Session
}

// broadcast is a routed payload addressed to a set of channels.
type broadcast struct {
	channels []string
	data     []byte
}

// channel holds subscribers in attach order, oldest first.
type channel struct {
	name     string
	sessions []*Session
}

// Hub is the broadcast registry. All channel state is owned by the run()
// goroutine; other goroutines communicate through the request channels.
type Hub struct {
	channels map[string]*channel

	// Attach session to channel, buffered.
	join chan *hubReq

	// Detach session from channel, buffered.
	leave chan *hubReq

	// Payloads to route, buffered at 4096.
	route chan *broadcast

	// Session disconnected, drop it everywhere.
	sessionGone chan *Session

	// Periodic liveness sweep. Disabled in tests.
	sweepEnabled bool

	// Request to shutdown, unbuffered.
	shutdown chan chan<- bool
}

func newHub(sweep bool) *Hub {
	h := &Hub{
		channels:     make(map[string]*channel),
		join:         make(chan *hubReq, 256),
		leave:        make(chan *hubReq, 256),
		route:        make(chan *broadcast, 4096),
		sessionGone:  make(chan *Session, 256),
		sweepEnabled: sweep,
		shutdown:     make(chan chan<- bool),
	}

	go h.run()

	return h
}

func (h *Hub) run() {
	ticker := time.NewTicker(channelSweepPeriod)
	if !h.sweepEnabled {
		ticker.Stop()
	}

	for {
		select {
		case req := <-h.join:
			h.attach(req.channel, req.sess)

		case req := <-h.leave:
			h.detach(req.channel, req.sess)

		case msg := <-h.route:
			for _, name := range msg.channels {
				ch := h.channels[name]
				if ch == nil {
					// No subscribers, drop.
					continue
				}
				h.publish(ch, msg.data)
			}
			statsInc("LiveBroadcastsTotal", 1)
			liveBroadcasts.Inc()

		case sess := <-h.sessionGone:
			for _, name := range sess.attachedChannels() {
				h.detach(name, sess)
			}

		case <-ticker.C:
			h.sweep()

		case done := <-h.shutdown:
			ticker.Stop()
			done <- true
			return
		}
	}
}

// attach adds the session to a channel, enforcing the per-user cap by
// evicting the user's oldest connection on that channel.
func (h *Hub) attach(name string, sess *Session) {
	ch := h.channels[name]
	if ch == nil {
		ch = &channel{name: name}
		h.channels[name] = ch
	}

	var oldest *Session
	count := 0
	for _, s := range ch.sessions {
		if s == sess {
			// Already attached.
			return
		}
		if s.uid == sess.uid {
			count++
			if oldest == nil {
				oldest = s
			}
		}
	}
	if count >= maxSessionsPerUserChannel {
		logs.Info.Println("hub: connection cap reached on", name, "for", sess.uid.String())
		h.evict(ch, oldest)
	}

	ch.sessions = append(ch.sessions, sess)
	sess.addChannel(name)
}

func (h *Hub) detach(name string, sess *Session) {
	ch := h.channels[name]
	if ch == nil {
		return
	}
	h.evict(ch, sess)
}

// evict drops one session from a channel, deleting the channel if it was the
// last subscriber.
func (h *Hub) evict(ch *channel, sess *Session) {
	for i, s := range ch.sessions {
		if s == sess {
			ch.sessions = append(ch.sessions[:i], ch.sessions[i+1:]...)
			select {
			case sess.detach <- ch.name:
			default:
			}
			break
		}
	}
	if len(ch.sessions) == 0 {
		delete(h.channels, ch.name)
	}
}

// publish delivers the payload to every subscriber of a channel. Sessions
// which fail to accept the payload are evicted.
func (h *Hub) publish(ch *channel, data []byte) {
	var dead []*Session
	for _, s := range ch.sessions {
		if !s.queueOut(data) {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		logs.Warning.Println("hub: evicting unresponsive session", s.sid, "from", ch.name)
		h.evict(ch, s)
	}
}

// sweep pings every subscriber of every channel, evicting connections which
// cannot accept data, and drops channels left with no subscribers.
func (h *Hub) sweep() {
	ping, _ := json.Marshal(&LiveMessage{What: "ping", Timestamp: t.TimeNow()})
	for _, ch := range h.channels {
		h.publish(ch, ping)
	}
}

// LiveMessage is the JSON payload pushed to live subscribers.
type LiveMessage struct {
	What      string         `json:"what"`
	Activity  *t.Activity    `json:"activity,omitempty"`
	Reaction  *ReactionEvent `json:"reaction,omitempty"`
	Timestamp time.Time      `json:"ts"`
}

// ReactionEvent describes a like or announce applied to an activity.
type ReactionEvent struct {
	Type   string `json:"type"`
	Actor  string `json:"actor"`
	Target string `json:"target"`
}

// broadcastNewActivity pushes a persisted activity to the relevant live
// channels: the global firehose for public posts, the context channel, and
// the home channels of the actor and every direct recipient.
func broadcastNewActivity(act *t.Activity, recipients []t.Uid) {
	data, err := json.Marshal(&LiveMessage{What: "activity", Activity: act, Timestamp: t.TimeNow()})
	if err != nil {
		logs.Error.Println("hub: failed to serialize activity", act.Id, err)
		return
	}

	var channels []string
	for _, raw := range act.Addressees() {
		if raw == address.TokenPublic {
			channels = append(channels, channelGlobal)
			break
		}
	}
	if act.Context != "" {
		channels = append(channels, channelContext(t.ParseUid(act.Context)))
	}
	channels = append(channels, channelHome(t.ParseUid(act.Actor)))
	for _, uid := range recipients {
		channels = append(channels, channelHome(uid))
	}

	globals.hub.route <- &broadcast{channels: channels, data: data}
}

// broadcastReaction pushes a like/announce event to the target author's home
// channel and, when the target sits in a context, that context's channel.
func broadcastReaction(reaction *t.Activity, target *t.Activity) {
	data, err := json.Marshal(&LiveMessage{
		What: "reaction",
		Reaction: &ReactionEvent{
			Type:   reaction.Type,
			Actor:  reaction.Actor,
			Target: reaction.ObjectId,
		},
		Timestamp: t.TimeNow(),
	})
	if err != nil {
		logs.Error.Println("hub: failed to serialize reaction", err)
		return
	}

	channels := []string{channelHome(t.ParseUid(target.Actor))}
	if target.Context != "" {
		channels = append(channels, channelContext(t.ParseUid(target.Context)))
	}

	globals.hub.route <- &broadcast{channels: channels, data: data}
}
