/******************************************************************************
 *
 *  Description :
 *
 *  Live-stream session. One Session represents a single open websocket
 *  connection subscribed to some set of broadcast channels.
 *
 *****************************************************************************/

package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	t "github.com/isomorphiccat/kemotown/server/store/types"
)

const sendQueueLimit = 256

// Session holds the state of a single live connection.
type Session struct {
	// Session ID.
	sid string

	// Websocket connection.
	ws *websocket.Conn

	// Authenticated user.
	uid t.Uid

	// IP address of the client.
	remoteAddr string

	// User agent, a string provided by the client.
	userAgent string

	// Channels this session is attached to. Written by the hub goroutine
	// and by the session's writeLoop, guarded by channelsLock.
	channels     map[string]bool
	channelsLock sync.Mutex

	// Outbound messages, buffered.
	send chan []byte

	// Channel for shutting down the session, buffered by 1.
	stop chan []byte

	// Hub tells the session it has been dropped from a channel, buffered.
	detach chan string

	// Time when the session was last used.
	lastTouched time.Time
}

func (s *Session) addChannel(name string) {
	s.channelsLock.Lock()
	s.channels[name] = true
	s.channelsLock.Unlock()
}

func (s *Session) delChannel(name string) {
	s.channelsLock.Lock()
	delete(s.channels, name)
	s.channelsLock.Unlock()
}

func (s *Session) isAttachedTo(name string) bool {
	s.channelsLock.Lock()
	defer s.channelsLock.Unlock()
	return s.channels[name]
}

// attachedChannels returns a snapshot of the channel names this session is
// attached to.
func (s *Session) attachedChannels() []string {
	s.channelsLock.Lock()
	defer s.channelsLock.Unlock()
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	return names
}

// queueOut attempts to enqueue data for delivery. Returns false if the send
// queue is full; the caller treats that as a dead connection.
func (s *Session) queueOut(data []byte) bool {
	if s == nil {
		return true
	}
	select {
	case s.send <- data:
	default:
		return false
	}
	return true
}

// cleanUp detaches the session from the hub and the session store. Called
// when the connection is closed.
func (s *Session) cleanUp() {
	globals.sessionStore.Delete(s)
	globals.hub.sessionGone <- s
}
