/******************************************************************************
 *
 *  Description :
 *
 *  Management of live sessions.
 *
 *****************************************************************************/

package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/isomorphiccat/kemotown/server/logs"
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// SessionStore holds all live sessions indexed by session ID.
type SessionStore struct {
	lock sync.Mutex

	sessCache map[string]*Session
}

// NewSessionStore initializes a session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessCache: make(map[string]*Session),
	}
}

// NewSession creates a new session for the given connection and user and
// saves it to the session store.
func (ss *SessionStore) NewSession(conn *websocket.Conn, uid t.Uid) *Session {
	s := &Session{
		sid:         store.Store.GetUidString(),
		ws:          conn,
		uid:         uid,
		channels:    make(map[string]bool),
		send:        make(chan []byte, sendQueueLimit),
		stop:        make(chan []byte, 1),
		detach:      make(chan string, 32),
		lastTouched: time.Now(),
	}

	ss.lock.Lock()
	ss.sessCache[s.sid] = s
	count := len(ss.sessCache)
	ss.lock.Unlock()

	statsSet("LiveSessionsTotal", int64(count))
	liveSessions.Set(float64(count))

	return s
}

// Get fetches a session by id.
func (ss *SessionStore) Get(sid string) *Session {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	return ss.sessCache[sid]
}

// Delete removes the session from the store.
func (ss *SessionStore) Delete(s *Session) {
	ss.lock.Lock()
	delete(ss.sessCache, s.sid)
	count := len(ss.sessCache)
	ss.lock.Unlock()

	statsSet("LiveSessionsTotal", int64(count))
	liveSessions.Set(float64(count))
}

// Count returns the number of live sessions.
func (ss *SessionStore) Count() int {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	return len(ss.sessCache)
}

// Shutdown terminates all sessions.
func (ss *SessionStore) Shutdown() {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	for _, s := range ss.sessCache {
		// Don't care if the queue is full.
		select {
		case s.stop <- nil:
		default:
		}
	}

	logs.Info.Println("SessionStore shut down, sessions terminated:", len(ss.sessCache))
}
