/******************************************************************************
 *
 *  Description :
 *
 *    Handler of websocket live-stream connections.
 *
 *****************************************************************************/

package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/isomorphiccat/kemotown/server/logs"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = idleSessionTimeout

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// clientReq is the only message shape a live client may send: attach to or
// detach from a broadcast channel.
type clientReq struct {
	Sub   string `json:"sub,omitempty"`
	Unsub string `json:"unsub,omitempty"`
}

func (sess *Session) closeWS() {
	if sess.ws != nil {
		sess.ws.Close()
	}
}

func (sess *Session) readLoop() {
	defer func() {
		sess.closeWS()
		sess.cleanUp()
	}()

	sess.ws.SetReadLimit(globals.maxMessageSize)
	sess.ws.SetReadDeadline(time.Now().Add(pongWait))
	sess.ws.SetPongHandler(func(string) error {
		sess.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	sess.remoteAddr = sess.ws.RemoteAddr().String()

	for {
		_, raw, err := sess.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logs.Warning.Println("sess.readLoop:", err)
			}
			return
		}
		sess.dispatchRaw(raw)
	}
}

// dispatchRaw handles a single client message: a sub/unsub request. Anything
// else is ignored.
func (sess *Session) dispatchRaw(raw []byte) {
	var req clientReq
	if err := json.Unmarshal(raw, &req); err != nil {
		logs.Warning.Println("sess.dispatch: malformed request", sess.sid)
		return
	}

	if req.Sub != "" {
		if name, ok := sess.allowedChannel(req.Sub); ok {
			globals.hub.join <- &hubReq{channel: name, sess: sess}
		}
	}
	if req.Unsub != "" {
		if name, ok := sess.allowedChannel(req.Unsub); ok {
			globals.hub.leave <- &hubReq{channel: name, sess: sess}
		}
	}
}

// allowedChannel normalizes a requested channel name and checks the session
// may attach to it: anyone may follow GLOBAL and CONTEXT channels, HOME is
// private to its owner.
func (sess *Session) allowedChannel(name string) (string, bool) {
	switch {
	case name == channelGlobal:
		return name, true
	case strings.HasPrefix(name, channelContextPrefix):
		return name, true
	case name == channelHome(sess.uid):
		return name, true
	}
	return "", false
}

func (sess *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		// Break readLoop.
		sess.closeWS()
	}()

	for {
		select {
		case msg, ok := <-sess.send:
			if !ok {
				return
			}
			if err := wsWrite(sess.ws, websocket.TextMessage, msg); err != nil {
				logs.Warning.Println("sess.writeLoop:", err)
				return
			}

		case msg := <-sess.stop:
			// Shutdown requested, don't care if the message is delivered.
			if msg != nil {
				wsWrite(sess.ws, websocket.TextMessage, msg)
			}
			return

		case channel := <-sess.detach:
			sess.delChannel(channel)

		case <-ticker.C:
			if err := wsWrite(sess.ws, websocket.PingMessage, []byte{}); err != nil {
				logs.Warning.Println("sess.writeLoop: ping/" + err.Error())
				return
			}
		}
	}
}

// Writes a message with the given message type (mt) and payload.
func wsWrite(ws *websocket.Conn, mt int, payload []byte) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(mt, payload)
}

// Handles websocket requests from peers.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow connections from any Origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func serveLiveStream(wrt http.ResponseWriter, req *http.Request) {
	uid, valid := checkSessionToken(getSessionToken(req))
	if !valid {
		http.Error(wrt, "Missing, invalid or expired token", http.StatusUnauthorized)
		return
	}

	if req.Method != http.MethodGet {
		http.Error(wrt, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ws, err := upgrader.Upgrade(wrt, req, nil)
	if _, ok := err.(websocket.HandshakeError); ok {
		logs.Warning.Println("ws: not a websocket handshake")
		return
	} else if err != nil {
		logs.Warning.Println("ws: failed to upgrade:", err)
		return
	}

	sess := globals.sessionStore.NewSession(ws, uid)
	sess.userAgent = req.UserAgent()

	// Every live session starts attached to the global firehose and the
	// user's own home channel; context channels are opt-in.
	globals.hub.join <- &hubReq{channel: channelGlobal, sess: sess}
	globals.hub.join <- &hubReq{channel: channelHome(uid), sess: sess}

	go sess.writeLoop()
	sess.readLoop()
}
