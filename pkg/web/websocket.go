package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/versus-control/cloudformation-agent/pkg/types"
)

const (
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 10 * time.Second
	wsPingInterval  = 45 * time.Second
	wsPongTimeout   = 90 * time.Second
)

// websocketHandler upgrades the connection and streams execution
// updates until the client goes away. Browsers cannot set headers on
// WebSocket requests, so the token travels as a query parameter.
func (g *Gateway) websocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := g.parseToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	connID := fmt.Sprintf("%s-%d", r.RemoteAddr, time.Now().UnixNano())
	wsConn := &wsConnection{
		conn:     conn,
		userID:   claims.UserID,
		lastPong: time.Now(),
	}

	g.connMutex.Lock()
	g.connections[connID] = wsConn
	g.connMutex.Unlock()

	g.logger.WithFields(logrus.Fields{
		"conn_id": connID,
		"user_id": claims.UserID,
	}).Info("WebSocket client connected")

	defer func() {
		g.connMutex.Lock()
		delete(g.connections, connID)
		g.connMutex.Unlock()
		conn.Close()
		g.logger.WithField("conn_id", connID).Info("WebSocket client disconnected")
	}()

	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		wsConn.writeMu.Lock()
		wsConn.lastPong = time.Now()
		wsConn.writeMu.Unlock()
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	// The read loop only drains control frames and detects closure;
	// clients never send application messages on this socket.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-pingTicker.C:
			wsConn.writeMu.Lock()
			stale := time.Since(wsConn.lastPong) > wsPongTimeout
			var writeErr error
			if !stale {
				conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
				writeErr = conn.WriteMessage(websocket.PingMessage, nil)
			}
			wsConn.writeMu.Unlock()

			if stale || writeErr != nil {
				return
			}
		}
	}
}

// broadcastToUser sends an execution update to every open connection
// owned by the given user. Dead connections are dropped along the way.
func (g *Gateway) broadcastToUser(userID string, update *types.ExecutionUpdate) {
	g.connMutex.RLock()
	targets := make(map[string]*wsConnection)
	for id, wsConn := range g.connections {
		if wsConn.userID == userID {
			targets[id] = wsConn
		}
	}
	g.connMutex.RUnlock()

	if len(targets) == 0 {
		return
	}

	var broken []string
	for id, wsConn := range targets {
		wsConn.writeMu.Lock()
		wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		err := wsConn.conn.WriteJSON(update)
		wsConn.writeMu.Unlock()

		if err != nil {
			g.logger.WithFields(logrus.Fields{
				"conn_id": id,
				"user_id": userID,
			}).WithError(err).Warn("Dropping broken WebSocket connection")
			broken = append(broken, id)
		}
	}

	if len(broken) > 0 {
		g.connMutex.Lock()
		for _, id := range broken {
			if wsConn, ok := g.connections[id]; ok {
				wsConn.conn.Close()
				delete(g.connections, id)
			}
		}
		g.connMutex.Unlock()
	}
}
