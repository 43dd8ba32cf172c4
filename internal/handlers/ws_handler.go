package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notes-api/internal/middleware"
	"notes-api/internal/realtime"
)

const (
	feedWriteWait  = 5 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = 30 * time.Second
	feedReadLimit  = 1024
)

// feedConn is one admin's websocket. Writes are serialized because handlers
// publish from their own goroutines.
type feedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (f *feedConn) Send(message []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return f.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (f *feedConn) Close() {
	_ = f.conn.Close()
}

// keepAlive pings until stop is closed or a ping fails.
func (f *feedConn) keepAlive(stop <-chan struct{}) {
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := f.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait)); err != nil {
				return
			}
		}
	}
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Feeds authenticate with a bearer token, never a cookie, so any origin may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WebSocketHandler handles GET /api/admin/ws. The admin receives a "connected" event
// and then every content change event until they disconnect.
func WebSocketHandler(c *gin.Context) {
	adminID := c.GetString(middleware.KeyAdminID)
	if adminID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authorized"})
		return
	}

	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.String("admin_id", adminID), zap.Error(err))
		return
	}

	feed := &feedConn{conn: conn}
	hub := realtime.GetHub()
	hub.Register(adminID, feed)
	stop := make(chan struct{})
	defer func() {
		close(stop)
		hub.Unregister(adminID, feed)
		feed.Close()
		zap.L().Debug("admin feed disconnected", zap.String("admin_id", adminID))
	}()
	zap.L().Debug("admin feed connected", zap.String("admin_id", adminID), zap.Int("clients", hub.Count()))

	if !feed.Send(realtime.Connected(adminID)) {
		return
	}
	go feed.keepAlive(stop)

	conn.SetReadLimit(feedReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	// Inbound messages are ignored; reading drives pong handling and close detection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
