package handler

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/livedesk/user-service/internal/hub"
)

const (
	maxMessageSize = 512
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
)

// WSHandler upgrades HTTP requests to WebSocket connections and registers
// them with the hub for event fan-out.
type WSHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler builds a handler that accepts the given origins. An empty
// list or a "*" entry allows any origin.
func NewWSHandler(h *hub.Hub, allowedOrigins []string) *WSHandler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
			continue
		}
		if origin != "" {
			allowed[strings.ToLower(origin)] = struct{}{}
		}
	}

	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := strings.ToLower(r.Header.Get("Origin"))
				_, ok := allowed[origin]
				if !ok {
					log.Printf("Blocked WebSocket connection from disallowed origin: %q", origin)
				}
				return ok
			},
		},
	}
}

// Serve upgrades the request, registers the connection, and reads incoming
// messages until the client disconnects. Incoming messages are echoed to all
// connected clients.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &wsConn{conn: conn}
	h.hub.Add(client)
	log.Printf("Client connected from %s. Total connections: %d", c.Request.RemoteAddr, h.hub.ConnectionCount())

	stop := make(chan struct{})
	defer func() {
		close(stop)
		h.hub.Remove(client)
		_ = conn.Close()
		log.Printf("Client disconnected from %s. Total connections: %d", c.Request.RemoteAddr, h.hub.ConnectionCount())
	}()

	go h.keepAlive(client, stop)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket read error from %s: %v", c.Request.RemoteAddr, err)
			}
			return
		}
		h.hub.BroadcastMessage(message)
	}
}

func (h *WSHandler) keepAlive(client *wsConn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := client.ping(); err != nil {
				return
			}
		}
	}
}

// wsConn adapts a gorilla connection to the hub's Conn capability. The mutex
// serializes writes: gorilla connections support at most one concurrent
// writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}
