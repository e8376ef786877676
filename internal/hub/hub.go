// Package hub tracks the set of currently-open outbound connections and
// performs best-effort fan-out of user events to all of them.
package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/livedesk/user-service/internal/events"
)

// Conn is the narrow capability the hub requires from a connection. The hub
// holds a non-owning reference: the transport layer opens and ultimately
// owns the underlying channel.
type Conn interface {
	Send(message []byte) error
	Close() error
}

// Hub is safe for concurrent use. Broadcasts iterate a snapshot of the
// active set, so connections may be added or removed mid-broadcast without
// corrupting iteration.
type Hub struct {
	mu    sync.RWMutex
	conns map[Conn]struct{}
}

func New() *Hub {
	return &Hub{conns: make(map[Conn]struct{})}
}

// Add registers a connection. Adding an already-registered connection is a
// no-op.
func (h *Hub) Add(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// Remove unregisters a connection. Removing an unknown connection is a no-op.
func (h *Hub) Remove(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Broadcast serializes the event once and sends it to every active
// connection. A connection whose send fails is evicted and the broadcast
// continues; delivery is best-effort with no ordering guarantee.
func (h *Hub) Broadcast(event events.UserEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event.Type, err)
		return
	}
	h.BroadcastMessage(payload)
}

// BroadcastMessage sends a pre-serialized payload to every active connection
// with the same best-effort semantics as Broadcast.
func (h *Hub) BroadcastMessage(payload []byte) {
	for _, conn := range h.snapshot() {
		if err := conn.Send(payload); err != nil {
			log.Printf("Dropping connection after failed send: %v", err)
			h.Remove(conn)
		}
	}
}

// SendTo sends a payload to a single connection. On failure the connection
// is evicted and the error returned to the caller.
func (h *Hub) SendTo(conn Conn, payload []byte) error {
	if err := conn.Send(payload); err != nil {
		log.Printf("Dropping connection after failed send: %v", err)
		h.Remove(conn)
		return err
	}
	return nil
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll closes every active connection, logging individual failures, and
// clears the set.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing connection: %v", err)
		}
	}
	log.Printf("Closed %d connections", len(conns))
}

func (h *Hub) snapshot() []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := make([]Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	return conns
}
