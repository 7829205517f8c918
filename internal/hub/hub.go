// Package hub fans alert messages out to an owner's connected websocket
// clients. Delivery is best-effort: a connection whose write fails is closed
// and dropped.
package hub

import "sync"

type Writer interface {
	Write(message []byte) error
	Close() error
}

// Connection is one live client subscribed to an owner's alerts.
type Connection struct {
	ID     string
	Phone  string
	Writer Writer
}

type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]*Connection // phone -> connection id -> conn
}

func New() *Hub {
	return &Hub{conns: make(map[string]map[string]*Connection)}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.conns[conn.Phone]
	if set == nil {
		set = make(map[string]*Connection)
		h.conns[conn.Phone] = set
	}
	set[conn.ID] = conn
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.conns[conn.Phone]
	if set == nil {
		return
	}
	delete(set, conn.ID)
	if len(set) == 0 {
		delete(h.conns, conn.Phone)
	}
}

// Broadcast writes message to every connection registered for phone.
func (h *Hub) Broadcast(phone string, message []byte) {
	h.mu.RLock()
	set := h.conns[phone]
	conns := make([]*Connection, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		_ = c.Writer.Close()
		h.Unregister(c)
	}
}
