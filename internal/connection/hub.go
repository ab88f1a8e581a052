package connection

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jmorel/presence-relay/internal/router"
)

// Hub owns every live connection and fans deliveries out to them.
// It implements router.Sink.
type Hub struct {
	cfg    Config
	events chan router.Event
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[uuid.UUID]*Conn
}

// NewHub creates a Hub.
func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg:    cfg,
		events: make(chan router.Event, cfg.EventBufferSize),
		logger: logger,
		conns:  make(map[uuid.UUID]*Conn),
	}
}

// Events returns the channel of inbound events for the Message Router.
func (h *Hub) Events() <-chan router.Event {
	return h.events
}

// Adopt wraps an upgraded WebSocket, tracks it, and starts its pumps.
func (h *Hub) Adopt(ws *websocket.Conn) *Conn {
	c := &Conn{
		id:   uuid.New(),
		ws:   ws,
		hub:  h,
		send: make(chan []byte, h.cfg.SendBufferSize),
	}
	c.logger = h.logger.With("conn", c.id)

	h.mu.Lock()
	h.conns[c.id] = c
	total := len(h.conns)
	h.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Debug("connection adopted", "total", total)
	return c
}

// Deliver pushes a frame to one connection. Unknown connections and
// full buffers are silently tolerated; a slow client never stalls
// delivery to the rest.
func (h *Hub) Deliver(conn uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.conns[conn]
	if !ok {
		return
	}
	if !c.enqueue(data) {
		c.logger.Warn("send buffer full, dropping frame")
	}
}

// Broadcast pushes a frame to every live connection, identified or not.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.conns {
		if !c.enqueue(data) {
			c.logger.Warn("send buffer full, dropping broadcast frame")
		}
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll tears down every connection. Read pumps then emit their
// disconnect events, so the router must still be running.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.ws.Close()
	}
}

// emit forwards one event to the router. Blocking here only stalls the
// originating connection's read pump, preserving per-connection order.
func (h *Hub) emit(ev router.Event) {
	h.events <- ev
}

// drop untracks a connection and reports its disconnect. Called once
// per connection when its read pump exits.
func (h *Hub) drop(c *Conn) {
	h.mu.Lock()
	_, tracked := h.conns[c.id]
	delete(h.conns, c.id)
	c.close()
	total := len(h.conns)
	h.mu.Unlock()

	if !tracked {
		return
	}

	h.emit(router.Event{Type: router.EventDisconnect, Conn: c.id})
	c.logger.Debug("connection dropped", "total", total)
}
