package connection

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jmorel/presence-relay/internal/protocol"
	"github.com/jmorel/presence-relay/internal/router"
)

// Conn is one live transport session.
type Conn struct {
	id     uuid.UUID
	ws     *websocket.Conn
	hub    *Hub
	logger *slog.Logger

	send chan []byte

	closeOnce sync.Once
}

// ID returns the connection identifier.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// enqueue pushes a frame onto the outbound queue without blocking.
// Returns false if the frame was dropped.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close tears down the transport once. Safe to call from any goroutine.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.ws.Close()
	})
}

// readPump decodes inbound frames into router events until the
// transport fails or closes. Events for one connection are emitted in
// arrival order.
func (c *Conn) readPump() {
	defer c.hub.drop(c)

	cfg := c.hub.cfg
	c.ws.SetReadLimit(cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame parses one inbound frame and forwards the typed event.
// Malformed frames are logged and skipped, never fatal.
func (c *Conn) handleFrame(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		c.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	switch env.Type {
	case protocol.TypeLogin:
		var msg protocol.LoginMsg
		if err := json.Unmarshal(env.Msg, &msg); err != nil {
			c.logger.Warn("dropping malformed login", "error", err)
			return
		}
		c.hub.emit(router.Event{Type: router.EventLogin, Conn: c.id, Identity: msg.Identity})

	case protocol.TypeSendMessage:
		var msg protocol.SendMessageMsg
		if err := json.Unmarshal(env.Msg, &msg); err != nil {
			c.logger.Warn("dropping malformed send_message", "error", err)
			return
		}
		c.hub.emit(router.Event{Type: router.EventSend, Conn: c.id, To: msg.To, Body: msg.Message})

	default:
		c.logger.Warn("dropping frame with unknown type", "type", env.Type)
	}
}

// writePump drains the outbound queue and keeps the connection alive.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.ws.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second),
				)
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(c.hub.cfg.WriteTimeout)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
