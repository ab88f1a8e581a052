package router

import "github.com/google/uuid"

// EventType identifies an inbound client event.
type EventType string

const (
	EventLogin      EventType = "login"
	EventSend       EventType = "send_message"
	EventDisconnect EventType = "disconnect"
)

// Event is one inbound event from the transport layer. Fields beyond
// Type and Conn are populated per event type.
type Event struct {
	Type EventType
	Conn uuid.UUID

	Identity string // login
	To       string // send_message
	Body     string // send_message
}

// Delivery is one outbound push produced by routing a single event.
type Delivery struct {
	Broadcast bool      // Send to every connected client
	Conn      uuid.UUID // Target when not broadcasting
	Data      []byte    // Encoded protocol frame
}

// Sink performs outbound delivery. Implemented by the connection Hub
// in production and by fakes in tests. Both methods must not block on
// slow clients.
type Sink interface {
	// Deliver pushes a frame to one connection. Unknown connections
	// are ignored.
	Deliver(conn uuid.UUID, data []byte)

	// Broadcast pushes a frame to every connected client, whether or
	// not it has logged in.
	Broadcast(data []byte)
}

// Stats contains runtime counters.
type Stats struct {
	EventsProcessed  int64
	MessagesRouted   int64 // Records delivered to a recipient connection
	MessagesEchoed   int64 // Echo deliveries back to senders
	MessagesDropped  int64 // Sends whose recipient was offline
	SendsIgnored     int64 // Sends from unidentified connections
	RosterBroadcasts int64
}
