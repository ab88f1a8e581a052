// Package connection adapts WebSocket transport sessions to router events.
//
// Each accepted connection gets:
//   - A read pump that decodes inbound frames into typed router events
//   - A write pump that drains a buffered outbound channel
//   - Ping/pong keepalive with a read deadline
//
// The Hub tracks every live connection, identified or not, and
// implements the router's delivery sink. Outbound pushes never block:
// a slow client's frames are dropped once its buffer fills.
package connection
