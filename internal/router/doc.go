// Package router implements the Message Router component.
//
// The Message Router:
//   - Consumes typed events from all connections over a single channel,
//     which is the serialization point for all registry mutations
//   - Resolves a recipient identity to at most one live connection and
//     delivers the record there, plus an echo back to the sender
//   - Pushes a full roster snapshot to every connected client after
//     each login and disconnect
//
// Delivery is fire-and-forget: an offline recipient means the record
// reaches only the sender, and an unidentified sender produces nothing.
package router
