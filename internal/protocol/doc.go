// Package protocol defines the JSON wire format spoken over each
// WebSocket connection.
//
// Every frame is an Envelope: {"type": "...", "msg": {...}}.
//
// Client -> server:
//   - "login"        LoginMsg
//   - "send_message" SendMessageMsg
//
// Server -> client:
//   - "users"           UsersMsg (full roster snapshot, no diffs)
//   - "receive_message" model.Message
package protocol
