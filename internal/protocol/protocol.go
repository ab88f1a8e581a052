package protocol

import (
	"encoding/json"
	"fmt"
)

// Frame types.
const (
	TypeLogin          = "login"
	TypeSendMessage    = "send_message"
	TypeUsers          = "users"
	TypeReceiveMessage = "receive_message"
)

// Envelope is the outer frame for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// LoginMsg is the payload for a "login" frame.
type LoginMsg struct {
	Identity string `json:"identity"`
}

// SendMessageMsg is the payload for a "send_message" frame.
type SendMessageMsg struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// UsersMsg is the payload for a "users" frame. One entry per registered
// connection, so an identity claimed by two connections appears twice.
type UsersMsg struct {
	Users []string `json:"users"`
}

// Encode marshals a payload into a framed envelope.
func Encode(frameType string, msg any) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", frameType, err)
	}
	return json.Marshal(Envelope{Type: frameType, Msg: payload})
}

// Decode parses a raw frame into an envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope missing type")
	}
	return env, nil
}
