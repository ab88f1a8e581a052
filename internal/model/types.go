package model

import "time"

// Message is one direct message record. Immutable once constructed;
// the same value is delivered to the recipient (if online) and echoed
// back to the sender.
type Message struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Body   string    `json:"message"`
	SentAt time.Time `json:"timestamp"`
}
