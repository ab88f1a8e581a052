package history

import (
	"context"

	"github.com/jmorel/presence-relay/internal/model"
)

// Retention backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Store receives every message record the router constructs.
// Append must never block the caller.
type Store interface {
	// Append records one message.
	Append(msg model.Message)

	// Ping reports backend health.
	Ping(ctx context.Context) error

	// Close flushes any buffered records and releases resources.
	Close(ctx context.Context) error
}

// Discard is the "none" backend: every record is dropped.
type Discard struct{}

func (Discard) Append(model.Message)        {}
func (Discard) Ping(context.Context) error  { return nil }
func (Discard) Close(context.Context) error { return nil }
