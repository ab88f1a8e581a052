package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the authoritative mapping of live connections to identities.
type Registry interface {
	// Register binds identity to conn, replacing any prior binding for
	// that conn. Re-login rebinds, it never errors.
	Register(conn uuid.UUID, identity string)

	// Unregister removes the binding for conn. Returns true if a binding
	// was removed; unregistering an unknown conn is a no-op.
	Unregister(conn uuid.UUID) bool

	// IdentityOf looks up the identity bound to conn.
	IdentityOf(conn uuid.UUID) (string, bool)

	// ConnectionsOf returns all connections currently bound to identity.
	// May be empty, one, or more, since identities are not unique.
	ConnectionsOf(identity string) []uuid.UUID

	// Snapshot returns the current roster, one entry per registered
	// connection. Order is unspecified.
	Snapshot() []string

	// Len returns the number of registered connections.
	Len() int
}

// registry implements Registry with mutex-guarded maps.
type registry struct {
	mu      sync.RWMutex
	conns   map[uuid.UUID]string
	byIdent map[string]map[uuid.UUID]struct{}
}

// NewRegistry creates an empty Session Registry.
func NewRegistry() Registry {
	return &registry{
		conns:   make(map[uuid.UUID]string),
		byIdent: make(map[string]map[uuid.UUID]struct{}),
	}
}

func (r *registry) Register(conn uuid.UUID, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[conn]; ok {
		r.removeReverse(prev, conn)
	}

	r.conns[conn] = identity
	set, ok := r.byIdent[identity]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		r.byIdent[identity] = set
	}
	set[conn] = struct{}{}
}

func (r *registry) Unregister(conn uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.conns[conn]
	if !ok {
		return false
	}

	delete(r.conns, conn)
	r.removeReverse(identity, conn)
	return true
}

func (r *registry) IdentityOf(conn uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.conns[conn]
	return identity, ok
}

func (r *registry) ConnectionsOf(identity string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byIdent[identity]
	if len(set) == 0 {
		return nil
	}

	conns := make([]uuid.UUID, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	return conns
}

func (r *registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster := make([]string, 0, len(r.conns))
	for _, identity := range r.conns {
		roster = append(roster, identity)
	}
	return roster
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// removeReverse drops conn from the reverse index. Caller holds the lock.
func (r *registry) removeReverse(identity string, conn uuid.UUID) {
	set, ok := r.byIdent[identity]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.byIdent, identity)
	}
}
