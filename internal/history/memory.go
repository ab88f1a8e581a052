package history

import (
	"context"
	"sync"

	"github.com/jmorel/presence-relay/internal/model"
)

// MemoryStore keeps the most recent messages in a fixed-capacity ring.
// Once full, each append evicts the oldest record.
type MemoryStore struct {
	mu    sync.Mutex
	buf   []model.Message
	head  int // oldest record
	count int
}

// NewMemoryStore creates a ring holding at most capacity records.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryStore{
		buf: make([]model.Message, capacity),
	}
}

func (s *MemoryStore) Append(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := (s.head + s.count) % len(s.buf)
	s.buf[tail] = msg
	if s.count == len(s.buf) {
		s.head = (s.head + 1) % len(s.buf)
	} else {
		s.count++
	}
}

// Recent returns up to n records, oldest first.
func (s *MemoryStore) Recent(n int) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > s.count || n < 0 {
		n = s.count
	}

	out := make([]model.Message, 0, n)
	start := s.count - n
	for i := start; i < s.count; i++ {
		out = append(out, s.buf[(s.head+i)%len(s.buf)])
	}
	return out
}

// Len returns the number of retained records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }
