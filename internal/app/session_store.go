package app

import (
	"sync"

	"github.com/yourusername/fetchbot/internal/domain"
)

// MemorySessionStore is an in-process SessionStore. Entries are keyed by
// chat session, so concurrent sessions never touch each other's slot.
type MemorySessionStore struct {
	mu      sync.Mutex
	pending map[int64]domain.Pending
}

// NewMemorySessionStore creates an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{pending: make(map[int64]domain.Pending)}
}

// Put stores the pending request for a session, replacing any previous one.
func (s *MemorySessionStore) Put(sessionID int64, pending domain.Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[sessionID] = pending
}

// Take removes and returns the pending request for a session. Consuming
// on read keeps at most one download in flight per session: a second
// choice event for the same preview reports an expired link.
func (s *MemorySessionStore) Take(sessionID int64) (domain.Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[sessionID]
	if ok {
		delete(s.pending, sessionID)
	}
	return p, ok
}
