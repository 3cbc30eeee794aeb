package assistant

import (
	"context"
	"sync"
)

// MemoryStore is an in-process session store for tests and single-node dev
// setups. No TTL enforcement.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return &Session{History: []Message{}}, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.sessions[id] = &copied
	return nil
}
