package credstore

import (
	"context"
	"sync"
)

// Memory keeps the session in process memory.
type Memory struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns a copy of the cached session.
func (m *Memory) Get(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

// Put stores a copy of s.
func (m *Memory) Put(ctx context.Context, s *Session) error {
	cp := *s
	m.mu.Lock()
	m.session = &cp
	m.mu.Unlock()
	return nil
}

// Clear empties the slot.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}

var _ Store = (*Memory)(nil)
