package state

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps sessions in process memory. It is the default backend
// for tests and single-instance deployments; clones on both sides so callers
// never alias stored cart or transcript slices.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*CheckoutSession
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*CheckoutSession),
	}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*CheckoutSession, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, ErrInvalidSession
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, session *CheckoutSession) error {
	if session == nil {
		return ErrNilSession
	}
	id := strings.TrimSpace(session.SessionID)
	if id == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = session.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
