package session

import (
	"context"
	"sync"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/metrics"
)

// Store persists search sessions keyed by conversation ID. Get
// returns nil with no error when the conversation has no session.
type Store interface {
	Get(ctx context.Context, conversationID string) (*SearchSession, error)
	Save(ctx context.Context, conversationID string, sess *SearchSession) error
	Delete(ctx context.Context, conversationID string) error
}

// MemoryStore is the in-process Store used by single-instance
// deployments and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SearchSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*SearchSession)}
}

func (m *MemoryStore) Get(ctx context.Context, conversationID string) (*SearchSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[conversationID]
	if !ok {
		return nil, nil
	}
	return sess.clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, conversationID string, sess *SearchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[conversationID]; !ok {
		metrics.ActiveSessions.Inc()
	}
	m.sessions[conversationID] = sess.clone()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[conversationID]; ok {
		metrics.ActiveSessions.Dec()
		delete(m.sessions, conversationID)
	}
	return nil
}
