package quiz

import (
	"context"
	"sync"

	"github.com/mind-engage/quizretry/internal/session"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewInMemoryStore keeps encoded snapshots so callers never share state.
func NewInMemoryStore() Store {
	return &memoryStore{sessions: map[string][]byte{}}
}

func (m *memoryStore) Get(_ context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Unmarshal(data)
}

func (m *memoryStore) Put(_ context.Context, s *session.Session) error {
	data, err := session.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	return nil
}
