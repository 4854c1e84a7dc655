// Package session implements the console's session contract: cookie-keyed
// server-side state with CSRF protection, inactivity timeout, and IP pinning.
package session

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrSecurityViolation  = errors.New("security violation")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Session struct {
	ID            string
	Authenticated bool
	LoginTime     time.Time
	ClientIP      string
	CSRFToken     string
}

// Store is the injected session backend. Implementations must be safe for
// concurrent use; Get returns a copy so callers cannot mutate stored state
// without a Put.
type Store interface {
	Get(id string) (*Session, bool)
	Put(s *Session)
	Delete(id string)
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	copied := s
	return &copied, true
}

func (m *MemoryStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
}

func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
