package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/jobscout/internal/domain/session"
)

// Default memory store configuration constants.
const (
	defaultMaxSessions = 1_000
)

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*session.Session
	order       []string // insertion order, oldest first
	maxSessions int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions:    make(map[string]*session.Session),
		maxSessions: defaultMaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of sess.
func (s *MemoryStore) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		s.order = append(s.order, sess.ID)
	}
	s.sessions[sess.ID] = sess.Clone()

	for s.maxSessions > 0 && len(s.order) > s.maxSessions {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, oldest)
	}
	return nil
}

// Get returns a copy of the stored session.
func (s *MemoryStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess.Clone(), nil
}

// List returns up to limit sessions, most recently created first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*session.Session, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session.Session, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.sessions[s.order[i]].Clone())
	}
	return out, nil
}

// Count returns the number of stored sessions.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
