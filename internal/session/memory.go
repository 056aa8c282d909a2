package session

import (
	"context"
	"sync"
	"time"

	"github.com/carebyte/carebot/internal/log"
)

// memoryStore keeps states in an in-process map. Sessions never expire;
// this backend exists for development and tests.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*State
	closed   bool
	logger   log.Logger
}

func newMemoryStore(logger log.Logger) *memoryStore {
	return &memoryStore{
		sessions: make(map[string]*State),
		logger:   logger,
	}
}

func (s *memoryStore) Create(_ context.Context, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now
	st.Version = 1

	s.sessions[st.ID] = st.Clone()
	s.logger.Debug("session created", "session_id", st.ID)
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	st, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *memoryStore) Update(_ context.Context, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	stored, ok := s.sessions[st.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != st.Version {
		return ErrVersionConflict
	}

	st.Version++
	st.UpdatedAt = time.Now()
	s.sessions[st.ID] = st.Clone()
	s.logger.Debug("session updated", "session_id", st.ID, "version", st.Version)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	delete(s.sessions, id)
	s.logger.Debug("session deleted", "session_id", id)
	return nil
}

func (s *memoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.sessions = nil
	return nil
}
