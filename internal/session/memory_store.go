package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory. Used when no Redis address
// is configured and throughout the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	byUser   map[uint]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		byUser:   make(map[uint]map[string]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, userID uint) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	sess := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][sess.ID] = struct{}{}

	return &sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	delete(s.byUser[sess.UserID], id)
	return nil
}

func (s *MemoryStore) RevokeUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.byUser[userID] {
		delete(s.sessions, id)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Ensure interface is satisfied at compile time.
var _ Store = (*MemoryStore)(nil)
