package auth

import (
	"context"
	"sync"
)

// MemoryStore is the in-process session store for tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]User)}
}

func (s *MemoryStore) User(ctx context.Context, token string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.sessions[token]
	if !ok {
		return User{}, ErrNoSession
	}
	return u, nil
}

func (s *MemoryStore) Put(token string, u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = u
}
