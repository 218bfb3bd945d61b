package cart

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore backs tests and single-node local runs.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]map[string]Line // userID -> itemID -> line
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]map[string]Line)}
}

func (s *MemoryStore) Lines(ctx context.Context, userID string) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Line
	for _, l := range s.carts[userID] {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, userID, itemID string) (Line, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.carts[userID][itemID]
	return l, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, userID string, l Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carts[userID] == nil {
		s.carts[userID] = make(map[string]Line)
	}
	s.carts[userID][l.ItemID] = l
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts[userID], itemID)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *MemoryStore) HoldersOf(ctx context.Context, itemID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for userID, lines := range s.carts {
		if _, ok := lines[itemID]; ok {
			out = append(out, userID)
		}
	}
	sort.Strings(out)
	return out, nil
}
