package placementlog

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("placementlog: placement not found")

// Memory backs tests.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(ctx context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) Latest(ctx context.Context, placementID string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].PlacementID == placementID {
			return m.entries[i], nil
		}
	}
	return Entry{}, ErrNotFound
}

// Last returns the most recent entry across all placements; test helper.
func (m *Memory) Last() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

func (m *Memory) History(ctx context.Context, placementID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.PlacementID == placementID {
			out = append(out, e)
		}
	}
	return out, nil
}
