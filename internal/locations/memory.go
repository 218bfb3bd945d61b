package locations

import (
	"context"
	"sort"
	"sync"
)

// Memory backs tests; ids map to active flags.
type Memory struct {
	mu     sync.Mutex
	active map[string]bool
	names  map[string]string
	last   map[string]string
}

func NewMemory(activeIDs ...string) *Memory {
	m := &Memory{active: make(map[string]bool), names: make(map[string]string), last: make(map[string]string)}
	for _, id := range activeIDs {
		m.active[id] = true
		m.names[id] = id
	}
	return m
}

func (m *Memory) List(ctx context.Context) ([]Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Location
	for id, active := range m.active {
		if active {
			out = append(out, Location{ID: id, Name: m.names[id], Active: true})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Name(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.names[id]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func (m *Memory) Active(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[id], nil
}

func (m *Memory) SaveLast(ctx context.Context, userID, locationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[userID] = locationID
	return nil
}

func (m *Memory) Last(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[userID], nil
}
