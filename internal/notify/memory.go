package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory collects notifications in-process; used by tests.
type Memory struct {
	mu   sync.Mutex
	rows []Notification
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Insert(ctx context.Context, n Notification) (Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()
	m.rows = append(m.rows, n)
	return n, nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Notification
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *Memory) MarkRead(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			m.rows[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) MarkAllRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].UserID == userID {
			m.rows[i].Read = true
		}
	}
	return nil
}

// All returns a copy of every stored notification; test helper.
func (m *Memory) All() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.rows...)
}
