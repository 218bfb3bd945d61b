package orders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process order store for tests.
type Memory struct {
	mu     sync.Mutex
	orders map[string]Order
	lines  map[string][]Line
}

func NewMemory() *Memory {
	return &Memory{
		orders: make(map[string]Order),
		lines:  make(map[string][]Line),
	}
}

func (m *Memory) Insert(ctx context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	o.UpdatedAt = o.CreatedAt
	o.Lines = nil
	m.orders[o.ID] = o
	return nil
}

func (m *Memory) InsertLines(ctx context.Context, orderID string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		l.OrderID = orderID
		m.lines[orderID] = append(m.lines[orderID], l)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, orderID)
	delete(m.lines, orderID)
	return nil
}

func (m *Memory) DeleteLines(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, orderID)
	return nil
}

func (m *Memory) FindByExternalID(ctx context.Context, externalID string) (Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ExternalID == externalID {
			o.Lines = append([]Line(nil), m.lines[o.ID]...)
			return o, true, nil
		}
	}
	return Order{}, false, nil
}

func (m *Memory) Get(ctx context.Context, id string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	o.Lines = append([]Line(nil), m.lines[id]...)
	return o, nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListByDay(ctx context.Context, day string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.orders {
		if o.CreatedAt.Format("2006-01-02") == day {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, id string, to Status) (Order, Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, "", ErrNotFound
	}
	if !CanTransition(o.Status, to) {
		return Order{}, "", ErrInvalidTransition
	}
	from := o.Status
	o.Status = to
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return o, from, nil
}

// Count reports the number of stored orders; test helper.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}
