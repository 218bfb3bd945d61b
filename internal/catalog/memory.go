package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process item store for tests and local runs.
type Memory struct {
	mu    sync.Mutex
	items map[string]Item
}

func NewMemory(items ...Item) *Memory {
	m := &Memory{items: make(map[string]Item)}
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		m.items[it.ID] = it
	}
	return m
}

func (m *Memory) List(ctx context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Item(ctx context.Context, id string) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

func (m *Memory) Insert(ctx context.Context, it Item) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.CreatedAt = time.Now()
	it.UpdatedAt = it.CreatedAt
	m.items[it.ID] = it
	return it, nil
}

func (m *Memory) Update(ctx context.Context, id string, upd ItemUpdate) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	if upd.Name != nil {
		it.Name = *upd.Name
	}
	if upd.Description != nil {
		it.Description = *upd.Description
	}
	if upd.Category != nil {
		it.Category = *upd.Category
	}
	if upd.PriceCents != nil {
		it.PriceCents = *upd.PriceCents
	}
	if upd.Stock != nil {
		it.Stock = *upd.Stock
	}
	if upd.Available != nil {
		it.Available = *upd.Available
	}
	if upd.ImageURL != nil {
		it.ImageURL = *upd.ImageURL
	}
	it.UpdatedAt = time.Now()
	m.items[id] = it
	return it, nil
}

func (m *Memory) DecrementStock(ctx context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	if !it.Available || it.Stock < qty {
		return fmt.Errorf("%w: item %s, requested %d", ErrInsufficientStock, id, qty)
	}
	it.Stock -= qty
	m.items[id] = it
	return nil
}

func (m *Memory) RestoreStock(ctx context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	it.Stock += qty
	m.items[id] = it
	return nil
}

// Stats reports empty aggregates; the memory store holds no order history.
func (m *Memory) Stats(ctx context.Context, day string) (SalesStats, error) {
	return SalesStats{
		Day:           day,
		UnitsByItem:   map[string]int{},
		CountByStatus: map[string]int{},
	}, nil
}
