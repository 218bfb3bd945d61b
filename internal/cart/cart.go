// Package cart holds prospective purchase lines before checkout. Carts are
// transient copies: the catalog stays the source of truth for price, name
// and stock, and every mutation re-checks it.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
)

type Line struct {
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	UnitPriceCents int    `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	AvailableStock int    `json:"available_stock"`
}

type Totals struct {
	Items int `json:"items"`
	Cents int `json:"cents"`
}

var (
	ErrInvalidQuantity   = errors.New("cart: quantity must be at least 1")
	ErrItemUnavailable   = errors.New("cart: item unavailable")
	ErrInsufficientStock = errors.New("cart: insufficient stock")
)

// Store persists cart lines per user. HoldersOf supports the item feed:
// given an item, which users hold it in their cart right now.
type Store interface {
	Lines(ctx context.Context, userID string) ([]Line, error)
	Get(ctx context.Context, userID, itemID string) (Line, bool, error)
	Put(ctx context.Context, userID string, l Line) error
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	HoldersOf(ctx context.Context, itemID string) ([]string, error)
}

// CatalogReader is the slice of the catalog the cart needs for pre-checks.
type CatalogReader interface {
	Item(ctx context.Context, id string) (catalog.Item, error)
}

type Service struct {
	store   Store
	catalog CatalogReader
}

func NewService(store Store, cat CatalogReader) *Service {
	return &Service{store: store, catalog: cat}
}

// AddLine inserts or increments a line after re-reading the item's current
// stock. The cart is left untouched when the request cannot be satisfied.
func (s *Service) AddLine(ctx context.Context, userID, itemID string, qty int) (Line, error) {
	if qty < 1 {
		return Line{}, ErrInvalidQuantity
	}
	it, err := s.catalog.Item(ctx, itemID)
	if err != nil {
		return Line{}, err
	}
	if !it.Available {
		return Line{}, fmt.Errorf("%w: %s", ErrItemUnavailable, it.Name)
	}
	existing, _, err := s.store.Get(ctx, userID, itemID)
	if err != nil {
		return Line{}, err
	}
	want := existing.Quantity + qty
	if want > it.Stock {
		return Line{}, fmt.Errorf("%w: %s has %d left, wanted %d", ErrInsufficientStock, it.Name, it.Stock, want)
	}
	l := Line{
		ItemID:         it.ID,
		Name:           it.Name,
		UnitPriceCents: it.PriceCents,
		Quantity:       want,
		AvailableStock: it.Stock,
	}
	if err := s.store.Put(ctx, userID, l); err != nil {
		return Line{}, err
	}
	return l, nil
}

// UpdateQuantity sets the absolute quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, qty int) (Line, error) {
	if qty <= 0 {
		return Line{}, s.store.Remove(ctx, userID, itemID)
	}
	it, err := s.catalog.Item(ctx, itemID)
	if err != nil {
		return Line{}, err
	}
	if !it.Available {
		return Line{}, fmt.Errorf("%w: %s", ErrItemUnavailable, it.Name)
	}
	if qty > it.Stock {
		return Line{}, fmt.Errorf("%w: %s has %d left, wanted %d", ErrInsufficientStock, it.Name, it.Stock, qty)
	}
	l := Line{
		ItemID:         it.ID,
		Name:           it.Name,
		UnitPriceCents: it.PriceCents,
		Quantity:       qty,
		AvailableStock: it.Stock,
	}
	if err := s.store.Put(ctx, userID, l); err != nil {
		return Line{}, err
	}
	return l, nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, itemID string) error {
	return s.store.Remove(ctx, userID, itemID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

func (s *Service) Lines(ctx context.Context, userID string) ([]Line, error) {
	return s.store.Lines(ctx, userID)
}

func (s *Service) Totals(ctx context.Context, userID string) (Totals, error) {
	lines, err := s.store.Lines(ctx, userID)
	if err != nil {
		return Totals{}, err
	}
	return Sum(lines), nil
}

// Sum derives totalItems and totalAmount from a set of lines.
func Sum(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Items += l.Quantity
		t.Cents += l.Quantity * l.UnitPriceCents
	}
	return t
}
