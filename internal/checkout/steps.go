package checkout

import (
	"context"
	"fmt"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

// --- order row ---

type orderStep struct {
	repo  OrderStore
	order orders.Order
}

func (s *orderStep) Name() string { return "create_order" }

func (s *orderStep) Execute(ctx context.Context) error {
	if err := s.repo.Insert(ctx, s.order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *orderStep) Compensate(ctx context.Context) error {
	return s.repo.Delete(ctx, s.order.ID)
}

// --- order lines ---

type linesStep struct {
	repo    OrderStore
	orderID string
	lines   []orders.Line
}

func (s *linesStep) Name() string { return "write_lines" }

func (s *linesStep) Execute(ctx context.Context) error {
	if err := s.repo.InsertLines(ctx, s.orderID, s.lines); err != nil {
		return fmt.Errorf("write lines: %w", err)
	}
	return nil
}

func (s *linesStep) Compensate(ctx context.Context) error {
	return s.repo.DeleteLines(ctx, s.orderID)
}

// --- stock, one step per line ---
//
// Keeping the decrement per line means a failure halfway through a cart
// only compensates the lines that actually got their stock.

type stockStep struct {
	stock    StockStore
	itemID   string
	itemName string
	quantity int
}

func (s *stockStep) Name() string { return "reserve_stock:" + s.itemID }

func (s *stockStep) Execute(ctx context.Context) error {
	if err := s.stock.DecrementStock(ctx, s.itemID, s.quantity); err != nil {
		return fmt.Errorf("reserve %d x %s: %w", s.quantity, s.itemName, err)
	}
	return nil
}

func (s *stockStep) Compensate(ctx context.Context) error {
	return s.stock.RestoreStock(ctx, s.itemID, s.quantity)
}
