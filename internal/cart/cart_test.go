package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
)

func testCatalog() *catalog.Memory {
	return catalog.NewMemory(
		catalog.Item{ID: "cap", Name: "Casquette", Category: catalog.CategoryMerch, PriceCents: 3500, Stock: 10, Available: true},
		catalog.Item{ID: "poutine", Name: "Poutine", Category: catalog.CategoryFood, PriceCents: 1200, Stock: 3, Available: true},
		catalog.Item{ID: "retired", Name: "Ancien modèle", Category: catalog.CategoryMerch, PriceCents: 2000, Stock: 5, Available: false},
	)
}

func TestAddLineIncrements(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), testCatalog())

	_, err := svc.AddLine(ctx, "u1", "cap", 2)
	require.NoError(t, err)
	line, err := svc.AddLine(ctx, "u1", "cap", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
	assert.Equal(t, 3500, line.UnitPriceCents)
}

func TestAddLineRejectsBeyondStock(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), testCatalog())

	_, err := svc.AddLine(ctx, "u1", "poutine", 2)
	require.NoError(t, err)

	// 2 held + 2 more would exceed the 3 in stock.
	_, err = svc.AddLine(ctx, "u1", "poutine", 2)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Poutine")

	// The cart kept the old quantity.
	lines, err := svc.Lines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddLineRejectsUnavailable(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), testCatalog())

	_, err := svc.AddLine(ctx, "u1", "retired", 1)
	require.ErrorIs(t, err, ErrItemUnavailable)

	_, err = svc.AddLine(ctx, "u1", "cap", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), testCatalog())

	_, err := svc.AddLine(ctx, "u1", "cap", 2)
	require.NoError(t, err)

	// Absolute, not incremental.
	line, err := svc.UpdateQuantity(ctx, "u1", "cap", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, line.Quantity)

	// Zero removes the line.
	_, err = svc.UpdateQuantity(ctx, "u1", "cap", 0)
	require.NoError(t, err)
	lines, err := svc.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), testCatalog())

	_, err := svc.AddLine(ctx, "u1", "cap", 2)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "u1", "poutine", 3)
	require.NoError(t, err)

	totals, err := svc.Totals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, totals.Items)
	assert.Equal(t, 2*3500+3*1200, totals.Cents)
}

func TestClearLeavesOtherCartsAlone(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), testCatalog())

	_, err := svc.AddLine(ctx, "u1", "cap", 1)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "u2", "cap", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "u1"))

	lines, err := svc.Lines(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
