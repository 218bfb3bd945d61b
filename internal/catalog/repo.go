package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const itemColumns = `id, name, description, category, price_cents, stock, available, image_url, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Category, &it.PriceCents,
		&it.Stock, &it.Available, &it.ImageURL, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

// List returns every item; purchasable ones first, then by name.
func (r *Repo) List(ctx context.Context) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+itemColumns+` FROM items
	                              ORDER BY (available AND stock > 0) DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Item(ctx context.Context, id string) (Item, error) {
	return scanItem(r.DB.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1`, id))
}

func (r *Repo) Insert(ctx context.Context, it Item) (Item, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Category == "" {
		it.Category = CategoryMerch
	}
	return scanItem(r.DB.QueryRow(ctx, `
		INSERT INTO items (id, name, description, category, price_cents, stock, available, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+itemColumns,
		it.ID, it.Name, it.Description, it.Category, it.PriceCents, it.Stock, it.Available, it.ImageURL))
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repo) Update(ctx context.Context, id string, upd ItemUpdate) (Item, error) {
	return scanItem(r.DB.QueryRow(ctx, `
		UPDATE items SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			category    = COALESCE($4, category),
			price_cents = COALESCE($5, price_cents),
			stock       = COALESCE($6, stock),
			available   = COALESCE($7, available),
			image_url   = COALESCE($8, image_url),
			updated_at  = now()
		WHERE id=$1
		RETURNING `+itemColumns,
		id, upd.Name, upd.Description, upd.Category, upd.PriceCents, upd.Stock, upd.Available, upd.ImageURL))
}

// DecrementStock atomically takes qty units off an item. The conditional
// UPDATE means stock can never go negative; a miss is either an unknown item
// or not enough stock, disambiguated with a second read.
func (r *Repo) DecrementStock(ctx context.Context, id string, qty int) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE items SET stock = stock - $2, updated_at = now()
		 WHERE id=$1 AND available AND stock >= $2`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.Item(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: item %s, requested %d", ErrInsufficientStock, id, qty)
}

// RestoreStock is the compensation for DecrementStock.
func (r *Repo) RestoreStock(ctx context.Context, id string, qty int) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE items SET stock = stock + $2, updated_at = now() WHERE id=$1`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates orders created on the given day (YYYY-MM-DD).
func (r *Repo) Stats(ctx context.Context, day string) (SalesStats, error) {
	stats := SalesStats{
		Day:           day,
		UnitsByItem:   map[string]int{},
		CountByStatus: map[string]int{},
	}

	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_cents), 0) FROM orders
		WHERE created_at::date = $1::date AND status <> 'cancelled'`, day).
		Scan(&stats.Orders, &stats.RevenueCents)
	if err != nil {
		return stats, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT i.name, SUM(oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN items i ON i.id = oi.item_id
		WHERE o.created_at::date = $1::date AND o.status <> 'cancelled'
		GROUP BY i.name`, day)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var units int
		if err := rows.Scan(&name, &units); err != nil {
			return stats, err
		}
		stats.UnitsByItem[name] = units
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows, err = r.DB.Query(ctx, `
		SELECT status, COUNT(*) FROM orders
		WHERE created_at::date = $1::date GROUP BY status`, day)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return stats, err
		}
		stats.CountByStatus[status] = n
	}
	return stats, rows.Err()
}
