package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("orders: order not found")
	ErrInvalidTransition = errors.New("orders: invalid status transition")
)

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, COALESCE(external_id,''), user_id, location_id, status, total_cents, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ExternalID, &o.UserID, &o.LocationID, &o.Status,
		&o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) Insert(ctx context.Context, o Order) error {
	// Empty external id stores as NULL so the UNIQUE constraint only
	// bites on real idempotency keys.
	var extID any
	if o.ExternalID != "" {
		extID = o.ExternalID
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders (id, external_id, user_id, location_id, status, total_cents)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, extID, o.UserID, o.LocationID, o.Status, o.TotalCents)
	return err
}

func (r *Repo) InsertLines(ctx context.Context, orderID string, lines []Line) error {
	for _, l := range lines {
		_, err := r.DB.Exec(ctx, `
			INSERT INTO order_items (order_id, item_id, quantity, price_cents)
			VALUES ($1,$2,$3,$4)`, orderID, l.ItemID, l.Quantity, l.PriceCents)
		if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the order row; lines cascade. Used only as saga compensation.
func (r *Repo) Delete(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	return err
}

func (r *Repo) DeleteLines(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID)
	return err
}

// FindByExternalID returns the order previously created for a client-supplied
// submission id, if any.
func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (Order, bool, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE external_id=$1`, externalID))
	if errors.Is(err, ErrNotFound) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	return o, true, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return Order{}, err
	}
	o.Lines, err = r.lines(ctx, id)
	return o, err
}

func (r *Repo) lines(ctx context.Context, orderID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT order_id, item_id, quantity, price_cents FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.Quantity, &l.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
	                    WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

// ListByDay returns orders created on the given day (YYYY-MM-DD), oldest first.
func (r *Repo) ListByDay(ctx context.Context, day string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
	                    WHERE created_at::date = $1::date ORDER BY created_at`, day)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order from one status to another and returns the
// updated order plus the status it moved from. The transition is checked
// against the state table and applied with the old status in the WHERE
// clause, so two concurrent staff updates cannot both win.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status) (Order, Status, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return Order{}, "", err
	}
	if !CanTransition(o.Status, to) {
		return Order{}, "", ErrInvalidTransition
	}
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		id, o.Status, to)
	if err != nil {
		return Order{}, "", err
	}
	if ct.RowsAffected() != 1 {
		return Order{}, "", ErrInvalidTransition
	}
	from := o.Status
	o.Status = to
	return o, from, nil
}
