package locations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// List returns the active locations of the currently active event.
func (r *Repo) List(ctx context.Context) ([]Location, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT l.id, l.event_id, l.name, l.active
		FROM locations l
		JOIN events e ON e.id = l.event_id AND e.active
		WHERE l.active
		ORDER BY l.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.EventID, &l.Name, &l.Active); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) Active(ctx context.Context, id string) (bool, error) {
	var active bool
	err := r.DB.QueryRow(ctx, `SELECT active FROM locations WHERE id=$1`, id).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return active, err
}

// Name returns the display name of a location.
func (r *Repo) Name(ctx context.Context, id string) (string, error) {
	var name string
	err := r.DB.QueryRow(ctx, `SELECT name FROM locations WHERE id=$1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

// SaveLast remembers the location a user checked out with.
func (r *Repo) SaveLast(ctx context.Context, userID, locationID string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO user_locations (user_id, location_id, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (user_id) DO UPDATE SET location_id=$2, updated_at=now()`,
		userID, locationID)
	return err
}

// Last returns the user's last checkout location, or "" when none is stored.
func (r *Repo) Last(ctx context.Context, userID string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx,
		`SELECT location_id FROM user_locations WHERE user_id=$1`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}
