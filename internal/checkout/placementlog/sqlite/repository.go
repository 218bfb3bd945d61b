// Package sqlite backs placementlog.Repository with a local SQLite file.
//
// WAL mode keeps the placement goroutine's writes from blocking the admin
// history endpoint's reads. The pure-Go modernc driver avoids CGO so the
// binary still cross-compiles and runs on Alpine.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog"
)

// The table is append-only: one immutable row per lifecycle transition.
const schema = `
CREATE TABLE IF NOT EXISTS placement_logs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    placement_id   TEXT NOT NULL,
    user_id        TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL,
    current_step   TEXT NOT NULL DEFAULT '',
    payload        TEXT,
    error_message  TEXT NOT NULL DEFAULT '',
    request_id     TEXT NOT NULL DEFAULT '',
    updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_placement_logs_placement_id
    ON placement_logs(placement_id, updated_at);

CREATE INDEX IF NOT EXISTS idx_placement_logs_request_id
    ON placement_logs(request_id);
`

type Repository struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("placementlog: open %q: %w", path, err)
	}
	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("placementlog: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) Save(ctx context.Context, e placementlog.Entry) error {
	const q = `
		INSERT INTO placement_logs
			(placement_id, user_id, status, current_step, payload, error_message, request_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		e.PlacementID,
		e.UserID,
		string(e.Status),
		e.CurrentStep,
		nullableString(e.Payload),
		e.ErrorMessage,
		e.RequestID,
		e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("placementlog: save entry for %q: %w", e.PlacementID, err)
	}
	return nil
}

// Latest returns the most recent entry for a placement.
func (r *Repository) Latest(ctx context.Context, placementID string) (placementlog.Entry, error) {
	const q = selectColumns + `
		WHERE  placement_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, placementID))
	if errors.Is(err, sql.ErrNoRows) {
		return placementlog.Entry{}, placementlog.ErrNotFound
	}
	if err != nil {
		return placementlog.Entry{}, fmt.Errorf("placementlog: latest for %q: %w", placementID, err)
	}
	return e, nil
}

// History returns every entry for a placement, oldest first.
func (r *Repository) History(ctx context.Context, placementID string) ([]placementlog.Entry, error) {
	const q = selectColumns + `
		WHERE  placement_id = ?
		ORDER  BY updated_at, id`
	rows, err := r.db.QueryContext(ctx, q, placementID)
	if err != nil {
		return nil, fmt.Errorf("placementlog: history for %q: %w", placementID, err)
	}
	defer rows.Close()
	var out []placementlog.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("placementlog: history for %q: %w", placementID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const selectColumns = `
		SELECT placement_id, user_id, status, current_step, COALESCE(payload,''),
		       error_message, request_id, updated_at
		FROM   placement_logs`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (placementlog.Entry, error) {
	var e placementlog.Entry
	var updatedAt string
	err := row.Scan(
		&e.PlacementID,
		&e.UserID,
		&e.Status,
		&e.CurrentStep,
		&e.Payload,
		&e.ErrorMessage,
		&e.RequestID,
		&updatedAt,
	)
	if err != nil {
		return placementlog.Entry{}, err
	}
	// SQLite has no native datetime type; timestamps are RFC3339 TEXT.
	e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return placementlog.Entry{}, fmt.Errorf("parse time %q: %w", updatedAt, err)
	}
	return e, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
