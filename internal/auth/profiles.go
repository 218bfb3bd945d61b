package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("auth: profile not found")

type Profile struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// ProfileRepo reads the profiles table kept in sync by the identity provider.
type ProfileRepo struct{ DB *pgxpool.Pool }

func (r *ProfileRepo) Get(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	err := r.DB.QueryRow(ctx,
		`SELECT user_id, email, display_name, role FROM profiles WHERE user_id=$1`, userID).
		Scan(&p.UserID, &p.Email, &p.DisplayName, &p.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	return p, err
}
