// Package auth resolves bearer session tokens minted by the identity
// provider. Sign-in and sign-up live outside this service; the API only
// trusts what the session store says about a token.
package auth

import (
	"context"
	"errors"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

var ErrNoSession = errors.New("auth: no session for token")

// SessionStore looks up (and for the session-minting side, writes) the user
// behind a bearer token.
type SessionStore interface {
	User(ctx context.Context, token string) (User, error)
}

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the authenticated user placed in the context by the
// middleware; ok is false on unauthenticated requests.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}
