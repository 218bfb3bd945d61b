package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, store SessionStore, admin bool) http.Handler {
	t.Helper()
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(u.ID))
	})
	if admin {
		h = RequireAdmin(h)
	}
	return Middleware(store)(h)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	srv := protected(t, NewMemoryStore(), false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsUnknownToken(t *testing.T) {
	srv := protected(t, NewMemoryStore(), false)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewarePassesUserThrough(t *testing.T) {
	store := NewMemoryStore()
	store.Put("tok-1", User{ID: "u1", Role: RoleUser})
	srv := protected(t, store, false)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	store := NewMemoryStore()
	store.Put("user-tok", User{ID: "u1", Role: RoleUser})
	store.Put("admin-tok", User{ID: "staff", Role: RoleAdmin})
	srv := protected(t, store, true)

	req := httptest.NewRequest(http.MethodPost, "/admin/items", nil)
	req.Header.Set("Authorization", "Bearer user-tok")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/items", nil)
	req.Header.Set("Authorization", "Bearer admin-tok")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
