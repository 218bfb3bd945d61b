package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/cart"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/locations"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/notify"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

type testAPI struct {
	router *chi.Mux
	orders *orders.Memory
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cat := catalog.NewMemory(
		catalog.Item{ID: "cap", Name: "Casquette", Category: catalog.CategoryMerch, PriceCents: 1300, Stock: 10, Available: true},
		catalog.Item{ID: "poutine", Name: "Poutine", Category: catalog.CategoryFood, PriceCents: 1200, Stock: 3, Available: true},
	)
	orderRepo := orders.NewMemory()
	cartSvc := cart.NewService(cart.NewMemoryStore(), cat)
	locs := locations.NewMemory("paddock")
	placer := checkout.NewPlacer(orderRepo, cat, cartSvc, locs, placementlog.NewMemory(), nil, nil)

	sessions := auth.NewMemoryStore()
	sessions.Put("user-tok", auth.User{ID: "u1", Role: auth.RoleUser})
	sessions.Put("other-tok", auth.User{ID: "u2", Role: auth.RoleUser})
	sessions.Put("admin-tok", auth.User{ID: "staff", Role: auth.RoleAdmin})

	router := NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(sessions))
		(&CatalogHandler{Catalog: cat}).Register(r)
		(&CartHandler{Cart: cartSvc}).Register(r)
		(&CheckoutHandler{Placer: placer}).Register(r)
		(&OrdersHandler{Orders: orderRepo}).Register(r)
		(&NotificationsHandler{Notes: notify.NewMemory()}).Register(r)
		(&LocationsHandler{Locations: locs}).Register(r)
		r.Group(func(ar chi.Router) {
			ar.Use(auth.RequireAdmin)
			(&AdminHandler{Catalog: cat, Orders: orderRepo, Placements: placementlog.NewMemory()}).Register(ar)
		})
	})
	return &testAPI{router: router, orders: orderRepo}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutFlow(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart/items", "user-tok", `{"item_id":"cap","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/checkout", "user-tok", `{"external_id":"ext-1","location_id":"paddock"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		OrderID    string `json:"order_id"`
		Status     string `json:"status"`
		TotalCents int    `json:"total_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 2600, resp.TotalCents)

	// The order shows up for its owner.
	rec = api.do(t, http.MethodGet, "/orders/"+resp.OrderID, "user-tok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutErrors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/checkout", "user-tok", `{"location_id":"paddock"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code) // empty cart

	rec = api.do(t, http.MethodPost, "/cart/items", "user-tok", `{"item_id":"poutine","quantity":5}`)
	assert.Equal(t, http.StatusConflict, rec.Code) // only 3 in stock

	rec = api.do(t, http.MethodPost, "/checkout", "user-tok", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code) // no location
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/admin/items", "user-tok", `{"name":"Tuque","category":"merch","price_cents":2200,"stock":5,"available":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/admin/items", "admin-tok", `{"name":"Tuque","category":"merch","price_cents":2200,"stock":5,"available":true}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAdminStatusTransition(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart/items", "user-tok", `{"item_id":"cap","quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/checkout", "user-tok", `{"external_id":"ext-2","location_id":"paddock"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = api.do(t, http.MethodPatch, "/admin/orders/"+resp.OrderID+"/status", "admin-tok", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Going back to pending is not a valid transition.
	rec = api.do(t, http.MethodPatch, "/admin/orders/"+resp.OrderID+"/status", "admin-tok", `{"status":"pending"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPatch, "/admin/orders/"+resp.OrderID+"/status", "admin-tok", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersAreOwnerScoped(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart/items", "user-tok", `{"item_id":"cap","quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/checkout", "user-tok", `{"external_id":"ext-3","location_id":"paddock"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = api.do(t, http.MethodGet, "/orders/"+resp.OrderID, "user-tok", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different (non-admin) user sees 404, not someone else's order.
	rec = api.do(t, http.MethodGet, "/orders/"+resp.OrderID, "other-tok", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
