package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/cart"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/locations"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/notify"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses and keeps the
// message as the wrapped error text, which already names the item.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, notify.ErrNotFound),
		errors.Is(err, locations.ErrNotFound),
		errors.Is(err, placementlog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrLocationRequired),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrItemUnavailable),
		errors.Is(err, checkout.ErrUnknownLocation),
		errors.Is(err, orders.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, catalog.ErrInsufficientStock),
		errors.Is(err, checkout.ErrPlacementInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
