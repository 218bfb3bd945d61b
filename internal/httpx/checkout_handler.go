package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout"
)

type CheckoutHandler struct {
	Placer *checkout.Placer
}

type placeOrderReq struct {
	ExternalID string `json:"external_id"`
	LocationID string `json:"location_id"`
}

type placeOrderResp struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	TotalCents int    `json:"total_cents"`
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.placeOrder)
}

func (h *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// Stock reservation plus compensation can take a few round trips.
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Placer.Place(ctx, checkout.Request{
		ExternalID: req.ExternalID,
		UserID:     u.ID,
		LocationID: req.LocationID,
		RequestID:  requestID(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeOrderResp{
		OrderID:    o.ID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
	})
}
