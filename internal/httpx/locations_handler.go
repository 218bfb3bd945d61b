package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/locations"
)

// LocationStore is the slice of locations.Repo the user endpoints need.
// The chosen pickup point lives server-side, keyed by user, so it
// survives a browser change.
type LocationStore interface {
	List(ctx context.Context) ([]locations.Location, error)
	Active(ctx context.Context, id string) (bool, error)
	SaveLast(ctx context.Context, userID, locationID string) error
	Last(ctx context.Context, userID string) (string, error)
}

type LocationsHandler struct {
	Locations LocationStore
}

type setLocationReq struct {
	LocationID string `json:"location_id"`
}

func (h *LocationsHandler) Register(r chi.Router) {
	r.Get("/locations", h.list)
	r.Get("/me/location", h.current)
	r.Put("/me/location", h.set)
}

func (h *LocationsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Locations.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *LocationsHandler) current(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Locations.Last(ctx, u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"location_id": id})
}

func (h *LocationsHandler) set(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	var req setLocationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LocationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "location_id required"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	active, err := h.Locations.Active(ctx, req.LocationID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !active {
		writeError(w, checkout.ErrUnknownLocation)
		return
	}
	if err := h.Locations.SaveLast(ctx, u.ID, req.LocationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"location_id": req.LocationID})
}
