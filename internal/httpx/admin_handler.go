package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/boardsync"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

// CatalogAdmin is the write slice of catalog.Repo.
type CatalogAdmin interface {
	Insert(ctx context.Context, it catalog.Item) (catalog.Item, error)
	Update(ctx context.Context, id string, upd catalog.ItemUpdate) (catalog.Item, error)
	Stats(ctx context.Context, day string) (catalog.SalesStats, error)
}

// OrderAdmin is the staff-facing slice of orders.Repo.
type OrderAdmin interface {
	Get(ctx context.Context, id string) (orders.Order, error)
	ListByDay(ctx context.Context, day string) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, id string, to orders.Status) (orders.Order, orders.Status, error)
}

type AdminHandler struct {
	Catalog    CatalogAdmin
	Orders     OrderAdmin
	Events     *events.Emitter
	Board      *boardsync.Dispatcher
	Placements placementlog.Repository
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/items", h.createItem)
	r.Patch("/admin/items/{id}", h.updateItem)
	r.Get("/admin/orders", h.listOrders)
	r.Patch("/admin/orders/{id}/status", h.updateStatus)
	r.Get("/admin/stats", h.stats)
	r.Post("/admin/board/sync", h.syncToday)
	r.Post("/admin/board/sync/{orderID}", h.syncOrder)
	r.Get("/admin/placements/{id}", h.placementHistory)
}

func (h *AdminHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var it catalog.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if it.Name == "" || it.PriceCents <= 0 || !catalog.ValidCategory(it.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, positive price and valid category required"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Catalog.Insert(ctx, it)
	if err != nil {
		writeError(w, err)
		return
	}
	h.emitItemUpdated(r, created)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var upd catalog.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	it, err := h.Catalog.Update(ctx, chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	h.emitItemUpdated(r, it)
	writeJSON(w, http.StatusOK, it)
}

func (h *AdminHandler) emitItemUpdated(r *http.Request, it catalog.Item) {
	if h.Events == nil {
		return
	}
	h.Events.ItemUpdated(requestID(r), events.ItemUpdatedPayload{
		ItemID:     it.ID,
		Name:       it.Name,
		Stock:      it.Stock,
		Available:  it.Available,
		PriceCents: it.PriceCents,
	})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Orders.ListByDay(ctx, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	to := orders.Status(req.Status)
	if !orders.ValidStatus(to) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, from, err := h.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), to)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Events != nil {
		h.Events.OrderStatusChanged(requestID(r), events.OrderStatusChangedPayload{
			OrderID:   o.ID,
			UserID:    o.UserID,
			OldStatus: string(from),
			NewStatus: string(o.Status),
		})
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Catalog.Stats(ctx, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) syncToday(w http.ResponseWriter, r *http.Request) {
	if h.Board == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "board sync not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	pushed, err := h.Board.SyncToday(ctx)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"pushed": pushed, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pushed": pushed})
}

func (h *AdminHandler) syncOrder(w http.ResponseWriter, r *http.Request) {
	if h.Board == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "board sync not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	o, err := h.Orders.Get(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Board.SyncOrder(ctx, o); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"order_id": o.ID})
}

func (h *AdminHandler) placementHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	history, err := h.Placements.History(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if len(history) == 0 {
		writeError(w, placementlog.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
