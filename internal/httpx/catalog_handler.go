package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
)

// CatalogReader is the read-only slice of catalog.Repo the public
// endpoints need.
type CatalogReader interface {
	List(ctx context.Context) ([]catalog.Item, error)
	Item(ctx context.Context, id string) (catalog.Item, error)
}

type CatalogHandler struct {
	Catalog CatalogReader
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/items", h.listItems)
	r.Get("/items/{id}", h.getItem)
}

func (h *CatalogHandler) listItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Catalog.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) getItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.Catalog.Item(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}
