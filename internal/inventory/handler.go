// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"stockbook/internal/ledger"
	"stockbook/internal/web"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the inventory endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleListItems)
	r.Post("/", h.handleAddItem)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/search", h.handleSearch)
	r.Get("/categories", h.handleCategories)
	r.Get("/{id}", h.handleGetItem)
	r.Put("/{id}", h.handleUpdateItem)
	r.Delete("/{id}", h.handleDeleteItem)
	r.Post("/{id}/adjust", h.handleAdjustStock)
	return r
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var input ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.AddItem(r.Context(), input)
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var update ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		web.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta       decimal.Decimal `json:"delta"`
		ReferenceID string          `json:"reference_id"`
		Notes       string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.AdjustStock(r.Context(), chi.URLParam(r, "id"),
		req.Delta, ledger.ActionManualAdjustment, req.ReferenceID, req.Notes)
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, categories)
}
