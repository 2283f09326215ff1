// internal/transfers/handler.go
package transfers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockbook/internal/web"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the transfer endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleListTransfers)
	r.Post("/", h.handleAddTransfer)
	r.Get("/{id}", h.handleGetTransfer)
	r.Post("/{id}/complete", h.handleCompleteTransfer)
	r.Put("/{id}/status", h.handleUpdateStatus)
	return r
}

func (h *Handler) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status, err := ParseStatus(v)
		if err != nil {
			web.Error(w, err)
			return
		}
		transfers, err := h.service.ByStatus(r.Context(), status)
		if err != nil {
			web.Error(w, err)
			return
		}
		web.JSON(w, http.StatusOK, transfers)
		return
	}
	if v := q.Get("location"); v != "" {
		direction := DirectionFrom
		if q.Get("direction") == string(DirectionTo) {
			direction = DirectionTo
		}
		transfers, err := h.service.ByLocation(r.Context(), v, direction)
		if err != nil {
			web.Error(w, err)
			return
		}
		web.JSON(w, http.StatusOK, transfers)
		return
	}

	transfers, err := h.service.ListTransfers(r.Context())
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, transfers)
}

func (h *Handler) handleAddTransfer(w http.ResponseWriter, r *http.Request) {
	var input TransferInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transfer, err := h.service.AddTransfer(r.Context(), input)
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusCreated, transfer)
}

func (h *Handler) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.service.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, transfer)
}

func (h *Handler) handleCompleteTransfer(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.service.CompleteTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, transfer)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := ParseStatus(req.Status)
	if err != nil {
		web.Error(w, err)
		return
	}

	transfer, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, transfer)
}
