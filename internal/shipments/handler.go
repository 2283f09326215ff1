// internal/shipments/handler.go
package shipments

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

// Routes mounts the shipment endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleListShipments)
	r.Post("/", h.handleAddShipment)
	r.Get("/{id}", h.handleGetShipment)
	r.Post("/{id}/receive", h.handleReceiveShipment)
	return r
}

func (h *Handler) handleListShipments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status, err := ParseStatus(v)
		if err != nil {
			web.Error(w, err)
			return
		}
		shipments, err := h.service.ByStatus(r.Context(), status)
		if err != nil {
			web.Error(w, err)
			return
		}
		web.JSON(w, http.StatusOK, shipments)
		return
	}
	if v := q.Get("supplier"); v != "" {
		shipments, err := h.service.BySupplier(r.Context(), v)
		if err != nil {
			web.Error(w, err)
			return
		}
		web.JSON(w, http.StatusOK, shipments)
		return
	}

	shipments, err := h.service.ListShipments(r.Context())
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, shipments)
}

func (h *Handler) handleAddShipment(w http.ResponseWriter, r *http.Request) {
	var input ShipmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	shipment, err := h.service.AddShipment(r.Context(), input)
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusCreated, shipment)
}

func (h *Handler) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipment, err := h.service.GetShipment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, shipment)
}

func (h *Handler) handleReceiveShipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemsReceived []LineItem `json:"items_received"`
		ReceivedBy    string     `json:"received_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	shipment, err := h.service.ReceiveShipment(r.Context(), chi.URLParam(r, "id"), req.ItemsReceived, req.ReceivedBy)
	if err != nil {
		web.Error(w, err)
		return
	}
	web.JSON(w, http.StatusOK, shipment)
}
