// internal/web/respond.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"stockbook/internal/rowstore"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error maps the service error taxonomy onto HTTP status codes and
// writes a JSON error body.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rowstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rowstore.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, rowstore.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	JSON(w, status, map[string]string{"error": err.Error()})
}
