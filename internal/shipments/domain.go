// internal/shipments/domain.go
package shipments

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockbook/internal/rowstore"
)

// Status is the shipment state. The only modeled transition is
// Pending -> Received; Received is terminal.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusReceived Status = "Received"
)

// ParseStatus validates a stored status string.
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusPending, StatusReceived:
		return Status(v), nil
	default:
		return "", fmt.Errorf("parse shipment status %q: %w", v, rowstore.ErrInvalidInput)
	}
}

// CanTransitionTo reports whether the status change is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next == StatusReceived
}

// Shipment is an inbound delivery from a supplier.
type Shipment struct {
	ID         string          `json:"shipment_id"`
	Date       time.Time       `json:"date"`
	Supplier   string          `json:"supplier"`
	Status     Status          `json:"status"`
	TotalItems int             `json:"total_items"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	ReceivedBy string          `json:"received_by,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// ShipmentInput carries the fields for creating a shipment.
type ShipmentInput struct {
	Date       time.Time       `json:"date"`
	Supplier   string          `json:"supplier"`
	TotalItems int             `json:"total_items"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Notes      string          `json:"notes"`
}

// LineItem is one received item of a shipment.
type LineItem struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewShipmentID generates a shipment identifier like SHP-3F2A9C41.
func NewShipmentID() string {
	return "SHP-" + strings.ToUpper(uuid.NewString()[:8])
}
