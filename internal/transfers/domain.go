// internal/transfers/domain.go
package transfers

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockbook/internal/rowstore"
)

// Status is the transfer state. The only modeled transition is
// Pending -> Completed; Completed is terminal. Arbitrary overwrites are
// rejected by the transition check.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// ParseStatus validates a stored status string.
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusPending, StatusCompleted:
		return Status(v), nil
	default:
		return "", fmt.Errorf("parse transfer status %q: %w", v, rowstore.ErrInvalidInput)
	}
}

// CanTransitionTo reports whether the status change is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next == StatusCompleted
}

// Transfer moves a quantity of an item between locations. Stock is
// tracked for a single location, so completing a transfer records a
// zero-delta ledger entry rather than a true stock move.
type Transfer struct {
	ID           string          `json:"transfer_id"`
	Date         time.Time       `json:"date"`
	FromLocation string          `json:"from_location"`
	ToLocation   string          `json:"to_location"`
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Status       Status          `json:"status"`
	Notes        string          `json:"notes,omitempty"`
}

// TransferInput carries the fields for creating a transfer.
type TransferInput struct {
	Date         time.Time       `json:"date"`
	FromLocation string          `json:"from_location"`
	ToLocation   string          `json:"to_location"`
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes"`
}

// NewTransferID generates a transfer identifier like TRF-3F2A9C41.
func NewTransferID() string {
	return "TRF-" + strings.ToUpper(uuid.NewString()[:8])
}
