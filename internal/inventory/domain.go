// internal/inventory/domain.go
package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog row. CurrentStock is a materialized view of the
// ledger: it always equals the running sum of the item's ledger entries,
// clamped to zero at each step.
type Item struct {
	ID           string          `json:"item_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Unit         string          `json:"unit"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Supplier     string          `json:"supplier"`
	LastUpdated  time.Time       `json:"last_updated"`
}

// ItemInput carries the fields for creating an item.
type ItemInput struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Unit         string          `json:"unit"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Supplier     string          `json:"supplier"`
}

// ItemUpdate is a partial update: only non-nil fields are applied.
type ItemUpdate struct {
	Name         *string          `json:"name,omitempty"`
	Category     *string          `json:"category,omitempty"`
	CurrentStock *decimal.Decimal `json:"current_stock,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	CostPerUnit  *decimal.Decimal `json:"cost_per_unit,omitempty"`
	ReorderLevel *decimal.Decimal `json:"reorder_level,omitempty"`
	Supplier     *string          `json:"supplier,omitempty"`
}

// NewItemID generates an item identifier like ITM-3F2A9C41. Uniqueness
// is probabilistic; the store does not enforce it.
func NewItemID() string {
	return "ITM-" + strings.ToUpper(uuid.NewString()[:8])
}
