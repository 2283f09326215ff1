// internal/inventory/service.go
package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"stockbook/internal/ledger"
)

// Service defines the interface for the inventory service. AdjustStock
// is the single choke point for stock-affecting workflows: shipment and
// transfer completion must route through it rather than writing the
// catalog directly.
type Service interface {
	AddItem(ctx context.Context, input ItemInput) (*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context) ([]*Item, error)
	UpdateItem(ctx context.Context, id string, update ItemUpdate) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta decimal.Decimal, action ledger.ActionType, referenceID, notes string) (*Item, error)
	LowStock(ctx context.Context) ([]*Item, error)
	Search(ctx context.Context, term, category string) ([]*Item, error)
	Categories(ctx context.Context) ([]string, error)
}
