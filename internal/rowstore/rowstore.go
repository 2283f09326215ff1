// internal/rowstore/rowstore.go
package rowstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested row or record does not exist.
	ErrNotFound = errors.New("row not found")
	// ErrInvalidInput indicates a value could not be coerced to its declared type.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageUnavailable indicates the persistence collaborator failed or timed out.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUnknownTable indicates the table was not declared in the schema.
	ErrUnknownTable = errors.New("unknown table")
)

// Handle identifies a row for the duration of a single operation.
// Handles are not stable across deletes.
type Handle int64

// Record is a single row keyed by the table's declared header names.
type Record map[string]string

// Table declares a logical table and its ordered headers.
type Table struct {
	Name    string
	Headers []string
}

// Store is the row-oriented persistence collaborator. Implementations
// must keep handles stable for the duration of an operation and key
// records by the table's declared headers.
type Store interface {
	AppendRow(ctx context.Context, table string, values []string) error
	ListRecords(ctx context.Context, table string) ([]Record, error)
	FindRowByField(ctx context.Context, table, field, value string) (Handle, Record, error)
	UpdateRow(ctx context.Context, table string, handle Handle, record Record) error
	DeleteRow(ctx context.Context, table string, handle Handle) error
}

// Table names used by the services.
const (
	TableInventory      = "inventory"
	TableShipments      = "shipments"
	TableTransfers      = "transfers"
	TableStockMovements = "stock_movements"
	TableUsers          = "users"
)

// Schema declares every table the application uses. EnsureTables-style
// bootstrap and the memory store both derive their layout from it.
func Schema() []Table {
	return []Table{
		{
			Name: TableInventory,
			Headers: []string{
				"item_id", "name", "category", "current_stock", "unit",
				"cost_per_unit", "reorder_level", "supplier", "last_updated",
			},
		},
		{
			Name: TableShipments,
			Headers: []string{
				"shipment_id", "date", "supplier", "status", "total_items",
				"total_cost", "received_by", "notes",
			},
		},
		{
			Name: TableTransfers,
			Headers: []string{
				"transfer_id", "date", "from_location", "to_location",
				"item_id", "item_name", "quantity", "status", "notes",
			},
		},
		{
			Name: TableStockMovements,
			Headers: []string{
				"timestamp", "item_id", "item_name", "action_type",
				"quantity_change", "resulting_stock", "reference_id", "notes",
			},
		},
		{
			Name: TableUsers,
			Headers: []string{
				"username", "password_hash", "salt", "role", "active",
				"last_login", "created_at",
			},
		},
	}
}

func findTable(tables []Table, name string) (Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
