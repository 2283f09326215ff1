// internal/ledger/ledger.go
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockbook/internal/rowstore"
)

// ActionType classifies a stock movement. The set is closed; unknown
// strings are rejected at parse time.
type ActionType string

const (
	ActionInitialStock     ActionType = "Initial Stock"
	ActionManualAdjustment ActionType = "Manual Adjustment"
	ActionShipmentReceived ActionType = "Shipment Received"
	ActionTransfer         ActionType = "Transfer"
	ActionItemDeleted      ActionType = "Item Deleted"
)

// ParseActionType validates a stored action type string.
func ParseActionType(v string) (ActionType, error) {
	switch ActionType(v) {
	case ActionInitialStock, ActionManualAdjustment, ActionShipmentReceived,
		ActionTransfer, ActionItemDeleted:
		return ActionType(v), nil
	default:
		return "", fmt.Errorf("parse action type %q: %w", v, rowstore.ErrInvalidInput)
	}
}

// Entry is one stock-affecting event. Entries are append-only and are
// never mutated or deleted; corrections are made by appending offsetting
// entries. ItemName is a denormalized snapshot taken at append time.
type Entry struct {
	Timestamp      time.Time       `json:"timestamp"`
	ItemID         string          `json:"item_id"`
	ItemName       string          `json:"item_name"`
	ActionType     ActionType      `json:"action_type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	ResultingStock decimal.Decimal `json:"resulting_stock"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// Store is the durable append-only log of stock movements. It is the
// source of truth for current stock; the catalog's current_stock field
// is a materialized view of it.
type Store struct {
	rows   rowstore.Store
	tracer trace.Tracer
}

// NewStore creates a ledger store backed by the given row store.
func NewStore(rows rowstore.Store) *Store {
	return &Store{
		rows:   rows,
		tracer: otel.Tracer("stockbook/ledger"),
	}
}

// Append writes one entry to the ledger. A zero Timestamp is stamped
// with the current time.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	ctx, span := s.tracer.Start(ctx, "ledger.append",
		trace.WithAttributes(
			attribute.String("item.id", entry.ItemID),
			attribute.String("action.type", string(entry.ActionType)),
			attribute.String("quantity.change", entry.QuantityChange.String()),
		),
	)
	defer span.End()

	if _, err := ParseActionType(string(entry.ActionType)); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	values := []string{
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.ItemID,
		entry.ItemName,
		string(entry.ActionType),
		entry.QuantityChange.String(),
		entry.ResultingStock.String(),
		entry.ReferenceID,
		entry.Notes,
	}
	if err := s.rows.AppendRow(ctx, rowstore.TableStockMovements, values); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// ListByItem returns every entry for an item in chronological order.
func (s *Store) ListByItem(ctx context.Context, itemID string) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.list_by_item",
		trace.WithAttributes(attribute.String("item.id", itemID)),
	)
	defer span.End()

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, e := range all {
		if e.ItemID == itemID {
			entries = append(entries, e)
		}
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

// ListAll returns the full ledger in chronological order.
func (s *Store) ListAll(ctx context.Context) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.list_all")
	defer span.End()

	records, err := s.rows.ListRecords(ctx, rowstore.TableStockMovements)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entry, err := entryFromRecord(rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

func entryFromRecord(rec rowstore.Record) (Entry, error) {
	ts, err := time.Parse(time.RFC3339Nano, rec["timestamp"])
	if err != nil {
		return Entry{}, fmt.Errorf("parse ledger timestamp %q: %w", rec["timestamp"], rowstore.ErrInvalidInput)
	}
	action, err := ParseActionType(rec["action_type"])
	if err != nil {
		return Entry{}, err
	}
	change, err := decimal.NewFromString(rec["quantity_change"])
	if err != nil {
		return Entry{}, fmt.Errorf("parse quantity change %q: %w", rec["quantity_change"], rowstore.ErrInvalidInput)
	}
	resulting, err := decimal.NewFromString(rec["resulting_stock"])
	if err != nil {
		return Entry{}, fmt.Errorf("parse resulting stock %q: %w", rec["resulting_stock"], rowstore.ErrInvalidInput)
	}

	return Entry{
		Timestamp:      ts,
		ItemID:         rec["item_id"],
		ItemName:       rec["item_name"],
		ActionType:     action,
		QuantityChange: change,
		ResultingStock: resulting,
		ReferenceID:    rec["reference_id"],
		Notes:          rec["notes"],
	}, nil
}
