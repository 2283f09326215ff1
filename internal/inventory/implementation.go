// internal/inventory/implementation.go
package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockbook/internal/ledger"
	"stockbook/internal/rowstore"
)

// service implements the Service interface.
type service struct {
	rows   rowstore.Store
	ledger *ledger.Store
	logger *zap.Logger
}

// NewService creates a new inventory service instance.
func NewService(rows rowstore.Store, lg *ledger.Store, logger *zap.Logger) Service {
	return &service{
		rows:   rows,
		ledger: lg,
		logger: logger,
	}
}

// AddItem creates a catalog row, then appends the Initial Stock ledger
// entry. If the append fails after the row exists, the item is kept and
// the short ledger is logged for reconciliation; there is no rollback
// across the two stores.
func (s *service) AddItem(ctx context.Context, input ItemInput) (*Item, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("add item: name is required: %w", rowstore.ErrInvalidInput)
	}
	if input.CurrentStock.IsNegative() || input.CostPerUnit.IsNegative() || input.ReorderLevel.IsNegative() {
		return nil, fmt.Errorf("add item: numeric fields must be non-negative: %w", rowstore.ErrInvalidInput)
	}

	item := &Item{
		ID:           NewItemID(),
		Name:         input.Name,
		Category:     input.Category,
		CurrentStock: input.CurrentStock,
		Unit:         input.Unit,
		CostPerUnit:  input.CostPerUnit,
		ReorderLevel: input.ReorderLevel,
		Supplier:     input.Supplier,
		LastUpdated:  time.Now().UTC(),
	}

	if err := s.rows.AppendRow(ctx, rowstore.TableInventory, itemValues(item)); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	entry := ledger.Entry{
		ItemID:         item.ID,
		ItemName:       item.Name,
		ActionType:     ledger.ActionInitialStock,
		QuantityChange: item.CurrentStock,
		ResultingStock: item.CurrentStock,
		Notes:          "Item added to inventory",
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		s.logger.Warn("initial stock ledger append failed, item kept with short ledger",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
	}

	return item, nil
}

// GetItem retrieves an item by its ID.
func (s *service) GetItem(ctx context.Context, id string) (*Item, error) {
	_, rec, err := s.rows.FindRowByField(ctx, rowstore.TableInventory, "item_id", id)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return itemFromRecord(rec)
}

// ListItems returns all catalog rows.
func (s *service) ListItems(ctx context.Context) ([]*Item, error) {
	records, err := s.rows.ListRecords(ctx, rowstore.TableInventory)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	items := make([]*Item, 0, len(records))
	for _, rec := range records {
		item, err := itemFromRecord(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateItem merges the provided fields over the current record. A stock
// change appends a Manual Adjustment ledger entry for the difference.
func (s *service) UpdateItem(ctx context.Context, id string, update ItemUpdate) (*Item, error) {
	handle, rec, err := s.rows.FindRowByField(ctx, rowstore.TableInventory, "item_id", id)
	if err != nil {
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	item, err := itemFromRecord(rec)
	if err != nil {
		return nil, err
	}

	oldStock := item.CurrentStock
	applyUpdate(item, update)
	if item.CurrentStock.IsNegative() || item.CostPerUnit.IsNegative() || item.ReorderLevel.IsNegative() {
		return nil, fmt.Errorf("update item %s: numeric fields must be non-negative: %w", id, rowstore.ErrInvalidInput)
	}
	item.LastUpdated = time.Now().UTC()

	if err := s.rows.UpdateRow(ctx, rowstore.TableInventory, handle, itemRecord(item)); err != nil {
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}

	if update.CurrentStock != nil && !item.CurrentStock.Equal(oldStock) {
		entry := ledger.Entry{
			ItemID:         item.ID,
			ItemName:       item.Name,
			ActionType:     ledger.ActionManualAdjustment,
			QuantityChange: item.CurrentStock.Sub(oldStock),
			ResultingStock: item.CurrentStock,
			Notes:          "Stock manually updated",
		}
		if err := s.ledger.Append(ctx, entry); err != nil {
			return nil, fmt.Errorf("update item %s: %w", id, err)
		}
	}

	return item, nil
}

// DeleteItem appends the closing Item Deleted ledger entry, then removes
// the catalog row. The ledger entry survives the deletion.
func (s *service) DeleteItem(ctx context.Context, id string) error {
	handle, rec, err := s.rows.FindRowByField(ctx, rowstore.TableInventory, "item_id", id)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	item, err := itemFromRecord(rec)
	if err != nil {
		return err
	}

	entry := ledger.Entry{
		ItemID:         item.ID,
		ItemName:       item.Name,
		ActionType:     ledger.ActionItemDeleted,
		QuantityChange: item.CurrentStock.Neg(),
		ResultingStock: decimal.Zero,
		Notes:          "Item removed from inventory",
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}

	if err := s.rows.DeleteRow(ctx, rowstore.TableInventory, handle); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

// AdjustStock applies a signed delta to an item's stock, clamping the
// result at zero, and appends exactly one ledger entry tagged with the
// given action. Concurrent adjustments on the same item can race; the
// baseline contract only guarantees at least one applies. Serializing
// per-item mutations is a required hardening step for production use.
func (s *service) AdjustStock(ctx context.Context, id string, delta decimal.Decimal, action ledger.ActionType, referenceID, notes string) (*Item, error) {
	handle, rec, err := s.rows.FindRowByField(ctx, rowstore.TableInventory, "item_id", id)
	if err != nil {
		return nil, fmt.Errorf("adjust stock for %s: %w", id, err)
	}
	item, err := itemFromRecord(rec)
	if err != nil {
		return nil, err
	}

	newStock := item.CurrentStock.Add(delta)
	if newStock.IsNegative() {
		newStock = decimal.Zero
	}
	item.CurrentStock = newStock
	item.LastUpdated = time.Now().UTC()

	if err := s.rows.UpdateRow(ctx, rowstore.TableInventory, handle, itemRecord(item)); err != nil {
		return nil, fmt.Errorf("adjust stock for %s: %w", id, err)
	}

	entry := ledger.Entry{
		ItemID:         item.ID,
		ItemName:       item.Name,
		ActionType:     action,
		QuantityChange: delta,
		ResultingStock: newStock,
		ReferenceID:    referenceID,
		Notes:          notes,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("adjust stock for %s: %w", id, err)
	}

	s.logger.Info("stock adjusted",
		zap.String("item_id", item.ID),
		zap.String("action", string(action)),
		zap.String("delta", delta.String()),
		zap.String("resulting_stock", newStock.String()),
	)
	return item, nil
}

// LowStock returns items at or below their reorder level. The boundary
// is inclusive.
func (s *service) LowStock(ctx context.Context) ([]*Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	var low []*Item
	for _, item := range items {
		if item.CurrentStock.LessThanOrEqual(item.ReorderLevel) {
			low = append(low, item)
		}
	}
	return low, nil
}

// Search filters by case-insensitive substring match on name and, when
// category is non-empty, exact category match. Both predicates are ANDed.
func (s *service) Search(ctx context.Context, term, category string) ([]*Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(term)
	var matched []*Item
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.Name), term) {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		matched = append(matched, item)
	}
	return matched, nil
}

// Categories returns the distinct non-empty categories, sorted.
func (s *service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for _, item := range items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		categories = append(categories, item.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func applyUpdate(item *Item, update ItemUpdate) {
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Category != nil {
		item.Category = *update.Category
	}
	if update.CurrentStock != nil {
		item.CurrentStock = *update.CurrentStock
	}
	if update.Unit != nil {
		item.Unit = *update.Unit
	}
	if update.CostPerUnit != nil {
		item.CostPerUnit = *update.CostPerUnit
	}
	if update.ReorderLevel != nil {
		item.ReorderLevel = *update.ReorderLevel
	}
	if update.Supplier != nil {
		item.Supplier = *update.Supplier
	}
}

func itemValues(item *Item) []string {
	return []string{
		item.ID,
		item.Name,
		item.Category,
		item.CurrentStock.String(),
		item.Unit,
		item.CostPerUnit.String(),
		item.ReorderLevel.String(),
		item.Supplier,
		item.LastUpdated.Format(time.RFC3339Nano),
	}
}

func itemRecord(item *Item) rowstore.Record {
	values := itemValues(item)
	headers := []string{
		"item_id", "name", "category", "current_stock", "unit",
		"cost_per_unit", "reorder_level", "supplier", "last_updated",
	}
	rec := make(rowstore.Record, len(headers))
	for i, h := range headers {
		rec[h] = values[i]
	}
	return rec
}

func itemFromRecord(rec rowstore.Record) (*Item, error) {
	stock, err := decimal.NewFromString(rec["current_stock"])
	if err != nil {
		return nil, fmt.Errorf("parse current stock %q: %w", rec["current_stock"], rowstore.ErrInvalidInput)
	}
	cost, err := decimal.NewFromString(rec["cost_per_unit"])
	if err != nil {
		return nil, fmt.Errorf("parse cost per unit %q: %w", rec["cost_per_unit"], rowstore.ErrInvalidInput)
	}
	reorder, err := decimal.NewFromString(rec["reorder_level"])
	if err != nil {
		return nil, fmt.Errorf("parse reorder level %q: %w", rec["reorder_level"], rowstore.ErrInvalidInput)
	}
	updated, err := time.Parse(time.RFC3339Nano, rec["last_updated"])
	if err != nil {
		return nil, fmt.Errorf("parse last updated %q: %w", rec["last_updated"], rowstore.ErrInvalidInput)
	}

	return &Item{
		ID:           rec["item_id"],
		Name:         rec["name"],
		Category:     rec["category"],
		CurrentStock: stock,
		Unit:         rec["unit"],
		CostPerUnit:  cost,
		ReorderLevel: reorder,
		Supplier:     rec["supplier"],
		LastUpdated:  updated,
	}, nil
}
