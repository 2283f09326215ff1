// internal/shipments/implementation.go
package shipments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockbook/internal/inventory"
	"stockbook/internal/ledger"
	"stockbook/internal/rowstore"
)

// service implements the Service interface. Stock movement always goes
// through the inventory service; shipments never write the catalog
// directly.
type service struct {
	rows      rowstore.Store
	inventory inventory.Service
	logger    *zap.Logger
}

// NewService creates a new shipment service instance.
func NewService(rows rowstore.Store, inv inventory.Service, logger *zap.Logger) Service {
	return &service{
		rows:      rows,
		inventory: inv,
		logger:    logger,
	}
}

// AddShipment creates a shipment in Pending state.
func (s *service) AddShipment(ctx context.Context, input ShipmentInput) (*Shipment, error) {
	if input.TotalItems < 0 || input.TotalCost.IsNegative() {
		return nil, fmt.Errorf("add shipment: numeric fields must be non-negative: %w", rowstore.ErrInvalidInput)
	}

	shipment := &Shipment{
		ID:         NewShipmentID(),
		Date:       input.Date,
		Supplier:   input.Supplier,
		Status:     StatusPending,
		TotalItems: input.TotalItems,
		TotalCost:  input.TotalCost,
		Notes:      input.Notes,
	}
	if shipment.Date.IsZero() {
		shipment.Date = time.Now().UTC()
	}

	if err := s.rows.AppendRow(ctx, rowstore.TableShipments, shipmentValues(shipment)); err != nil {
		return nil, fmt.Errorf("add shipment: %w", err)
	}
	return shipment, nil
}

// GetShipment retrieves a shipment by its ID.
func (s *service) GetShipment(ctx context.Context, id string) (*Shipment, error) {
	_, rec, err := s.rows.FindRowByField(ctx, rowstore.TableShipments, "shipment_id", id)
	if err != nil {
		return nil, fmt.Errorf("get shipment %s: %w", id, err)
	}
	return shipmentFromRecord(rec)
}

// ListShipments returns all shipments.
func (s *service) ListShipments(ctx context.Context) ([]*Shipment, error) {
	records, err := s.rows.ListRecords(ctx, rowstore.TableShipments)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}

	shipments := make([]*Shipment, 0, len(records))
	for _, rec := range records {
		shipment, err := shipmentFromRecord(rec)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, shipment)
	}
	return shipments, nil
}

// ByStatus filters shipments by status.
func (s *service) ByStatus(ctx context.Context, status Status) ([]*Shipment, error) {
	all, err := s.ListShipments(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*Shipment
	for _, shipment := range all {
		if shipment.Status == status {
			matched = append(matched, shipment)
		}
	}
	return matched, nil
}

// BySupplier filters shipments by exact supplier name.
func (s *service) BySupplier(ctx context.Context, supplier string) ([]*Shipment, error) {
	all, err := s.ListShipments(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*Shipment
	for _, shipment := range all {
		if shipment.Supplier == supplier {
			matched = append(matched, shipment)
		}
	}
	return matched, nil
}

// ReceiveShipment transitions the shipment to Received and moves stock
// for every line item with a positive quantity through the inventory
// service. A line item with an unknown item id is skipped with a
// warning rather than aborting the whole receipt.
func (s *service) ReceiveShipment(ctx context.Context, id string, items []LineItem, receivedBy string) (*Shipment, error) {
	handle, rec, err := s.rows.FindRowByField(ctx, rowstore.TableShipments, "shipment_id", id)
	if err != nil {
		return nil, fmt.Errorf("receive shipment %s: %w", id, err)
	}
	shipment, err := shipmentFromRecord(rec)
	if err != nil {
		return nil, err
	}

	if !shipment.Status.CanTransitionTo(StatusReceived) {
		return nil, fmt.Errorf("receive shipment %s: transition %s -> %s not allowed: %w",
			id, shipment.Status, StatusReceived, rowstore.ErrInvalidInput)
	}

	shipment.Status = StatusReceived
	shipment.ReceivedBy = receivedBy
	update := rowstore.Record{
		"status":      string(shipment.Status),
		"received_by": shipment.ReceivedBy,
	}
	if err := s.rows.UpdateRow(ctx, rowstore.TableShipments, handle, update); err != nil {
		return nil, fmt.Errorf("receive shipment %s: %w", id, err)
	}

	for _, item := range items {
		if !item.Quantity.IsPositive() {
			continue
		}
		notes := fmt.Sprintf("Received from supplier via shipment %s", id)
		_, err := s.inventory.AdjustStock(ctx, item.ItemID, item.Quantity, ledger.ActionShipmentReceived, id, notes)
		if err != nil {
			s.logger.Warn("skipping shipment line item",
				zap.String("shipment_id", id),
				zap.String("item_id", item.ItemID),
				zap.Error(err),
			)
		}
	}

	return shipment, nil
}

func shipmentValues(shipment *Shipment) []string {
	return []string{
		shipment.ID,
		shipment.Date.UTC().Format(time.RFC3339Nano),
		shipment.Supplier,
		string(shipment.Status),
		strconv.Itoa(shipment.TotalItems),
		shipment.TotalCost.String(),
		shipment.ReceivedBy,
		shipment.Notes,
	}
}

func shipmentFromRecord(rec rowstore.Record) (*Shipment, error) {
	date, err := time.Parse(time.RFC3339Nano, rec["date"])
	if err != nil {
		return nil, fmt.Errorf("parse shipment date %q: %w", rec["date"], rowstore.ErrInvalidInput)
	}
	status, err := ParseStatus(rec["status"])
	if err != nil {
		return nil, err
	}
	totalItems, err := strconv.Atoi(rec["total_items"])
	if err != nil {
		return nil, fmt.Errorf("parse total items %q: %w", rec["total_items"], rowstore.ErrInvalidInput)
	}
	totalCost, err := decimal.NewFromString(rec["total_cost"])
	if err != nil {
		return nil, fmt.Errorf("parse total cost %q: %w", rec["total_cost"], rowstore.ErrInvalidInput)
	}

	return &Shipment{
		ID:         rec["shipment_id"],
		Date:       date,
		Supplier:   rec["supplier"],
		Status:     status,
		TotalItems: totalItems,
		TotalCost:  totalCost,
		ReceivedBy: rec["received_by"],
		Notes:      rec["notes"],
	}, nil
}
