// internal/transfers/implementation.go
package transfers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockbook/internal/inventory"
	"stockbook/internal/ledger"
	"stockbook/internal/rowstore"
)

// service implements the Service interface.
type service struct {
	rows      rowstore.Store
	inventory inventory.Service
	logger    *zap.Logger
}

// NewService creates a new transfer service instance.
func NewService(rows rowstore.Store, inv inventory.Service, logger *zap.Logger) Service {
	return &service{
		rows:      rows,
		inventory: inv,
		logger:    logger,
	}
}

// AddTransfer creates a transfer in Pending state.
func (s *service) AddTransfer(ctx context.Context, input TransferInput) (*Transfer, error) {
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("add transfer: quantity must be positive: %w", rowstore.ErrInvalidInput)
	}

	transfer := &Transfer{
		ID:           NewTransferID(),
		Date:         input.Date,
		FromLocation: input.FromLocation,
		ToLocation:   input.ToLocation,
		ItemID:       input.ItemID,
		ItemName:     input.ItemName,
		Quantity:     input.Quantity,
		Status:       StatusPending,
		Notes:        input.Notes,
	}
	if transfer.Date.IsZero() {
		transfer.Date = time.Now().UTC()
	}

	if err := s.rows.AppendRow(ctx, rowstore.TableTransfers, transferValues(transfer)); err != nil {
		return nil, fmt.Errorf("add transfer: %w", err)
	}
	return transfer, nil
}

// GetTransfer retrieves a transfer by its ID.
func (s *service) GetTransfer(ctx context.Context, id string) (*Transfer, error) {
	_, rec, err := s.rows.FindRowByField(ctx, rowstore.TableTransfers, "transfer_id", id)
	if err != nil {
		return nil, fmt.Errorf("get transfer %s: %w", id, err)
	}
	return transferFromRecord(rec)
}

// ListTransfers returns all transfers.
func (s *service) ListTransfers(ctx context.Context) ([]*Transfer, error) {
	records, err := s.rows.ListRecords(ctx, rowstore.TableTransfers)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}

	transfers := make([]*Transfer, 0, len(records))
	for _, rec := range records {
		transfer, err := transferFromRecord(rec)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, nil
}

// ByStatus filters transfers by status.
func (s *service) ByStatus(ctx context.Context, status Status) ([]*Transfer, error) {
	all, err := s.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*Transfer
	for _, transfer := range all {
		if transfer.Status == status {
			matched = append(matched, transfer)
		}
	}
	return matched, nil
}

// ByLocation filters transfers by origin or destination location.
func (s *service) ByLocation(ctx context.Context, location string, direction Direction) ([]*Transfer, error) {
	all, err := s.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*Transfer
	for _, transfer := range all {
		field := transfer.FromLocation
		if direction == DirectionTo {
			field = transfer.ToLocation
		}
		if field == location {
			matched = append(matched, transfer)
		}
	}
	return matched, nil
}

// CompleteTransfer records the movement in the ledger and flips the
// transfer to Completed. Stock is single-location, so the ledger entry
// carries a zero quantity change; the net stock stays untouched.
func (s *service) CompleteTransfer(ctx context.Context, id string) (*Transfer, error) {
	transfer, err := s.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transfer.Status.CanTransitionTo(StatusCompleted) {
		return nil, fmt.Errorf("complete transfer %s: transition %s -> %s not allowed: %w",
			id, transfer.Status, StatusCompleted, rowstore.ErrInvalidInput)
	}

	notes := fmt.Sprintf("Transferred %s from %s to %s",
		transfer.Quantity.String(), transfer.FromLocation, transfer.ToLocation)
	if _, err := s.inventory.AdjustStock(ctx, transfer.ItemID, decimal.Zero, ledger.ActionTransfer, id, notes); err != nil {
		return nil, fmt.Errorf("complete transfer %s: %w", id, err)
	}

	return s.UpdateStatus(ctx, id, StatusCompleted)
}

// UpdateStatus applies a validated status transition. Anything outside
// Pending -> Completed is rejected.
func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Transfer, error) {
	handle, rec, err := s.rows.FindRowByField(ctx, rowstore.TableTransfers, "transfer_id", id)
	if err != nil {
		return nil, fmt.Errorf("update transfer %s: %w", id, err)
	}
	transfer, err := transferFromRecord(rec)
	if err != nil {
		return nil, err
	}

	if !transfer.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("update transfer %s: transition %s -> %s not allowed: %w",
			id, transfer.Status, status, rowstore.ErrInvalidInput)
	}

	transfer.Status = status
	update := rowstore.Record{"status": string(status)}
	if err := s.rows.UpdateRow(ctx, rowstore.TableTransfers, handle, update); err != nil {
		return nil, fmt.Errorf("update transfer %s: %w", id, err)
	}

	s.logger.Info("transfer status updated",
		zap.String("transfer_id", id),
		zap.String("status", string(status)),
	)
	return transfer, nil
}

func transferValues(transfer *Transfer) []string {
	return []string{
		transfer.ID,
		transfer.Date.UTC().Format(time.RFC3339Nano),
		transfer.FromLocation,
		transfer.ToLocation,
		transfer.ItemID,
		transfer.ItemName,
		transfer.Quantity.String(),
		string(transfer.Status),
		transfer.Notes,
	}
}

func transferFromRecord(rec rowstore.Record) (*Transfer, error) {
	date, err := time.Parse(time.RFC3339Nano, rec["date"])
	if err != nil {
		return nil, fmt.Errorf("parse transfer date %q: %w", rec["date"], rowstore.ErrInvalidInput)
	}
	status, err := ParseStatus(rec["status"])
	if err != nil {
		return nil, err
	}
	quantity, err := decimal.NewFromString(rec["quantity"])
	if err != nil {
		return nil, fmt.Errorf("parse transfer quantity %q: %w", rec["quantity"], rowstore.ErrInvalidInput)
	}

	return &Transfer{
		ID:           rec["transfer_id"],
		Date:         date,
		FromLocation: rec["from_location"],
		ToLocation:   rec["to_location"],
		ItemID:       rec["item_id"],
		ItemName:     rec["item_name"],
		Quantity:     quantity,
		Status:       status,
		Notes:        rec["notes"],
	}, nil
}
