// internal/transfers/service.go
package transfers

import (
	"context"
)

// Service defines the interface for the transfer service.
type Service interface {
	AddTransfer(ctx context.Context, input TransferInput) (*Transfer, error)
	GetTransfer(ctx context.Context, id string) (*Transfer, error)
	ListTransfers(ctx context.Context) ([]*Transfer, error)
	ByStatus(ctx context.Context, status Status) ([]*Transfer, error)
	ByLocation(ctx context.Context, location string, direction Direction) ([]*Transfer, error)
	CompleteTransfer(ctx context.Context, id string) (*Transfer, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Transfer, error)
}

// Direction selects which end of a transfer a location filter matches.
type Direction string

const (
	DirectionFrom Direction = "from"
	DirectionTo   Direction = "to"
)
