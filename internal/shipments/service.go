// internal/shipments/service.go
package shipments

import (
	"context"
)

// Service defines the interface for the shipment service.
type Service interface {
	AddShipment(ctx context.Context, input ShipmentInput) (*Shipment, error)
	GetShipment(ctx context.Context, id string) (*Shipment, error)
	ListShipments(ctx context.Context) ([]*Shipment, error)
	ByStatus(ctx context.Context, status Status) ([]*Shipment, error)
	BySupplier(ctx context.Context, supplier string) ([]*Shipment, error)
	ReceiveShipment(ctx context.Context, id string, items []LineItem, receivedBy string) (*Shipment, error)
}
