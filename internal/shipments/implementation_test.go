// internal/shipments/implementation_test.go
package shipments

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockbook/internal/inventory"
	"stockbook/internal/ledger"
	"stockbook/internal/rowstore"
)

type fixture struct {
	svc       Service
	inventory inventory.Service
	ledger    *ledger.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rows := rowstore.NewMemoryStore(rowstore.Schema())
	ledgerStore := ledger.NewStore(rows)
	inventorySvc := inventory.NewService(rows, ledgerStore, zap.NewNop())
	return &fixture{
		svc:       NewService(rows, inventorySvc, zap.NewNop()),
		inventory: inventorySvc,
		ledger:    ledgerStore,
	}
}

func (f *fixture) addItem(t *testing.T, name string, stock int64) *inventory.Item {
	t.Helper()
	item, err := f.inventory.AddItem(context.Background(), inventory.ItemInput{
		Name:         name,
		CurrentStock: decimal.NewFromInt(stock),
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) addShipment(t *testing.T) *Shipment {
	t.Helper()
	shipment, err := f.svc.AddShipment(context.Background(), ShipmentInput{
		Supplier:   "Acme Foods",
		TotalItems: 1,
		TotalCost:  decimal.RequireFromString("42.00"),
	})
	require.NoError(t, err)
	return shipment
}

func TestAddShipmentStartsPending(t *testing.T) {
	f := newFixture(t)

	shipment := f.addShipment(t)
	assert.Regexp(t, `^SHP-[0-9A-F]{8}$`, shipment.ID)
	assert.Equal(t, StatusPending, shipment.Status)
	assert.False(t, shipment.Date.IsZero())

	got, err := f.svc.GetShipment(context.Background(), shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Foods", got.Supplier)
}

func TestReceiveShipmentMovesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := f.addItem(t, "Tomatoes", 10)
	shipment := f.addShipment(t)

	received, err := f.svc.ReceiveShipment(ctx, shipment.ID,
		[]LineItem{{ItemID: item.ID, Quantity: decimal.NewFromInt(5)}}, "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, received.Status)
	assert.Equal(t, "alice", received.ReceivedBy)

	got, err := f.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(15)))

	entries, err := f.ledger.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, ledger.ActionShipmentReceived, last.ActionType)
	assert.True(t, last.QuantityChange.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, shipment.ID, last.ReferenceID)
}

func TestReceiveShipmentSkipsBadLineItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := f.addItem(t, "Tomatoes", 10)
	shipment := f.addShipment(t)

	received, err := f.svc.ReceiveShipment(ctx, shipment.ID, []LineItem{
		{ItemID: "ITM-DEADBEEF", Quantity: decimal.NewFromInt(3)},
		{ItemID: item.ID, Quantity: decimal.NewFromInt(5)},
		{ItemID: item.ID, Quantity: decimal.Zero},
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, received.Status)

	got, err := f.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(15)))
}

func TestReceiveShipmentTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := f.addItem(t, "Tomatoes", 10)
	shipment := f.addShipment(t)

	_, err := f.svc.ReceiveShipment(ctx, shipment.ID,
		[]LineItem{{ItemID: item.ID, Quantity: decimal.NewFromInt(5)}}, "alice")
	require.NoError(t, err)

	_, err = f.svc.ReceiveShipment(ctx, shipment.ID,
		[]LineItem{{ItemID: item.ID, Quantity: decimal.NewFromInt(5)}}, "alice")
	assert.ErrorIs(t, err, rowstore.ErrInvalidInput)

	// The second receipt must not have moved stock.
	got, err := f.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(15)))
}

func TestReceiveShipmentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ReceiveShipment(context.Background(), "SHP-DEADBEEF", nil, "alice")
	assert.ErrorIs(t, err, rowstore.ErrNotFound)
}

func TestShipmentFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.addShipment(t)
	second, err := f.svc.AddShipment(ctx, ShipmentInput{Supplier: "Harbor Fish Co"})
	require.NoError(t, err)

	_, err = f.svc.ReceiveShipment(ctx, first.ID, nil, "alice")
	require.NoError(t, err)

	pending, err := f.svc.ByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	bySupplier, err := f.svc.BySupplier(ctx, "Harbor Fish Co")
	require.NoError(t, err)
	require.Len(t, bySupplier, 1)
	assert.Equal(t, second.ID, bySupplier[0].ID)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusReceived))
	assert.False(t, StatusReceived.CanTransitionTo(StatusPending))
	assert.False(t, StatusReceived.CanTransitionTo(StatusReceived))

	_, err := ParseStatus("Cancelled")
	assert.Error(t, err)
}
