// tests/integration/main_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockbook/internal/auth"
	"stockbook/internal/inventory"
	"stockbook/internal/ledger"
	"stockbook/internal/rowstore"
	"stockbook/internal/shipments"
	"stockbook/internal/transfers"
)

type testServer struct {
	*httptest.Server
	token string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	rows := rowstore.NewMemoryStore(rowstore.Schema())
	ledgerStore := ledger.NewStore(rows)
	logger := zap.NewNop()

	inventorySvc := inventory.NewService(rows, ledgerStore, logger)
	shipmentSvc := shipments.NewService(rows, inventorySvc, logger)
	transferSvc := transfers.NewService(rows, inventorySvc, logger)
	authSvc := auth.NewService(rows, logger)
	require.NoError(t, authSvc.EnsureDefaultAdmin(context.Background(), "admin", "admin123"))

	authHandler := auth.NewHandler(authSvc)

	r := chi.NewRouter()
	r.Mount("/api/auth", authHandler.Routes())
	r.Group(func(r chi.Router) {
		r.Use(authHandler.Middleware)
		r.Mount("/api/inventory", inventory.NewHandler(inventorySvc).Routes())
		r.Mount("/api/shipments", shipments.NewHandler(shipmentSvc).Routes())
		r.Mount("/api/transfers", transfers.NewHandler(transferSvc).Routes())
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	ts := &testServer{Server: server}
	ts.token = ts.login(t, "admin", "admin123")
	return ts
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session auth.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session.Token
}

func (ts *testServer) do(t *testing.T, method, path string, payload interface{}, out interface{}) *http.Response {
	t.Helper()

	body := bytes.NewBuffer(nil)
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRequiresAuthentication(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/api/inventory/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestShipmentReceiptFlow(t *testing.T) {
	ts := setupTestServer(t)

	// Add an item with initial stock 10.
	var item inventory.Item
	resp := ts.do(t, http.MethodPost, "/api/inventory/", map[string]interface{}{
		"name":          "Tomatoes",
		"category":      "Produce",
		"current_stock": "10",
		"unit":          "kg",
		"reorder_level": "4",
	}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Create and receive a shipment of 5 more.
	var shipment shipments.Shipment
	resp = ts.do(t, http.MethodPost, "/api/shipments/", map[string]interface{}{
		"supplier":    "Acme Foods",
		"total_items": 1,
		"total_cost":  "42.00",
	}, &shipment)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, fmt.Sprintf("/api/shipments/%s/receive", shipment.ID),
		map[string]interface{}{
			"items_received": []map[string]interface{}{{"item_id": item.ID, "quantity": "5"}},
			"received_by":    "alice",
		}, &shipment)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, shipments.StatusReceived, shipment.Status)
	assert.Equal(t, "alice", shipment.ReceivedBy)

	var updated inventory.Item
	resp = ts.do(t, http.MethodGet, "/api/inventory/"+item.ID, nil, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, updated.CurrentStock.Equal(decimal.NewFromInt(15)))
}

func TestTransferCompletionFlow(t *testing.T) {
	ts := setupTestServer(t)

	var item inventory.Item
	resp := ts.do(t, http.MethodPost, "/api/inventory/", map[string]interface{}{
		"name":          "Limes",
		"current_stock": "7",
	}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var transfer transfers.Transfer
	resp = ts.do(t, http.MethodPost, "/api/transfers/", map[string]interface{}{
		"from_location": "Main Kitchen",
		"to_location":   "Bar",
		"item_id":       item.ID,
		"item_name":     item.Name,
		"quantity":      "3",
	}, &transfer)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, fmt.Sprintf("/api/transfers/%s/complete", transfer.ID), nil, &transfer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, transfers.StatusCompleted, transfer.Status)

	// Single-location model: stock stays put after a transfer.
	var updated inventory.Item
	resp = ts.do(t, http.MethodGet, "/api/inventory/"+item.ID, nil, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, updated.CurrentStock.Equal(decimal.NewFromInt(7)))

	// Re-completing is rejected.
	resp = ts.do(t, http.MethodPost, fmt.Sprintf("/api/transfers/%s/complete", transfer.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLowStockEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	var boundary inventory.Item
	resp := ts.do(t, http.MethodPost, "/api/inventory/", map[string]interface{}{
		"name":          "Flour",
		"current_stock": "5",
		"reorder_level": "5",
	}, &boundary)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/inventory/", map[string]interface{}{
		"name":          "Sugar",
		"current_stock": "9",
		"reorder_level": "5",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var low []inventory.Item
	resp = ts.do(t, http.MethodGet, "/api/inventory/low-stock", nil, &low)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, low, 1)
	assert.Equal(t, boundary.ID, low[0].ID)
}

func TestDeleteItemReturnsNotFoundAfterwards(t *testing.T) {
	ts := setupTestServer(t)

	var item inventory.Item
	resp := ts.do(t, http.MethodPost, "/api/inventory/", map[string]interface{}{
		"name":          "Saffron",
		"current_stock": "3",
	}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/inventory/"+item.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/inventory/"+item.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
