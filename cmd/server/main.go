// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"stockbook/internal/auth"
	"stockbook/internal/config"
	"stockbook/internal/inventory"
	"stockbook/internal/ledger"
	"stockbook/internal/rowstore"
	"stockbook/internal/shipments"
	"stockbook/internal/telemetry"
	"stockbook/internal/transfers"
)

func main() {
	cfg := config.Load()

	logger, err := telemetry.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(ctx)

	rows, err := openRowStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open row store", zap.Error(err))
	}

	ledgerStore := ledger.NewStore(rows)
	inventorySvc := inventory.NewService(rows, ledgerStore, logger)
	shipmentSvc := shipments.NewService(rows, inventorySvc, logger)
	transferSvc := transfers.NewService(rows, inventorySvc, logger)
	authSvc := auth.NewService(rows, logger)

	if err := authSvc.EnsureDefaultAdmin(ctx, cfg.AdminUser, cfg.AdminPassword); err != nil {
		logger.Fatal("failed to seed default admin", zap.Error(err))
	}

	authHandler := auth.NewHandler(authSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Mount("/api/auth", authHandler.Routes())

	r.Group(func(r chi.Router) {
		r.Use(authHandler.Middleware)
		r.Mount("/api/inventory", inventory.NewHandler(inventorySvc).Routes())
		r.Mount("/api/shipments", shipments.NewHandler(shipmentSvc).Routes())
		r.Mount("/api/transfers", transfers.NewHandler(transferSvc).Routes())
	})

	logger.Info("server listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// openRowStore selects the Postgres row store when DATABASE_URL is set
// and falls back to the in-memory store otherwise.
func openRowStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (rowstore.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory row store")
		return rowstore.NewMemoryStore(rowstore.Schema()), nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := rowstore.NewPostgresStore(db, rowstore.Schema())
	if err := store.EnsureTables(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
