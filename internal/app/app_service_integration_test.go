package app_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"consignment-manager/internal/app"
	"consignment-manager/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupFacade(t *testing.T) (app.ApplicationService, context.Context) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_counts, client_stock, consignment_items, consignments, products, clients, users RESTART IDENTITY CASCADE;

		INSERT INTO clients (name, cnpj, address, phone, contact_name) VALUES
		('Bistro do Porto', '11.111.111/0001-11', 'Rua A, 10', '11 91111-1111', 'Ana');

		INSERT INTO products (name, country, type, unit_price, volume) VALUES
		('Reserva Malbec', 'Argentina', 'tinto', '89.90', '750ml');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	clients := core.NewClientService(pool)
	products := core.NewProductService(pool)
	users := core.NewUserService(pool)
	clientStock := core.NewClientStockService(pool)
	stockCounts := core.NewStockCountService(pool)
	consignments := core.NewConsignmentService(pool, clientStock, stockCounts)
	inventory := core.NewInventoryService(pool)
	dashboard := core.NewDashboardService(clients, products, consignments, stockCounts)

	// nil agent: the AI path is unconfigured.
	return app.NewAppService(clients, products, users, consignments,
		clientStock, stockCounts, inventory, dashboard, nil), ctx
}

func TestParseCountSheet_ValidatesClientBeforeAgent(t *testing.T) {
	svc, ctx := setupFacade(t)

	_, err := svc.ParseCountSheet(ctx, app.ParseCountSheetRequest{ClientID: 999, Text: "malbec: 5"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown client, got %v", err)
	}

	_, err = svc.ParseCountSheet(ctx, app.ParseCountSheetRequest{ClientID: 1, Text: "malbec: 5"})
	if !errors.Is(err, core.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable without an agent, got %v", err)
	}
}
