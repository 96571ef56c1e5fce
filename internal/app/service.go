package app

import (
	"context"

	"consignment-manager/internal/core"
)

// ApplicationService is the single interface presentation adapters call.
// It decouples transport from business logic. Implementations must contain
// no display logic of any kind.
type ApplicationService interface {
	// GetDashboard returns the headline figures for the landing page.
	GetDashboard(ctx context.Context) (*core.DashboardStats, error)

	// ── Clients ──
	ListClients(ctx context.Context, search string, includeInactive bool) ([]core.Client, error)
	GetClient(ctx context.Context, id int) (*core.Client, error)
	CreateClient(ctx context.Context, input core.ClientInput) (*core.Client, error)
	UpdateClient(ctx context.Context, id int, input core.ClientPatch) (*core.Client, error)
	DeleteClient(ctx context.Context, id int) error
	DeactivateClient(ctx context.Context, id int) (*core.Client, error)
	ActivateClient(ctx context.Context, id int) (*core.Client, error)

	// ── Products ──
	ListProducts(ctx context.Context, search string, typeFilter core.WineType) ([]core.Product, error)
	GetProduct(ctx context.Context, id int) (*core.Product, error)
	CreateProduct(ctx context.Context, input core.ProductInput) (*core.Product, error)
	UpdateProduct(ctx context.Context, id int, input core.ProductPatch) (*core.Product, error)
	DeleteProduct(ctx context.Context, id int) error

	// ── Users ──
	ListUsers(ctx context.Context) ([]core.User, error)
	CreateUser(ctx context.Context, input core.UserInput) (*core.User, error)
	UpdateUser(ctx context.Context, id int, input core.UserPatch) (*core.User, error)
	DeactivateUser(ctx context.Context, id int) (*core.User, error)

	// ── Consignments ──
	ListConsignments(ctx context.Context, filter core.ConsignmentFilter) ([]core.ConsignmentWithDetails, error)
	GetConsignment(ctx context.Context, id int) (*core.ConsignmentWithDetails, error)
	CreateConsignment(ctx context.Context, input core.ConsignmentInput) (*core.ConsignmentWithDetails, error)
	UpdateConsignment(ctx context.Context, id int, input core.ConsignmentPatch) (*core.ConsignmentWithDetails, error)
	DeleteConsignment(ctx context.Context, id int) error

	// ── Live stock ──
	GetClientStock(ctx context.Context, clientID int) ([]core.ClientStockWithDetails, error)
	GetProductStock(ctx context.Context, clientID, productID int) (*core.ClientStock, error)
	UpdateProductStock(ctx context.Context, clientID, productID int, patch core.ClientStockPatch) (*core.ClientStock, error)
	// ProcessCount reconciles a physical count against the live ledger.
	ProcessCount(ctx context.Context, req ProcessCountRequest) (*core.CountResult, error)
	GetLowStockAlerts(ctx context.Context, clientID *int) ([]core.ClientStockWithDetails, error)
	SetMinimumAlert(ctx context.Context, req MinimumAlertRequest) (*core.ClientStock, error)
	// GetClientStockValue totals a client's on-hand stock at current catalog
	// prices, formatted to two decimal places.
	GetClientStockValue(ctx context.Context, clientID int) (string, error)

	// ── Count history ──
	ListStockCounts(ctx context.Context, clientID *int) ([]core.StockCount, error)
	GetStockCount(ctx context.Context, id int) (*core.StockCount, error)
	CreateStockCount(ctx context.Context, input core.StockCountInput) (*core.StockCount, error)
	UpdateStockCount(ctx context.Context, id int, patch core.StockCountPatch) (*core.StockCount, error)
	DeleteStockCount(ctx context.Context, id int) error
	CreateStockCountBatch(ctx context.Context, inputs []core.StockCountInput) ([]core.StockCount, error)

	// ── Reporting ──
	GetClientInventory(ctx context.Context, clientID int) (*ClientInventoryResult, error)
	GetCurrentStockReport(ctx context.Context) (*StockReportResult, error)

	// ParseCountSheet turns a free-text count report into structured lines
	// resolved against the product catalog. It does not write anything;
	// the caller reviews the result and submits counts explicitly.
	ParseCountSheet(ctx context.Context, req ParseCountSheetRequest) (*ParseCountSheetResult, error)
}
