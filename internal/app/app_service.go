package app

import (
	"context"
	"strings"

	"consignment-manager/internal/ai"
	"consignment-manager/internal/core"
)

type appService struct {
	clients      core.ClientService
	products     core.ProductService
	users        core.UserService
	consignments core.ConsignmentService
	clientStock  core.ClientStockService
	stockCounts  core.StockCountService
	inventory    core.InventoryService
	dashboard    core.DashboardService
	agent        ai.AgentService
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil when no API key is configured; ParseCountSheet then fails
// with ErrUnavailable.
func NewAppService(
	clients core.ClientService,
	products core.ProductService,
	users core.UserService,
	consignments core.ConsignmentService,
	clientStock core.ClientStockService,
	stockCounts core.StockCountService,
	inventory core.InventoryService,
	dashboard core.DashboardService,
	agent ai.AgentService,
) ApplicationService {
	return &appService{
		clients:      clients,
		products:     products,
		users:        users,
		consignments: consignments,
		clientStock:  clientStock,
		stockCounts:  stockCounts,
		inventory:    inventory,
		dashboard:    dashboard,
		agent:        agent,
	}
}

func (s *appService) GetDashboard(ctx context.Context) (*core.DashboardStats, error) {
	return s.dashboard.GetStats(ctx)
}

// ── Clients ──

func (s *appService) ListClients(ctx context.Context, search string, includeInactive bool) ([]core.Client, error) {
	return s.clients.List(ctx, search, includeInactive)
}

func (s *appService) GetClient(ctx context.Context, id int) (*core.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *appService) CreateClient(ctx context.Context, input core.ClientInput) (*core.Client, error) {
	return s.clients.Create(ctx, input)
}

func (s *appService) UpdateClient(ctx context.Context, id int, input core.ClientPatch) (*core.Client, error) {
	return s.clients.Update(ctx, id, input)
}

func (s *appService) DeleteClient(ctx context.Context, id int) error {
	return s.clients.Delete(ctx, id)
}

func (s *appService) DeactivateClient(ctx context.Context, id int) (*core.Client, error) {
	return s.clients.Deactivate(ctx, id)
}

func (s *appService) ActivateClient(ctx context.Context, id int) (*core.Client, error) {
	return s.clients.Activate(ctx, id)
}

// ── Products ──

func (s *appService) ListProducts(ctx context.Context, search string, typeFilter core.WineType) ([]core.Product, error) {
	return s.products.List(ctx, search, typeFilter)
}

func (s *appService) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *appService) CreateProduct(ctx context.Context, input core.ProductInput) (*core.Product, error) {
	return s.products.Create(ctx, input)
}

func (s *appService) UpdateProduct(ctx context.Context, id int, input core.ProductPatch) (*core.Product, error) {
	return s.products.Update(ctx, id, input)
}

func (s *appService) DeleteProduct(ctx context.Context, id int) error {
	return s.products.Delete(ctx, id)
}

// ── Users ──

func (s *appService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.users.List(ctx)
}

func (s *appService) CreateUser(ctx context.Context, input core.UserInput) (*core.User, error) {
	return s.users.Create(ctx, input)
}

func (s *appService) UpdateUser(ctx context.Context, id int, input core.UserPatch) (*core.User, error) {
	return s.users.Update(ctx, id, input)
}

func (s *appService) DeactivateUser(ctx context.Context, id int) (*core.User, error) {
	return s.users.Deactivate(ctx, id)
}

// ── Consignments ──

func (s *appService) ListConsignments(ctx context.Context, filter core.ConsignmentFilter) ([]core.ConsignmentWithDetails, error) {
	return s.consignments.List(ctx, filter)
}

func (s *appService) GetConsignment(ctx context.Context, id int) (*core.ConsignmentWithDetails, error) {
	return s.consignments.GetByID(ctx, id)
}

func (s *appService) CreateConsignment(ctx context.Context, input core.ConsignmentInput) (*core.ConsignmentWithDetails, error) {
	return s.consignments.Create(ctx, input)
}

func (s *appService) UpdateConsignment(ctx context.Context, id int, input core.ConsignmentPatch) (*core.ConsignmentWithDetails, error) {
	return s.consignments.Update(ctx, id, input)
}

func (s *appService) DeleteConsignment(ctx context.Context, id int) error {
	return s.consignments.Delete(ctx, id)
}

// ── Live stock ──

func (s *appService) GetClientStock(ctx context.Context, clientID int) ([]core.ClientStockWithDetails, error) {
	return s.clientStock.GetClientStock(ctx, clientID)
}

func (s *appService) GetProductStock(ctx context.Context, clientID, productID int) (*core.ClientStock, error) {
	return s.clientStock.GetProductStock(ctx, clientID, productID)
}

func (s *appService) UpdateProductStock(ctx context.Context, clientID, productID int, patch core.ClientStockPatch) (*core.ClientStock, error) {
	return s.clientStock.UpdateProductStock(ctx, clientID, productID, patch)
}

func (s *appService) ProcessCount(ctx context.Context, req ProcessCountRequest) (*core.CountResult, error) {
	return s.clientStock.ProcessCount(ctx, req.ClientID, req.ProductID, req.QuantityCounted)
}

func (s *appService) GetLowStockAlerts(ctx context.Context, clientID *int) ([]core.ClientStockWithDetails, error) {
	return s.clientStock.GetLowStockAlerts(ctx, clientID)
}

func (s *appService) SetMinimumAlert(ctx context.Context, req MinimumAlertRequest) (*core.ClientStock, error) {
	return s.clientStock.SetMinimumAlert(ctx, req.ClientID, req.ProductID, req.MinimumAlert)
}

func (s *appService) GetClientStockValue(ctx context.Context, clientID int) (string, error) {
	total, err := s.clientStock.GetTotalStockValue(ctx, clientID)
	if err != nil {
		return "", err
	}
	return total.StringFixed(2), nil
}

// ── Count history ──

func (s *appService) ListStockCounts(ctx context.Context, clientID *int) ([]core.StockCount, error) {
	return s.stockCounts.List(ctx, clientID)
}

func (s *appService) GetStockCount(ctx context.Context, id int) (*core.StockCount, error) {
	return s.stockCounts.GetByID(ctx, id)
}

func (s *appService) CreateStockCount(ctx context.Context, input core.StockCountInput) (*core.StockCount, error) {
	return s.stockCounts.Create(ctx, input)
}

func (s *appService) UpdateStockCount(ctx context.Context, id int, patch core.StockCountPatch) (*core.StockCount, error) {
	return s.stockCounts.Update(ctx, id, patch)
}

func (s *appService) DeleteStockCount(ctx context.Context, id int) error {
	return s.stockCounts.Delete(ctx, id)
}

func (s *appService) CreateStockCountBatch(ctx context.Context, inputs []core.StockCountInput) ([]core.StockCount, error) {
	return s.stockCounts.CreateBatch(ctx, inputs)
}

// ── Reporting ──

func (s *appService) GetClientInventory(ctx context.Context, clientID int) (*ClientInventoryResult, error) {
	items, err := s.inventory.GetClientInventory(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &ClientInventoryResult{
		Items:   items,
		Summary: core.SummarizeInventory(items),
	}, nil
}

func (s *appService) GetCurrentStockReport(ctx context.Context) (*StockReportResult, error) {
	items, totalClients, err := s.inventory.GetCurrentStockReport(ctx)
	if err != nil {
		return nil, err
	}
	return &StockReportResult{Items: items, TotalClients: totalClients}, nil
}

func (s *appService) ParseCountSheet(ctx context.Context, req ParseCountSheetRequest) (*ParseCountSheetResult, error) {
	if _, err := s.clients.GetByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	if s.agent == nil {
		return nil, core.Unavailablef("AI parsing is not configured")
	}
	catalog, err := s.products.List(ctx, "", "")
	if err != nil {
		return nil, err
	}

	sheet, err := s.agent.ParseCountSheet(ctx, req.Text, catalog)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]core.Product, len(catalog))
	for _, p := range catalog {
		byName[strings.ToLower(p.Name)] = p
	}

	result := &ParseCountSheetResult{
		Confidence: sheet.Confidence,
		Notes:      sheet.Notes,
	}
	for _, line := range sheet.Lines {
		p, ok := byName[strings.ToLower(line.ProductName)]
		if !ok {
			return nil, core.InvalidArgumentf("parsed product %q is not in the catalog", line.ProductName)
		}
		result.Lines = append(result.Lines, ResolvedCountLine{
			ProductID:         p.ID,
			ProductName:       p.Name,
			QuantityRemaining: line.QuantityRemaining,
		})
	}
	return result, nil
}
