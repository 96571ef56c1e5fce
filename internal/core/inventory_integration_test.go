package core_test

import (
	"context"
	"errors"
	"testing"

	"consignment-manager/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func setupReportingTestDB(t *testing.T) (*pgxpool.Pool, context.Context, core.ConsignmentService, core.ClientStockService, core.StockCountService) {
	t.Helper()
	pool, ctx := setupTestDB(t)
	consignments, clientStock, stockCounts := newServices(pool)
	return pool, ctx, consignments, clientStock, stockCounts
}

func TestClientInventory_FoldsConsignmentsAndCounts(t *testing.T) {
	pool, ctx, consignments, clientStock, _ := setupReportingTestDB(t)
	inventory := core.NewInventoryService(pool)

	deliverConsignment(t, ctx, consignments, []core.ConsignmentItemInput{
		{ProductID: 1, Quantity: 12},
		{ProductID: 2, Quantity: 24},
	})

	// Count product 1; product 2 stays uncounted.
	if _, err := clientStock.ProcessCount(ctx, 1, 1, 5); err != nil {
		t.Fatalf("ProcessCount failed: %v", err)
	}
	// The historical record reflecting that count.
	stockCounts := core.NewStockCountService(pool)
	counts, err := stockCounts.List(ctx, nil)
	if err != nil {
		t.Fatalf("List counts failed: %v", err)
	}
	var malbecCountID int
	for _, sc := range counts {
		if sc.ProductID == 1 {
			malbecCountID = sc.ID
		}
	}
	remaining := 5
	if _, err := stockCounts.Update(ctx, malbecCountID, core.StockCountPatch{QuantityRemaining: &remaining}); err != nil {
		t.Fatalf("Update count failed: %v", err)
	}

	items, err := inventory.GetClientInventory(ctx, 1)
	if err != nil {
		t.Fatalf("GetClientInventory failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("inventory items = %d, want 2", len(items))
	}

	byProduct := map[int]core.ClientInventoryItem{}
	for _, it := range items {
		byProduct[it.ProductID] = it
	}

	malbec := byProduct[1]
	if malbec.TotalSent != 12 || malbec.TotalRemaining != 5 || malbec.TotalSold != 7 {
		t.Errorf("malbec totals = %d/%d/%d, want 12/5/7", malbec.TotalSent, malbec.TotalRemaining, malbec.TotalSold)
	}
	if malbec.TotalSalesValue != "629.30" {
		t.Errorf("malbec sales value = %s, want 629.30", malbec.TotalSalesValue)
	}

	rose := byProduct[2]
	if rose.TotalRemaining != 24 || rose.TotalSold != 0 {
		t.Errorf("uncounted rose totals = %d/%d, want 24/0", rose.TotalRemaining, rose.TotalSold)
	}

	summary, err := inventory.GetClientInventorySummary(ctx, 1)
	if err != nil {
		t.Fatalf("GetClientInventorySummary failed: %v", err)
	}
	if summary.TotalProducts != 2 || summary.TotalSent != 36 || summary.TotalRemaining != 29 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TotalSalesValue != "629.30" {
		t.Errorf("summary sales value = %s, want 629.30", summary.TotalSalesValue)
	}
}

func TestClientInventory_UnknownClient(t *testing.T) {
	pool, ctx, _, _, _ := setupReportingTestDB(t)
	inventory := core.NewInventoryService(pool)

	_, err := inventory.GetClientInventory(ctx, 999)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClientInventory_CountsPendingConsignments(t *testing.T) {
	pool, ctx, consignments, _, _ := setupReportingTestDB(t)
	inventory := core.NewInventoryService(pool)

	// Goods booked but not yet delivered still count as sent; the line
	// carries its status so the caller can tell.
	if _, err := consignments.Create(ctx, core.ConsignmentInput{
		ClientID: 1,
		Items:    []core.ConsignmentItemInput{{ProductID: 1, Quantity: 12}},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	items, err := inventory.GetClientInventory(ctx, 1)
	if err != nil {
		t.Fatalf("GetClientInventory failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("inventory items = %d, want 1", len(items))
	}
	it := items[0]
	if it.TotalSent != 12 || it.TotalRemaining != 12 || it.TotalSold != 0 {
		t.Errorf("pending totals = %d/%d/%d, want 12/12/0", it.TotalSent, it.TotalRemaining, it.TotalSold)
	}
	if len(it.Consignments) != 1 || it.Consignments[0].Status != core.ConsignmentPending {
		t.Errorf("breakdown = %+v, want one pending consignment", it.Consignments)
	}
}

func TestCurrentStockReport_AggregatesAcrossClients(t *testing.T) {
	pool, ctx, consignments, _, _ := setupReportingTestDB(t)
	inventory := core.NewInventoryService(pool)

	deliverConsignment(t, ctx, consignments, []core.ConsignmentItemInput{{ProductID: 1, Quantity: 12}})

	// Second client gets a delivery too.
	c2, err := consignments.Create(ctx, core.ConsignmentInput{
		ClientID: 2,
		Items:    []core.ConsignmentItemInput{{ProductID: 2, Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	delivered := core.ConsignmentDelivered
	if _, err := consignments.Update(ctx, c2.ID, core.ConsignmentPatch{Status: &delivered}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	report, clientCount, err := inventory.GetCurrentStockReport(ctx)
	if err != nil {
		t.Fatalf("GetCurrentStockReport failed: %v", err)
	}
	if clientCount != 2 {
		t.Errorf("client count = %d, want 2", clientCount)
	}
	if len(report) != 2 {
		t.Fatalf("report rows = %d, want 2", len(report))
	}
	for _, row := range report {
		if row.TotalRemaining != row.TotalSent || row.TotalSold != 0 {
			t.Errorf("fresh delivery row should be all remaining: %+v", row)
		}
	}
}

func TestCurrentStockReport_OnlyDeliveredConsignmentsAndTheirCounts(t *testing.T) {
	pool, ctx, consignments, _, stockCounts := setupReportingTestDB(t)
	inventory := core.NewInventoryService(pool)

	delivered := deliverConsignment(t, ctx, consignments, []core.ConsignmentItemInput{{ProductID: 1, Quantity: 12}})

	// Same client and product again, but this shipment never left the cellar.
	pending, err := consignments.Create(ctx, core.ConsignmentInput{
		ClientID: 1,
		Items:    []core.ConsignmentItemInput{{ProductID: 1, Quantity: 8}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// A count recorded against the pending consignment must not leak into
	// the delivered-stock report.
	price := decimal.RequireFromString("89.90")
	if _, err := stockCounts.Create(ctx, core.StockCountInput{
		ClientID: 1, ProductID: 1, ConsignmentID: pending.ID,
		QuantitySent: 8, QuantityRemaining: 2, UnitPrice: price,
	}); err != nil {
		t.Fatalf("Create count failed: %v", err)
	}

	report, clientCount, err := inventory.GetCurrentStockReport(ctx)
	if err != nil {
		t.Fatalf("GetCurrentStockReport failed: %v", err)
	}
	if clientCount != 1 || len(report) != 1 {
		t.Fatalf("report = %d rows / %d clients, want 1/1", len(report), clientCount)
	}
	row := report[0]
	if row.TotalSent != 12 || row.TotalRemaining != 12 || row.TotalSold != 0 {
		t.Errorf("row totals = %d/%d/%d, want 12/12/0", row.TotalSent, row.TotalRemaining, row.TotalSold)
	}
	if row.TotalSalesValue != "0.00" {
		t.Errorf("sales value = %s, want 0.00", row.TotalSalesValue)
	}

	// Completing the delivered consignment closes it out of the report.
	completed := core.ConsignmentCompleted
	if _, err := consignments.Update(ctx, delivered.ID, core.ConsignmentPatch{Status: &completed}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	report, _, err = inventory.GetCurrentStockReport(ctx)
	if err != nil {
		t.Fatalf("GetCurrentStockReport failed: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("report after completion = %+v, want empty", report)
	}
}

func TestDashboard_Stats(t *testing.T) {
	pool, ctx, consignments, clientStock, stockCounts := setupReportingTestDB(t)
	clients := core.NewClientService(pool)
	products := core.NewProductService(pool)
	dashboard := core.NewDashboardService(clients, products, consignments, stockCounts)

	deliverConsignment(t, ctx, consignments, []core.ConsignmentItemInput{{ProductID: 1, Quantity: 10}})
	if _, err := clientStock.ProcessCount(ctx, 1, 1, 10); err != nil {
		t.Fatalf("ProcessCount failed: %v", err)
	}

	stats, err := dashboard.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	// 10 * 89.90 consigned.
	if stats.TotalConsigned != "899.00" {
		t.Errorf("total consigned = %s, want 899.00", stats.TotalConsigned)
	}
	// Baseline counts carry zero sales and the count above sold nothing.
	if stats.TotalSales != "0.00" {
		t.Errorf("total sales = %s, want 0.00", stats.TotalSales)
	}
	if stats.ActiveClients != 2 || stats.TotalProducts != 2 {
		t.Errorf("counts = %d clients / %d products, want 2/2", stats.ActiveClients, stats.TotalProducts)
	}
}

func TestClientRegistry_DeleteGuards(t *testing.T) {
	pool, ctx, consignments, _, _ := setupReportingTestDB(t)
	clients := core.NewClientService(pool)

	deliverConsignment(t, ctx, consignments, []core.ConsignmentItemInput{{ProductID: 1, Quantity: 5}})

	// Client 1 now has history: hard delete must refuse.
	err := clients.Delete(ctx, 1)
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("expected ErrConflict deleting referenced client, got %v", err)
	}

	// Deactivation is the sanctioned path.
	c, err := clients.Deactivate(ctx, 1)
	if err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if c.IsActive {
		t.Error("client still active after Deactivate")
	}

	// Client 2 has no history and can go.
	if err := clients.Delete(ctx, 2); err != nil {
		t.Errorf("Delete of unreferenced client failed: %v", err)
	}

	if err := clients.Delete(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRegistry_DeleteGuards(t *testing.T) {
	pool, ctx, consignments, _, _ := setupReportingTestDB(t)
	products := core.NewProductService(pool)

	deliverConsignment(t, ctx, consignments, []core.ConsignmentItemInput{{ProductID: 1, Quantity: 5}})

	if err := products.Delete(ctx, 1); !errors.Is(err, core.ErrConflict) {
		t.Errorf("expected ErrConflict deleting consigned product, got %v", err)
	}
	if err := products.Delete(ctx, 2); err != nil {
		t.Errorf("Delete of unreferenced product failed: %v", err)
	}
}
