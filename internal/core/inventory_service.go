package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryService builds read-only reporting views over consignments and
// count history. Nothing here mutates state.
type InventoryService interface {
	// GetClientInventory lists, per product, what a client received, what
	// remains, and what was sold, with the per-consignment breakdown. All
	// consignments count toward the sent totals, pending ones included;
	// each line carries its consignment status so callers can tell.
	GetClientInventory(ctx context.Context, clientID int) ([]ClientInventoryItem, error)
	GetClientInventorySummary(ctx context.Context, clientID int) (*ClientInventorySummary, error)
	// GetCurrentStockReport aggregates delivered stock across all clients,
	// one row per (client, product).
	GetCurrentStockReport(ctx context.Context) ([]CurrentStockItem, int, error)
}

type inventoryService struct {
	pool *pgxpool.Pool
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

func (s *inventoryService) GetClientInventory(ctx context.Context, clientID int) ([]ClientInventoryItem, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)", clientID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check client %d: %w", clientID, err)
	}
	if !exists {
		return nil, NotFoundf("client %d", clientID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ci.product_id, ci.consignment_id, ci.quantity, co.date, co.status,
		       p.id, p.name, p.country, p.type, p.unit_price, p.volume, p.photo
		FROM consignment_items ci
		JOIN consignments co ON co.id = ci.consignment_id
		JOIN products p ON p.id = ci.product_id
		WHERE co.client_id = $1
		ORDER BY co.date, ci.id`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("load consignment items for client %d: %w", clientID, err)
	}
	defer rows.Close()

	var items []consignmentItemRow
	for rows.Next() {
		var r consignmentItemRow
		if err := rows.Scan(
			&r.ProductID, &r.ConsignmentID, &r.Quantity, &r.Date, &r.Status,
			&r.Product.ID, &r.Product.Name, &r.Product.Country, &r.Product.Type,
			&r.Product.UnitPrice, &r.Product.Volume, &r.Product.Photo,
		); err != nil {
			return nil, fmt.Errorf("scan consignment item: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	countRows, err := s.pool.Query(ctx, `
		SELECT `+stockCountColumns+`
		FROM stock_counts
		WHERE client_id = $1
		ORDER BY count_date, id`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("load counts for client %d: %w", clientID, err)
	}
	defer countRows.Close()

	var counts []StockCount
	for countRows.Next() {
		var sc StockCount
		if err := countRows.Scan(
			&sc.ID, &sc.ClientID, &sc.ProductID, &sc.ConsignmentID,
			&sc.QuantitySent, &sc.QuantityRemaining, &sc.QuantitySold,
			&sc.UnitPrice, &sc.TotalSold, &sc.CountDate,
		); err != nil {
			return nil, fmt.Errorf("scan stock count: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := countRows.Err(); err != nil {
		return nil, err
	}

	return foldClientInventory(items, counts), nil
}

func (s *inventoryService) GetClientInventorySummary(ctx context.Context, clientID int) (*ClientInventorySummary, error) {
	items, err := s.GetClientInventory(ctx, clientID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeInventory(items)
	return &summary, nil
}

func (s *inventoryService) GetCurrentStockReport(ctx context.Context) ([]CurrentStockItem, int, error) {
	// Counts join through the (client, product, consignment) triple so a
	// count recorded against an undelivered consignment never leaks in.
	rows, err := s.pool.Query(ctx, `
		SELECT co.client_id, cl.name,
		       ci.product_id, p.name, p.country, p.type, p.unit_price,
		       COALESCE(SUM(ci.quantity), 0) AS total_sent,
		       COALESCE(SUM(sc.quantity_remaining), SUM(ci.quantity)) AS total_remaining,
		       COALESCE(SUM(sc.quantity_sold), 0) AS total_sold,
		       COALESCE(SUM(sc.total_sold), 0) AS total_sales
		FROM consignment_items ci
		JOIN consignments co ON co.id = ci.consignment_id
		JOIN clients cl ON cl.id = co.client_id
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN stock_counts sc
		       ON sc.client_id = co.client_id
		      AND sc.product_id = ci.product_id
		      AND sc.consignment_id = ci.consignment_id
		WHERE co.status = 'delivered'
		GROUP BY co.client_id, cl.name, ci.product_id, p.name, p.country, p.type, p.unit_price
		ORDER BY cl.name, p.name`,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("current stock report: %w", err)
	}
	defer rows.Close()

	var out []CurrentStockItem
	clients := make(map[int]struct{})
	for rows.Next() {
		var it CurrentStockItem
		var unitPrice, totalSales decimal.Decimal
		if err := rows.Scan(
			&it.ClientID, &it.ClientName,
			&it.ProductID, &it.ProductName, &it.ProductCountry, &it.ProductType, &unitPrice,
			&it.TotalSent, &it.TotalRemaining, &it.TotalSold, &totalSales,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock report row: %w", err)
		}
		it.UnitPrice = unitPrice.StringFixed(2)
		it.TotalSalesValue = totalSales.StringFixed(2)
		clients[it.ClientID] = struct{}{}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, len(clients), nil
}
