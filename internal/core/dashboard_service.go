package core

import (
	"context"
	"fmt"
)

// DashboardService assembles the headline figures for the landing page.
type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	clients      ClientService
	products     ProductService
	consignments ConsignmentService
	stockCounts  StockCountService
}

// NewDashboardService composes the registry and ledger services into the
// dashboard view.
func NewDashboardService(clients ClientService, products ProductService,
	consignments ConsignmentService, stockCounts StockCountService) DashboardService {
	return &dashboardService{
		clients:      clients,
		products:     products,
		consignments: consignments,
		stockCounts:  stockCounts,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	totalConsigned, err := s.consignments.TotalConsignedValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard consigned value: %w", err)
	}
	totalSales, err := s.stockCounts.TotalSalesValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard sales value: %w", err)
	}
	activeClients, err := s.clients.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard client count: %w", err)
	}
	totalProducts, err := s.products.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard product count: %w", err)
	}

	return &DashboardStats{
		TotalConsigned: totalConsigned.StringFixed(2),
		TotalSales:     totalSales.StringFixed(2),
		ActiveClients:  activeClients,
		TotalProducts:  totalProducts,
	}, nil
}
