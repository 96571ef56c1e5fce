package app

import "consignment-manager/internal/core"

// ClientInventoryResult bundles the per-product listing with its totals.
type ClientInventoryResult struct {
	Items   []core.ClientInventoryItem  `json:"items"`
	Summary core.ClientInventorySummary `json:"summary"`
}

// StockReportResult is the cross-client current-stock report.
type StockReportResult struct {
	Items        []core.CurrentStockItem `json:"items"`
	TotalClients int                     `json:"total_clients"`
}

// ResolvedCountLine is a parsed count line matched to a catalog product.
type ResolvedCountLine struct {
	ProductID         int    `json:"product_id"`
	ProductName       string `json:"product_name"`
	QuantityRemaining int    `json:"quantity_remaining"`
}

// ParseCountSheetResult is the reviewed-before-submit output of AI parsing.
type ParseCountSheetResult struct {
	Lines      []ResolvedCountLine `json:"lines"`
	Confidence float64             `json:"confidence"`
	Notes      string              `json:"notes,omitempty"`
}
