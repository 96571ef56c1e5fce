package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientStock is the live ledger: one row per (client, product) holding the
// authoritative on-hand quantity. It is mutated in exactly two ways — added to
// when a consignment is delivered, overwritten when a physical count is
// processed.
type ClientStock struct {
	ID           int       `json:"id"`
	ClientID     int       `json:"client_id"`
	ProductID    int       `json:"product_id"`
	Quantity     int       `json:"quantity"`
	MinimumAlert int       `json:"minimum_alert"`
	LastUpdated  time.Time `json:"last_updated"`
}

type ClientStockWithDetails struct {
	ClientStock
	Product Product `json:"product"`
	Client  Client  `json:"client"`
}

// StockCount is an append-only historical record reconciling a count against
// the consignment that shipped the goods.
type StockCount struct {
	ID                int             `json:"id"`
	ClientID          int             `json:"client_id"`
	ProductID         int             `json:"product_id"`
	ConsignmentID     int             `json:"consignment_id"`
	QuantitySent      int             `json:"quantity_sent"`
	QuantityRemaining int             `json:"quantity_remaining"`
	QuantitySold      int             `json:"quantity_sold"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalSold         decimal.Decimal `json:"total_sold"`
	CountDate         time.Time       `json:"count_date"`
}

type StockCountInput struct {
	ClientID          int             `json:"client_id"`
	ProductID         int             `json:"product_id"`
	ConsignmentID     int             `json:"consignment_id"`
	QuantitySent      int             `json:"quantity_sent"`
	QuantityRemaining int             `json:"quantity_remaining"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// StockCountPatch is a partial update; nil fields keep the stored value.
// Derived fields are always recomputed from the merged result.
type StockCountPatch struct {
	QuantitySent      *int             `json:"quantity_sent,omitempty"`
	QuantityRemaining *int             `json:"quantity_remaining,omitempty"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
}

// CountResult is the outcome of processing a real-time count against the
// live ledger.
type CountResult struct {
	QuantitySold   int    `json:"quantity_sold"`
	SalesValue     string `json:"sales_value"`
	RemainingStock int    `json:"remaining_stock"`
}

// ClientInventoryConsignment is the per-shipment breakdown inside a client
// inventory row.
type ClientInventoryConsignment struct {
	ID                int               `json:"id"`
	Date              time.Time         `json:"date"`
	Status            ConsignmentStatus `json:"status"`
	QuantitySent      int               `json:"quantity_sent"`
	QuantityRemaining int               `json:"quantity_remaining"`
	QuantitySold      int               `json:"quantity_sold"`
	SalesValue        string            `json:"sales_value"`
}

type ClientInventoryItem struct {
	ProductID       int                          `json:"product_id"`
	ProductName     string                       `json:"product_name"`
	ProductCountry  string                       `json:"product_country"`
	ProductType     WineType                     `json:"product_type"`
	UnitPrice       string                       `json:"unit_price"`
	Volume          string                       `json:"volume"`
	Photo           *string                      `json:"photo,omitempty"`
	TotalSent       int                          `json:"total_sent"`
	TotalRemaining  int                          `json:"total_remaining"`
	TotalSold       int                          `json:"total_sold"`
	TotalSalesValue string                       `json:"total_sales_value"`
	Consignments    []ClientInventoryConsignment `json:"consignments"`
}

type ClientInventorySummary struct {
	TotalProducts   int    `json:"total_products"`
	TotalSent       int    `json:"total_sent"`
	TotalRemaining  int    `json:"total_remaining"`
	TotalSold       int    `json:"total_sold"`
	TotalSalesValue string `json:"total_sales_value"`
}

// CurrentStockItem is one row of the cross-client current-stock report.
type CurrentStockItem struct {
	ClientID        int      `json:"client_id"`
	ClientName      string   `json:"client_name"`
	ProductID       int      `json:"product_id"`
	ProductName     string   `json:"product_name"`
	ProductCountry  string   `json:"product_country"`
	ProductType     WineType `json:"product_type"`
	UnitPrice       string   `json:"unit_price"`
	TotalSent       int      `json:"total_sent"`
	TotalRemaining  int      `json:"total_remaining"`
	TotalSold       int      `json:"total_sold"`
	TotalSalesValue string   `json:"total_sales_value"`
}

// ── Derivation rules ──────────────────────────────────────────────────────────
//
// These are the arithmetic heart of the reconciliation engine, kept as plain
// functions so both persistence paths share one definition.

// SoldQuantity derives quantity sold from the ledger level before a count and
// the freshly counted value. Clamped at zero: a count higher than the ledger
// (data-entry error, undeclared delivery) must never yield negative sales.
func SoldQuantity(before, counted int) int {
	if sold := before - counted; sold > 0 {
		return sold
	}
	return 0
}

// SalesValue converts a sold quantity to money at the given unit price,
// rounded to 2 decimal places.
func SalesValue(sold int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(sold))).Round(2)
}

// DeriveStockCount fills the derived fields of a historical count record.
// Unlike the live-ledger path this is NOT clamped: quantitySent is supplied by
// the caller, and a remaining value above it is a data-entry anomaly that must
// stay visible as a negative sold figure.
func DeriveStockCount(sent, remaining int, unitPrice decimal.Decimal) (sold int, totalSold decimal.Decimal) {
	sold = sent - remaining
	return sold, unitPrice.Mul(decimal.NewFromInt(int64(sold))).Round(2)
}

// ApplyPatch merges a partial update into an existing record and recomputes
// quantitySold and totalSold from the merged values.
func (sc StockCount) ApplyPatch(p StockCountPatch) StockCount {
	if p.QuantitySent != nil {
		sc.QuantitySent = *p.QuantitySent
	}
	if p.QuantityRemaining != nil {
		sc.QuantityRemaining = *p.QuantityRemaining
	}
	if p.UnitPrice != nil {
		sc.UnitPrice = *p.UnitPrice
	}
	sc.QuantitySold, sc.TotalSold = DeriveStockCount(sc.QuantitySent, sc.QuantityRemaining, sc.UnitPrice)
	return sc
}

// consignmentItemRow is the joined shape inventory folding consumes.
type consignmentItemRow struct {
	ProductID     int
	ConsignmentID int
	Quantity      int
	Date          time.Time
	Status        ConsignmentStatus
	Product       Product
}

// foldClientInventory groups consignment items by product, accumulates sent
// quantities, then overlays count history. Products that were shipped but
// never counted report remaining = sent and sold = 0: stock is assumed full
// until a count proves otherwise.
func foldClientInventory(items []consignmentItemRow, counts []StockCount) []ClientInventoryItem {
	index := make(map[int]int, len(items))
	var out []ClientInventoryItem

	for _, it := range items {
		i, ok := index[it.ProductID]
		if !ok {
			i = len(out)
			index[it.ProductID] = i
			out = append(out, ClientInventoryItem{
				ProductID:       it.ProductID,
				ProductName:     it.Product.Name,
				ProductCountry:  it.Product.Country,
				ProductType:     it.Product.Type,
				UnitPrice:       it.Product.UnitPrice.StringFixed(2),
				Volume:          it.Product.Volume,
				Photo:           it.Product.Photo,
				TotalSalesValue: "0.00",
			})
		}
		out[i].TotalSent += it.Quantity
		out[i].Consignments = append(out[i].Consignments, ClientInventoryConsignment{
			ID:           it.ConsignmentID,
			Date:         it.Date,
			Status:       it.Status,
			QuantitySent: it.Quantity,
			SalesValue:   "0.00",
		})
	}

	for _, sc := range counts {
		i, ok := index[sc.ProductID]
		if !ok {
			continue
		}
		out[i].TotalRemaining += sc.QuantityRemaining
		out[i].TotalSold += sc.QuantitySold
		total, _ := decimal.NewFromString(out[i].TotalSalesValue)
		out[i].TotalSalesValue = total.Add(sc.TotalSold).StringFixed(2)

		for j := range out[i].Consignments {
			c := &out[i].Consignments[j]
			if c.ID != sc.ConsignmentID {
				continue
			}
			c.QuantityRemaining += sc.QuantityRemaining
			c.QuantitySold += sc.QuantitySold
			cv, _ := decimal.NewFromString(c.SalesValue)
			c.SalesValue = cv.Add(sc.TotalSold).StringFixed(2)
			break
		}
	}

	// Uncounted products: assume full stock.
	for i := range out {
		if out[i].TotalRemaining == 0 && out[i].TotalSold == 0 {
			out[i].TotalRemaining = out[i].TotalSent
			for j := range out[i].Consignments {
				c := &out[i].Consignments[j]
				if c.QuantityRemaining == 0 && c.QuantitySold == 0 {
					c.QuantityRemaining = c.QuantitySent
				}
			}
		}
	}

	return out
}

// SummarizeInventory totals an inventory listing.
func SummarizeInventory(items []ClientInventoryItem) ClientInventorySummary {
	s := ClientInventorySummary{TotalProducts: len(items)}
	total := decimal.Zero
	for _, it := range items {
		s.TotalSent += it.TotalSent
		s.TotalRemaining += it.TotalRemaining
		s.TotalSold += it.TotalSold
		v, _ := decimal.NewFromString(it.TotalSalesValue)
		total = total.Add(v)
	}
	s.TotalSalesValue = total.StringFixed(2)
	return s
}
