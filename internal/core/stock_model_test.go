package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSoldQuantity(t *testing.T) {
	tests := []struct {
		name    string
		before  int
		counted int
		want    int
	}{
		{"normal sale", 20, 13, 7},
		{"nothing sold", 15, 15, 0},
		{"everything sold", 10, 0, 10},
		{"count above ledger clamps to zero", 5, 8, 0},
		{"empty ledger", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SoldQuantity(tt.before, tt.counted); got != tt.want {
				t.Errorf("SoldQuantity(%d, %d) = %d, want %d", tt.before, tt.counted, got, tt.want)
			}
		})
	}
}

func TestSalesValue(t *testing.T) {
	price := decimal.RequireFromString("45.90")
	if got := SalesValue(7, price).StringFixed(2); got != "321.30" {
		t.Errorf("SalesValue(7, 45.90) = %s, want 321.30", got)
	}
	if got := SalesValue(0, price).StringFixed(2); got != "0.00" {
		t.Errorf("SalesValue(0, 45.90) = %s, want 0.00", got)
	}
	// Rounding at the half-cent.
	if got := SalesValue(3, decimal.RequireFromString("33.335")).StringFixed(2); got != "100.01" {
		t.Errorf("SalesValue(3, 33.335) = %s, want 100.01", got)
	}
}

func TestDeriveStockCount(t *testing.T) {
	price := decimal.RequireFromString("80.00")

	sold, total := DeriveStockCount(24, 10, price)
	if sold != 14 {
		t.Errorf("sold = %d, want 14", sold)
	}
	if total.StringFixed(2) != "1120.00" {
		t.Errorf("total = %s, want 1120.00", total.StringFixed(2))
	}

	// Historical records are unclamped: an anomalous count stays visible.
	sold, total = DeriveStockCount(10, 12, price)
	if sold != -2 {
		t.Errorf("sold = %d, want -2", sold)
	}
	if total.StringFixed(2) != "-160.00" {
		t.Errorf("total = %s, want -160.00", total.StringFixed(2))
	}
}

func TestStockCount_ApplyPatch(t *testing.T) {
	base := StockCount{
		QuantitySent:      24,
		QuantityRemaining: 10,
		QuantitySold:      14,
		UnitPrice:         decimal.RequireFromString("50.00"),
		TotalSold:         decimal.RequireFromString("700.00"),
	}

	t.Run("remaining only recomputes derived fields", func(t *testing.T) {
		remaining := 4
		got := base.ApplyPatch(StockCountPatch{QuantityRemaining: &remaining})
		if got.QuantitySent != 24 || got.QuantityRemaining != 4 {
			t.Fatalf("merged quantities wrong: %+v", got)
		}
		if got.QuantitySold != 20 {
			t.Errorf("sold = %d, want 20", got.QuantitySold)
		}
		if got.TotalSold.StringFixed(2) != "1000.00" {
			t.Errorf("total = %s, want 1000.00", got.TotalSold.StringFixed(2))
		}
	})

	t.Run("price change revalues the existing quantities", func(t *testing.T) {
		price := decimal.RequireFromString("60.00")
		got := base.ApplyPatch(StockCountPatch{UnitPrice: &price})
		if got.QuantitySold != 14 {
			t.Errorf("sold = %d, want 14", got.QuantitySold)
		}
		if got.TotalSold.StringFixed(2) != "840.00" {
			t.Errorf("total = %s, want 840.00", got.TotalSold.StringFixed(2))
		}
	})

	t.Run("empty patch keeps values but recomputes", func(t *testing.T) {
		got := base.ApplyPatch(StockCountPatch{})
		if got.QuantitySold != 14 || got.TotalSold.StringFixed(2) != "700.00" {
			t.Errorf("unexpected result: %+v", got)
		}
	})
}

func testProduct(id int, name, price string) Product {
	return Product{
		ID:        id,
		Name:      name,
		Country:   "Chile",
		Type:      Tinto,
		UnitPrice: decimal.RequireFromString(price),
		Volume:    "750ml",
	}
}

func TestFoldClientInventory(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	items := []consignmentItemRow{
		{ProductID: 1, ConsignmentID: 10, Quantity: 12, Date: day1, Status: ConsignmentDelivered, Product: testProduct(1, "Reserva Malbec", "89.90")},
		{ProductID: 1, ConsignmentID: 11, Quantity: 6, Date: day2, Status: ConsignmentDelivered, Product: testProduct(1, "Reserva Malbec", "89.90")},
		{ProductID: 2, ConsignmentID: 10, Quantity: 24, Date: day1, Status: ConsignmentDelivered, Product: testProduct(2, "Brut Rosé", "59.00")},
	}
	counts := []StockCount{
		{ProductID: 1, ConsignmentID: 10, QuantitySent: 12, QuantityRemaining: 5, QuantitySold: 7,
			UnitPrice: decimal.RequireFromString("89.90"), TotalSold: decimal.RequireFromString("629.30")},
	}

	out := foldClientInventory(items, counts)
	if len(out) != 2 {
		t.Fatalf("expected 2 products, got %d", len(out))
	}

	malbec := out[0]
	if malbec.ProductID != 1 {
		t.Fatalf("expected product 1 first, got %d", malbec.ProductID)
	}
	if malbec.TotalSent != 18 {
		t.Errorf("malbec sent = %d, want 18", malbec.TotalSent)
	}
	if malbec.TotalRemaining != 5 || malbec.TotalSold != 7 {
		t.Errorf("malbec remaining/sold = %d/%d, want 5/7", malbec.TotalRemaining, malbec.TotalSold)
	}
	if malbec.TotalSalesValue != "629.30" {
		t.Errorf("malbec sales value = %s, want 629.30", malbec.TotalSalesValue)
	}
	if len(malbec.Consignments) != 2 {
		t.Fatalf("malbec consignments = %d, want 2", len(malbec.Consignments))
	}
	if malbec.Consignments[0].QuantitySold != 7 {
		t.Errorf("counted consignment sold = %d, want 7", malbec.Consignments[0].QuantitySold)
	}

	// Product 2 was never counted: full stock assumed.
	rose := out[1]
	if rose.TotalRemaining != 24 || rose.TotalSold != 0 {
		t.Errorf("uncounted product remaining/sold = %d/%d, want 24/0", rose.TotalRemaining, rose.TotalSold)
	}
	if rose.Consignments[0].QuantityRemaining != 24 {
		t.Errorf("uncounted consignment remaining = %d, want 24", rose.Consignments[0].QuantityRemaining)
	}
	if rose.TotalSalesValue != "0.00" {
		t.Errorf("uncounted sales value = %s, want 0.00", rose.TotalSalesValue)
	}
}

func TestSummarizeInventory(t *testing.T) {
	items := []ClientInventoryItem{
		{TotalSent: 18, TotalRemaining: 5, TotalSold: 7, TotalSalesValue: "629.30"},
		{TotalSent: 24, TotalRemaining: 24, TotalSold: 0, TotalSalesValue: "0.00"},
	}
	s := SummarizeInventory(items)
	if s.TotalProducts != 2 {
		t.Errorf("products = %d, want 2", s.TotalProducts)
	}
	if s.TotalSent != 42 || s.TotalRemaining != 29 || s.TotalSold != 7 {
		t.Errorf("totals = %d/%d/%d, want 42/29/7", s.TotalSent, s.TotalRemaining, s.TotalSold)
	}
	if s.TotalSalesValue != "629.30" {
		t.Errorf("sales value = %s, want 629.30", s.TotalSalesValue)
	}

	empty := SummarizeInventory(nil)
	if empty.TotalProducts != 0 || empty.TotalSalesValue != "0.00" {
		t.Errorf("empty summary = %+v", empty)
	}
}
