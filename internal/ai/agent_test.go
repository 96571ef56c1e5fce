package ai

import (
	"errors"
	"testing"

	"consignment-manager/internal/core"
)

func TestValidateSheet(t *testing.T) {
	catalog := []core.Product{
		{Name: "Reserva Malbec"},
		{Name: "Brut Rosé"},
	}

	t.Run("matched lines pass", func(t *testing.T) {
		sheet := &CountSheet{Lines: []CountSheetLine{
			{ProductName: "Reserva Malbec", QuantityRemaining: 5},
			{ProductName: "brut rosé", QuantityRemaining: 0},
		}}
		if err := validateSheet(sheet, catalog); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		sheet := &CountSheet{Lines: []CountSheetLine{
			{ProductName: "Cabernet Fantasma", QuantityRemaining: 3},
		}}
		err := validateSheet(sheet, catalog)
		if !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		sheet := &CountSheet{Lines: []CountSheetLine{
			{ProductName: "Reserva Malbec", QuantityRemaining: -1},
		}}
		err := validateSheet(sheet, catalog)
		if !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
