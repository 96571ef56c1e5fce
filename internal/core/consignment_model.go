package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConsignmentStatus string

const (
	ConsignmentPending   ConsignmentStatus = "pending"
	ConsignmentDelivered ConsignmentStatus = "delivered"
	ConsignmentCompleted ConsignmentStatus = "completed"
)

// ValidConsignmentStatus reports whether s is a known lifecycle status.
func ValidConsignmentStatus(s ConsignmentStatus) bool {
	switch s {
	case ConsignmentPending, ConsignmentDelivered, ConsignmentCompleted:
		return true
	}
	return false
}

// Consignment is a shipment of wine to a client. TotalValue is the sum of its
// line items, fixed at creation — never recomputed from current catalog prices.
type Consignment struct {
	ID         int               `json:"id"`
	ClientID   int               `json:"client_id"`
	Date       time.Time         `json:"date"`
	Status     ConsignmentStatus `json:"status"`
	TotalValue decimal.Decimal   `json:"total_value"`
}

// ConsignmentItem carries the unit price at time of shipment (a snapshot,
// independent of the product's current price).
type ConsignmentItem struct {
	ID            int             `json:"id"`
	ConsignmentID int             `json:"consignment_id"`
	ProductID     int             `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

type ConsignmentItemWithProduct struct {
	ConsignmentItem
	Product Product `json:"product"`
}

type ConsignmentWithDetails struct {
	Consignment
	Client Client                       `json:"client"`
	Items  []ConsignmentItemWithProduct `json:"items"`
}

// ConsignmentItemInput is one line of a new consignment. UnitPrice may be nil,
// in which case the product's current catalog price is snapshotted.
type ConsignmentItemInput struct {
	ProductID int              `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// ConsignmentFilter narrows List results. Zero values mean "no filter".
type ConsignmentFilter struct {
	Search    string // matches client name or CNPJ, case-insensitive
	Status    ConsignmentStatus
	StartDate *time.Time
	EndDate   *time.Time
	ClientID  int
}
