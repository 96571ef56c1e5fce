package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type WineType string

const (
	Tinto       WineType = "tinto"
	Branco      WineType = "branco"
	Rose        WineType = "rose"
	Espumante   WineType = "espumante"
	Fortificado WineType = "fortificado"
)

// ValidWineType reports whether t is one of the known wine types.
func ValidWineType(t WineType) bool {
	switch t {
	case Tinto, Branco, Rose, Espumante, Fortificado:
		return true
	}
	return false
}

type Client struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CNPJ        string `json:"cnpj"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	ContactName string `json:"contact_name"`
	IsActive    bool   `json:"is_active"`
}

type Product struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Country   string          `json:"country"`
	Type      WineType        `json:"type"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Volume    string          `json:"volume"`
	Photo     *string         `json:"photo,omitempty"`
}

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// User is a plain staff record. There is no authentication layer; users exist
// so counts and consignments have someone to attribute.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalConsigned string `json:"total_consigned"`
	TotalSales     string `json:"total_sales"`
	ActiveClients  int    `json:"active_clients"`
	TotalProducts  int    `json:"total_products"`
}
