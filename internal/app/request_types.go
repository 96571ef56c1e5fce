package app

// ProcessCountRequest carries one real-time count against the live ledger.
type ProcessCountRequest struct {
	ClientID        int `json:"client_id"`
	ProductID       int `json:"product_id"`
	QuantityCounted int `json:"counted_quantity"`
}

// MinimumAlertRequest sets the low-stock threshold for a (client, product) pair.
type MinimumAlertRequest struct {
	ClientID     int `json:"client_id"`
	ProductID    int `json:"product_id"`
	MinimumAlert int `json:"minimum_alert"`
}

// ParseCountSheetRequest carries a free-text count report for AI parsing.
type ParseCountSheetRequest struct {
	ClientID int    `json:"client_id"`
	Text     string `json:"text"`
}
