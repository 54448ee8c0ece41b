package models

import "github.com/shopspring/decimal"

// InventoryView is the derived stock status of one product.
type InventoryView struct {
	ProductID             int64           `json:"product_id"`
	ProductName           string          `json:"product_name"`
	Category              string          `json:"category"`
	Price                 decimal.Decimal `json:"price"`
	IsActive              bool            `json:"is_active"`
	CurrentStock          int             `json:"current_stock"`
	PendingOrders         int             `json:"pending_orders"`
	AvailableAfterPending int             `json:"available_after_pending"`
	IsLowStock            bool            `json:"is_low_stock"`
	IsOutOfStock          bool            `json:"is_out_of_stock"`
}

// BadgeCounts are the dashboard counters shown in the manager navigation.
type BadgeCounts struct {
	PendingOrders      int `json:"pending_orders"`
	OutOfStock         int `json:"out_of_stock"`
	UnmoderatedReviews int `json:"unmoderated_reviews"`
	OpenTickets        int `json:"open_tickets"`
}
