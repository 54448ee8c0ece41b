package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected,
		OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the model for the 'orders' table.
// One order references exactly one product; checkout creates one order per cart line.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	CustomerID    int64           `json:"customer_id" db:"customer_id"`
	ProductID     int64           `json:"product_id" db:"product_id"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"` // Price at the time of purchase
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	Notes         string          `json:"notes" db:"notes"`
	ProcessedBy   *int64          `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt     time.Time       `json:"purchase_date" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	// Joins (Not in DB table, populated by the store)
	CustomerName string `json:"customer_name,omitempty" db:"-"`
	ProductName  string `json:"product_name,omitempty" db:"-"`
	Category     string `json:"category,omitempty" db:"-"`

	// Populated only on the manager pending listing.
	StockAvailable *int `json:"stock_available,omitempty" db:"-"`
}

// NewOrderLine is what checkout hands to the store for each cart line.
type NewOrderLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderFilter selects orders for a listing. CustomerID == 0 means every customer.
type OrderFilter struct {
	Status     OrderStatus
	CustomerID int64
}

// Transition is the guarded status change the store applies atomically.
type Transition struct {
	OrderID     int64
	From        OrderStatus
	To          OrderStatus
	Notes       string
	ActorID     int64
	At          time.Time
	DecrementBy int // stock to take from the order's product; 0 leaves stock alone
}
