package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem defines the struct for the 'cart_items' table.
// UnitPrice, TotalPrice and ProductName are joined from products on read.
type CartItem struct {
	CustomerID  int64           `json:"customer_id" db:"customer_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"-"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"-"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
