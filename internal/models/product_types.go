package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table.
// Price is stored without the currency prefix the catalog CSV carries.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Slug          string          `json:"slug" db:"slug"`
	Category      string          `json:"category" db:"category"`
	Brand         string          `json:"brand" db:"brand"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	Rating        float64         `json:"rating" db:"rating"`
	Description   string          `json:"description" db:"description"`
	ImageURL      string          `json:"image_url,omitempty" db:"image_url"`
	IsActive      bool            `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductFilter narrows catalog listings. Zero values mean "no filter".
type ProductFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
