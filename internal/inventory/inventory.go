// Package inventory derives per-product stock status from raw stock and
// the quantities held by undelivered orders.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
)

// LowStockThreshold is the stock level at or below which a product is low.
const LowStockThreshold = 5

// ProductSource is the catalog side of the reader.
type ProductSource interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	StockByIDs(ctx context.Context, ids []int64) (map[int64]int, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

// DemandSource reports quantities of pending and approved orders.
type DemandSource interface {
	PendingQuantity(ctx context.Context, productID int64) (int, error)
	PendingQuantities(ctx context.Context) (map[int64]int, error)
}

type Reader struct {
	products ProductSource
	demand   DemandSource
}

func NewReader(products ProductSource, demand DemandSource) *Reader {
	return &Reader{products: products, demand: demand}
}

// Derive computes the view for a product given its outstanding demand.
func Derive(p models.Product, pending int) models.InventoryView {
	available := p.StockQuantity - pending
	return models.InventoryView{
		ProductID:             p.ID,
		ProductName:           p.Name,
		Category:              p.Category,
		Price:                 p.Price,
		IsActive:              p.IsActive,
		CurrentStock:          p.StockQuantity,
		PendingOrders:         pending,
		AvailableAfterPending: available,
		IsOutOfStock:          p.StockQuantity == 0,
		IsLowStock:            (p.StockQuantity > 0 && p.StockQuantity <= LowStockThreshold) || available <= 0,
	}
}

// Get returns the stock view of one product.
func (r *Reader) Get(ctx context.Context, productID int64) (models.InventoryView, error) {
	p, err := r.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			return models.InventoryView{}, apperr.NotFound(apperr.MsgProductNotFound)
		}
		return models.InventoryView{}, apperr.Internal(fmt.Errorf("load product %d: %w", productID, err))
	}

	pending, err := r.demand.PendingQuantity(ctx, productID)
	if err != nil {
		return models.InventoryView{}, apperr.Internal(fmt.Errorf("pending quantity for %d: %w", productID, err))
	}
	return Derive(*p, pending), nil
}

// List returns the stock view of every product in catalog order.
func (r *Reader) List(ctx context.Context) ([]models.InventoryView, error) {
	products, err := r.products.ListProducts(ctx, models.ProductFilter{})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list products: %w", err))
	}
	demand, err := r.demand.PendingQuantities(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("pending quantities: %w", err))
	}

	views := make([]models.InventoryView, 0, len(products))
	for _, p := range products {
		views = append(views, Derive(p, demand[p.ID]))
	}
	return views, nil
}

// StockLevels maps product id to current stock for the given products.
// Unknown ids are omitted.
func (r *Reader) StockLevels(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	if len(productIDs) == 0 {
		return map[int64]int{}, nil
	}
	levels, err := r.products.StockByIDs(ctx, productIDs)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("stock levels: %w", err))
	}
	return levels, nil
}
