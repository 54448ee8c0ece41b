// Package cart manages a customer's basket and turns it into pending orders.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// Summary is the cart as the storefront renders it.
type Summary struct {
	Items      []models.CartItem `json:"items"`
	ItemCount  int               `json:"item_count"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
}

type Service struct {
	carts    store.CartStore
	products ProductLookup
	logger   *zap.Logger
}

func NewService(carts store.CartStore, products ProductLookup, logger *zap.Logger) *Service {
	return &Service{carts: carts, products: products, logger: logger}
}

func (s *Service) Get(ctx context.Context, actor models.Actor) (*Summary, error) {
	items, err := s.carts.ListCart(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list cart: %w", err))
	}
	summary := &Summary{Items: items, GrandTotal: decimal.Zero}
	for _, item := range items {
		summary.ItemCount += item.Quantity
		summary.GrandTotal = summary.GrandTotal.Add(item.TotalPrice)
	}
	return summary, nil
}

// Add puts quantity more of a product in the cart. Stock is only checked at
// approval, so a customer may order more than is on the shelf right now.
func (s *Service) Add(ctx context.Context, actor models.Actor, productID int64, quantity int) error {
	if quantity < 1 {
		return apperr.Validation("Quantity must be at least 1")
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return translate(err)
	}
	if !product.IsActive {
		return apperr.Validation("Product is not available")
	}
	if err := s.carts.AddCartItem(ctx, actor.UserID, productID, quantity); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Service) Set(ctx context.Context, actor models.Actor, productID int64, quantity int) error {
	if quantity < 1 {
		return apperr.Validation("Quantity must be at least 1")
	}
	if err := s.carts.SetCartItem(ctx, actor.UserID, productID, quantity); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, actor models.Actor, productID int64) error {
	if err := s.carts.RemoveCartItem(ctx, actor.UserID, productID); err != nil {
		return translate(err)
	}
	return nil
}

// Checkout creates one pending order per cart line and empties the cart.
func (s *Service) Checkout(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	orders, err := s.carts.Checkout(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, database.ErrCartEmpty) {
			return nil, apperr.Validation("Your cart is empty")
		}
		return nil, translate(err)
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	s.logger.Info("checkout completed",
		zap.Int64("customer_id", actor.UserID),
		zap.Int("orders", len(orders)),
		zap.String("total", total.StringFixed(2)))
	return orders, nil
}

func translate(err error) error {
	if errors.Is(err, database.ErrProductNotFound) {
		return apperr.NotFound(apperr.MsgProductNotFound)
	}
	return apperr.Internal(err)
}
