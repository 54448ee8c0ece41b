package memstore

import (
	"context"
	"sort"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/shopspring/decimal"
)

func (s *Store) ListCart(ctx context.Context, customerID int64) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.CartItem, 0, len(s.carts[customerID]))
	for productID, line := range s.carts[customerID] {
		item := models.CartItem{
			CustomerID: customerID,
			ProductID:  productID,
			Quantity:   line.quantity,
			CreatedAt:  line.createdAt,
			UpdatedAt:  line.updatedAt,
		}
		if p, ok := s.products[productID]; ok {
			item.ProductName = p.Name
			item.UnitPrice = p.Price
			item.TotalPrice = p.Price.Mul(decimal.NewFromInt(int64(line.quantity)))
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

func (s *Store) AddCartItem(ctx context.Context, customerID, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return database.ErrProductNotFound
	}
	cart, ok := s.carts[customerID]
	if !ok {
		cart = make(map[int64]*cartLine)
		s.carts[customerID] = cart
	}
	now := s.now()
	if line, ok := cart[productID]; ok {
		line.quantity += quantity
		line.updatedAt = now
		return nil
	}
	cart[productID] = &cartLine{quantity: quantity, createdAt: now, updatedAt: now}
	return nil
}

func (s *Store) SetCartItem(ctx context.Context, customerID, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.carts[customerID][productID]
	if !ok {
		return database.ErrProductNotFound
	}
	line.quantity = quantity
	line.updatedAt = s.now()
	return nil
}

func (s *Store) RemoveCartItem(ctx context.Context, customerID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[customerID][productID]; !ok {
		return database.ErrProductNotFound
	}
	delete(s.carts[customerID], productID)
	return nil
}

func (s *Store) Checkout(ctx context.Context, customerID int64) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[customerID]
	if len(cart) == 0 {
		return nil, database.ErrCartEmpty
	}

	productIDs := make([]int64, 0, len(cart))
	for productID := range cart {
		if _, ok := s.products[productID]; !ok {
			return nil, database.ErrProductNotFound
		}
		productIDs = append(productIDs, productID)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	orders := make([]models.Order, 0, len(productIDs))
	for _, productID := range productIDs {
		line := cart[productID]
		orders = append(orders, s.insertOrder(models.Order{
			CustomerID: customerID,
			ProductID:  productID,
			Quantity:   line.quantity,
			UnitPrice:  s.products[productID].Price,
		}))
	}
	delete(s.carts, customerID)
	return orders, nil
}
