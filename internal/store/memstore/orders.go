package memstore

import (
	"context"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddOrder inserts o with a fresh ID. Missing status, transaction id and
// total are filled in the way checkout would fill them.
func (s *Store) AddOrder(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertOrder(o)
}

func (s *Store) insertOrder(o models.Order) models.Order {
	s.nextOrderID++
	o.ID = s.nextOrderID
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.TransactionID == "" {
		o.TransactionID = uuid.NewString()
	}
	if o.TotalAmount.IsZero() {
		o.TotalAmount = o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
	}
	now := s.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	stored := o
	s.orders[o.ID] = &stored
	return s.decorateOrder(&stored)
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	out := s.decorateOrder(o)
	return &out, nil
}

func (s *Store) GetOrderByTransaction(ctx context.Context, transactionID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.TransactionID == transactionID {
			out := s.decorateOrder(o)
			return &out, nil
		}
	}
	return nil, database.ErrOrderNotFound
}

func (s *Store) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0)
	for _, o := range s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		orders = append(orders, s.decorateOrder(o))
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

func reservesStock(status models.OrderStatus) bool {
	return status == models.OrderStatusPending || status == models.OrderStatusApproved
}

func (s *Store) PendingQuantity(ctx context.Context, productID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, o := range s.orders {
		if o.ProductID == productID && reservesStock(o.Status) {
			total += o.Quantity
		}
	}
	return total, nil
}

func (s *Store) PendingQuantities(ctx context.Context) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[int64]int)
	for _, o := range s.orders {
		if reservesStock(o.Status) {
			totals[o.ProductID] += o.Quantity
		}
	}
	return totals, nil
}

func (s *Store) ApplyTransition(ctx context.Context, t models.Transition) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[t.OrderID]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	if o.Status != t.From {
		return nil, database.ErrStatusMismatch
	}

	if t.DecrementBy > 0 {
		p, ok := s.products[o.ProductID]
		if !ok {
			return nil, database.ErrProductNotFound
		}
		if p.StockQuantity < t.DecrementBy {
			return nil, database.ErrInsufficientStock
		}
		p.StockQuantity -= t.DecrementBy
		p.UpdatedAt = t.At
	}

	actor := t.ActorID
	at := t.At
	o.Status = t.To
	o.Notes = t.Notes
	o.ProcessedBy = &actor
	o.ProcessedAt = &at
	o.UpdatedAt = t.At

	out := s.decorateOrder(o)
	return &out, nil
}
