// Package memstore is an in-process implementation of the store contracts.
// It backs the demo mode and the service tests. A single mutex guards every
// read-modify-write, which gives ApplyTransition the same all-or-nothing
// behaviour as the MySQL transaction.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
)

type cartLine struct {
	quantity  int
	createdAt time.Time
	updatedAt time.Time
}

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users    map[int64]*models.User
	products map[int64]*models.Product
	orders   map[int64]*models.Order
	carts    map[int64]map[int64]*cartLine
	tickets  map[int64]*models.SupportTicket
	reviews  []*models.Review

	nextUserID    int64
	nextProductID int64
	nextOrderID   int64
	nextTicketID  int64
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.ReviewStore = (*Store)(nil)
)

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]*models.User),
		products: make(map[int64]*models.Product),
		orders:   make(map[int64]*models.Order),
		carts:    make(map[int64]map[int64]*cartLine),
		tickets:  make(map[int64]*models.SupportTicket),
	}
}

// SetClock replaces the time source. Tests use it to get distinct purchase dates.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) decorateOrder(o *models.Order) models.Order {
	out := *o
	if u, ok := s.users[o.CustomerID]; ok {
		out.CustomerName = u.DisplayName()
	}
	if p, ok := s.products[o.ProductID]; ok {
		out.ProductName = p.Name
		out.Category = p.Category
	}
	return out
}

func (s *Store) decorateTicket(t *models.SupportTicket) models.SupportTicket {
	out := *t
	if u, ok := s.users[t.CustomerID]; ok {
		out.CustomerName = u.DisplayName()
	}
	if t.ProductID != nil {
		if p, ok := s.products[*t.ProductID]; ok {
			out.ProductName = p.Name
		}
	}
	return out
}

func sortOrdersNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
