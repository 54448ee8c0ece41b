// Package store declares the persistence contracts the services depend on.
// mysqlstore, mongostore and memstore provide the implementations.
package store

import (
	"context"

	"github.com/01moynul/storefront-fulfillment/internal/models"
)

type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// StockByIDs returns current stock keyed by product id in one lookup.
	// Unknown ids are absent from the map.
	StockByIDs(ctx context.Context, ids []int64) (map[int64]int, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	// UpsertProducts inserts or updates by slug and returns the number of rows written.
	UpsertProducts(ctx context.Context, products []models.Product) (int, error)
	// PurgeProducts clears the catalog before a reload. Products that orders
	// still reference are deactivated with zero stock instead of deleted.
	PurgeProducts(ctx context.Context) error
}

type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByTransaction(ctx context.Context, transactionID string) (*models.Order, error)
	// ListOrders returns matching orders, most recent purchase first.
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// PendingQuantity sums quantities of pending and approved orders for one product.
	PendingQuantity(ctx context.Context, productID int64) (int, error)
	// PendingQuantities is PendingQuantity for every product that has any.
	PendingQuantities(ctx context.Context) (map[int64]int, error)
	// ApplyTransition moves an order from t.From to t.To and, when t.DecrementBy > 0,
	// takes that many units from the product's stock, all or nothing.
	// It returns database.ErrOrderNotFound, database.ErrStatusMismatch or
	// database.ErrInsufficientStock when a guard fails.
	ApplyTransition(ctx context.Context, t models.Transition) (*models.Order, error)
}

type CartStore interface {
	ListCart(ctx context.Context, customerID int64) ([]models.CartItem, error)
	// AddCartItem adds quantity to the line, creating it when missing.
	AddCartItem(ctx context.Context, customerID, productID int64, quantity int) error
	// SetCartItem replaces the line quantity. Returns database.ErrProductNotFound
	// when the product is not in the cart.
	SetCartItem(ctx context.Context, customerID, productID int64, quantity int) error
	RemoveCartItem(ctx context.Context, customerID, productID int64) error
	// Checkout turns every cart line into a pending order priced at the current
	// product price and empties the cart. Returns database.ErrCartEmpty when
	// there is nothing to order.
	Checkout(ctx context.Context, customerID int64) ([]models.Order, error)
}

type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	// ListReviews returns matching reviews, newest first.
	ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error)
	SetModerated(ctx context.Context, id string, moderated bool) (*models.Review, error)
}

type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) error
	GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error)
	// ListTickets returns matching tickets, newest first.
	ListTickets(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, error)
	// UpdateTicket sets status and note in one guarded write. A blank note keeps
	// the stored one. Closed tickets are left untouched and yield
	// database.ErrTicketClosed.
	UpdateTicket(ctx context.Context, id int64, status models.TicketStatus, note string) (*models.SupportTicket, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Store bundles the relational stores. Reviews are wired separately since
// they may live in a different backend.
type Store interface {
	ProductStore
	OrderStore
	CartStore
	TicketStore
	UserStore
}
