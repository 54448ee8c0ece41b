// Package badges computes the dashboard counters shown next to the manager
// navigation. Counters are hints: a failing source zeroes its own counter
// and never blocks the others.
package badges

import (
	"context"
	"fmt"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Roles allowed to read the counters.
var ViewerRoles = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleSupport}

type OrderLister interface {
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
}

type ProductLister interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

type ReviewLister interface {
	ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error)
}

type TicketLister interface {
	ListTickets(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, error)
}

type Reporter struct {
	orders   OrderLister
	products ProductLister
	reviews  ReviewLister
	tickets  TicketLister
	logger   *zap.Logger
}

func NewReporter(orders OrderLister, products ProductLister, reviews ReviewLister, tickets TicketLister, logger *zap.Logger) *Reporter {
	return &Reporter{
		orders:   orders,
		products: products,
		reviews:  reviews,
		tickets:  tickets,
		logger:   logger,
	}
}

// Counts runs the four listings concurrently. Only the role check can fail the call.
func (r *Reporter) Counts(ctx context.Context, actor models.Actor) (models.BadgeCounts, error) {
	var counts models.BadgeCounts
	if !actor.Role.In(ViewerRoles...) {
		return counts, apperr.Forbidden(apperr.MsgForbidden)
	}

	var g errgroup.Group
	r.count(ctx, &g, "pending_orders", &counts.PendingOrders, r.pendingOrders)
	r.count(ctx, &g, "out_of_stock", &counts.OutOfStock, r.outOfStock)
	r.count(ctx, &g, "unmoderated_reviews", &counts.UnmoderatedReviews, r.unmoderatedReviews)
	r.count(ctx, &g, "open_tickets", &counts.OpenTickets, r.openTickets)
	_ = g.Wait() // counters never return errors

	return counts, nil
}

// count schedules one counter. Failures and panics are logged and leave dst at zero.
func (r *Reporter) count(ctx context.Context, g *errgroup.Group, name string, dst *int, fn func(context.Context) (int, error)) {
	g.Go(func() error {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("badge counter panicked",
					zap.String("counter", name),
					zap.String("panic", fmt.Sprint(rec)))
			}
		}()

		n, err := fn(ctx)
		if err != nil {
			r.logger.Warn("badge counter failed, reporting 0",
				zap.String("counter", name),
				zap.Error(err))
			return nil
		}
		*dst = n
		return nil
	})
}

func (r *Reporter) pendingOrders(ctx context.Context) (int, error) {
	orders, err := r.orders.ListOrders(ctx, models.OrderFilter{Status: models.OrderStatusPending})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			n++
		}
	}
	return n, nil
}

func (r *Reporter) outOfStock(ctx context.Context) (int, error) {
	products, err := r.products.ListProducts(ctx, models.ProductFilter{ActiveOnly: true})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range products {
		if p.StockQuantity == 0 {
			n++
		}
	}
	return n, nil
}

func (r *Reporter) unmoderatedReviews(ctx context.Context) (int, error) {
	reviews, err := r.reviews.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rv := range reviews {
		if !rv.Moderated {
			n++
		}
	}
	return n, nil
}

func (r *Reporter) openTickets(ctx context.Context) (int, error) {
	tickets, err := r.tickets.ListTickets(ctx, models.TicketFilter{})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tickets {
		if t.Status.IsOpen() {
			n++
		}
	}
	return n, nil
}
