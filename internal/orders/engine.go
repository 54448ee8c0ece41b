// Package orders lists orders for the right audience and moves them through
// their lifecycle.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"go.uber.org/zap"
)

// Roles allowed to change an order's status.
var ProcessorRoles = []models.Role{models.RoleAdmin, models.RoleManager}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionFulfill Action = "fulfill"
)

// Target is the status an action moves an order to.
func (a Action) Target() (models.OrderStatus, bool) {
	switch a {
	case ActionApprove:
		return models.OrderStatusApproved, true
	case ActionReject:
		return models.OrderStatusRejected, true
	case ActionFulfill:
		return models.OrderStatusFulfilled, true
	}
	return "", false
}

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:  {models.OrderStatusApproved, models.OrderStatusRejected},
	models.OrderStatusApproved: {models.OrderStatusFulfilled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type TransitionStore interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ApplyTransition(ctx context.Context, t models.Transition) (*models.Order, error)
}

type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// Engine applies approve, reject and fulfill to single orders.
type Engine struct {
	orders   TransitionStore
	products ProductLookup
	now      func() time.Time
	logger   *zap.Logger
}

func NewEngine(orders TransitionStore, products ProductLookup, logger *zap.Logger) *Engine {
	return &Engine{
		orders:   orders,
		products: products,
		now:      time.Now,
		logger:   logger,
	}
}

// Process dispatches an action by name.
func (e *Engine) Process(ctx context.Context, actor models.Actor, orderID int64, action Action, notes string) (*models.Order, error) {
	switch action {
	case ActionApprove:
		return e.Approve(ctx, actor, orderID, notes)
	case ActionReject:
		return e.Reject(ctx, actor, orderID, notes)
	case ActionFulfill:
		return e.Fulfill(ctx, actor, orderID, notes)
	}
	return nil, apperr.Validationf("Unknown action %q", action)
}

// Approve moves a pending order to approved and takes its quantity from stock.
func (e *Engine) Approve(ctx context.Context, actor models.Actor, orderID int64, notes string) (*models.Order, error) {
	order, err := e.load(ctx, actor, orderID, models.OrderStatusApproved)
	if err != nil {
		return nil, err
	}

	product, err := e.products.GetProduct(ctx, order.ProductID)
	if err != nil {
		return nil, e.translate(err, orderID)
	}
	if product.StockQuantity < order.Quantity {
		return nil, apperr.InsufficientStock()
	}

	return e.apply(ctx, actor, order, models.OrderStatusApproved, notes, order.Quantity)
}

// Reject moves a pending order to rejected. A non-blank reason is required.
func (e *Engine) Reject(ctx context.Context, actor models.Actor, orderID int64, notes string) (*models.Order, error) {
	order, err := e.load(ctx, actor, orderID, models.OrderStatusRejected)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(notes) == "" {
		return nil, apperr.Validation(apperr.MsgReasonRequired)
	}

	return e.apply(ctx, actor, order, models.OrderStatusRejected, notes, 0)
}

// Fulfill marks an approved order as delivered. Stock was already taken at approval.
func (e *Engine) Fulfill(ctx context.Context, actor models.Actor, orderID int64, notes string) (*models.Order, error) {
	order, err := e.load(ctx, actor, orderID, models.OrderStatusFulfilled)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(notes) == "" {
		notes = order.Notes
	}

	return e.apply(ctx, actor, order, models.OrderStatusFulfilled, notes, 0)
}

// load authorizes the actor, fetches the order and checks the transition is legal.
func (e *Engine) load(ctx context.Context, actor models.Actor, orderID int64, to models.OrderStatus) (*models.Order, error) {
	if !actor.Role.In(ProcessorRoles...) {
		return nil, apperr.Forbidden(apperr.MsgForbidden)
	}

	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, e.translate(err, orderID)
	}
	if !CanTransition(order.Status, to) {
		return nil, apperr.InvalidStatef("Order is %s and cannot be %s", order.Status, to)
	}
	return order, nil
}

func (e *Engine) apply(ctx context.Context, actor models.Actor, order *models.Order, to models.OrderStatus, notes string, decrement int) (*models.Order, error) {
	updated, err := e.orders.ApplyTransition(ctx, models.Transition{
		OrderID:     order.ID,
		From:        order.Status,
		To:          to,
		Notes:       notes,
		ActorID:     actor.UserID,
		At:          e.now().UTC(),
		DecrementBy: decrement,
	})
	if err != nil {
		return nil, e.translate(err, order.ID)
	}

	e.logger.Info("order transitioned",
		zap.Int64("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)),
		zap.Int64("actor_id", actor.UserID),
		zap.Int("stock_taken", decrement))
	return updated, nil
}

func (e *Engine) translate(err error, orderID int64) error {
	switch {
	case errors.Is(err, database.ErrOrderNotFound):
		return apperr.NotFound(apperr.MsgOrderNotFound)
	case errors.Is(err, database.ErrProductNotFound):
		return apperr.NotFound(apperr.MsgProductNotFound)
	case errors.Is(err, database.ErrStatusMismatch):
		return apperr.InvalidState("Order was processed by someone else")
	case errors.Is(err, database.ErrInsufficientStock):
		return apperr.InsufficientStock()
	}
	e.logger.Error("order transition failed", zap.Int64("order_id", orderID), zap.Error(err))
	return apperr.Internal(fmt.Errorf("order %d: %w", orderID, err))
}
