package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"go.uber.org/zap"
)

// Roles allowed to read manager-scoped order listings.
var ManagerRoles = []models.Role{models.RoleAdmin, models.RoleManager}

// Scope says whose orders a listing covers.
type Scope string

const (
	ScopeDefault Scope = ""
	ScopeOwn     Scope = "own"
	ScopeManager Scope = "manager"
)

type ListRequest struct {
	Status models.OrderStatus
	Scope  Scope
}

type OrderReader interface {
	GetOrderByTransaction(ctx context.Context, transactionID string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
}

// StockLookup resolves current stock for a batch of products.
type StockLookup interface {
	StockLevels(ctx context.Context, productIDs []int64) (map[int64]int, error)
}

type QueryService struct {
	orders OrderReader
	stock  StockLookup
	logger *zap.Logger
}

func NewQueryService(orders OrderReader, stock StockLookup, logger *zap.Logger) *QueryService {
	return &QueryService{orders: orders, stock: stock, logger: logger}
}

// List returns orders most recent first. The role check runs before the store is touched.
func (q *QueryService) List(ctx context.Context, actor models.Actor, req ListRequest) ([]models.Order, error) {
	filter, err := authorizeListing(actor, req)
	if err != nil {
		return nil, err
	}

	orders, err := q.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list orders: %w", err))
	}
	return orders, nil
}

func authorizeListing(actor models.Actor, req ListRequest) (models.OrderFilter, error) {
	scope := req.Scope
	if scope == ScopeDefault {
		scope = ScopeOwn
		if actor.Role.In(ManagerRoles...) {
			scope = ScopeManager
		}
	}

	var filter models.OrderFilter
	switch scope {
	case ScopeManager:
		if !actor.Role.In(ManagerRoles...) {
			return filter, apperr.Forbidden(apperr.MsgForbidden)
		}
	case ScopeOwn:
		if !actor.Role.Valid() {
			return filter, apperr.Forbidden(apperr.MsgForbidden)
		}
		filter.CustomerID = actor.UserID
	default:
		return filter, apperr.Validationf("Unknown order scope %q", scope)
	}

	if req.Status != "" && !req.Status.Valid() {
		return filter, apperr.Validationf("Unknown order status %q", req.Status)
	}
	filter.Status = req.Status
	return filter, nil
}

// Pending lists pending orders for managers, each carrying the product's current stock.
func (q *QueryService) Pending(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	orders, err := q.List(ctx, actor, ListRequest{Status: models.OrderStatusPending, Scope: ScopeManager})
	if err != nil {
		return nil, err
	}

	productIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		productIDs = append(productIDs, o.ProductID)
	}
	levels, err := q.stock.StockLevels(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if stock, ok := levels[orders[i].ProductID]; ok {
			available := stock
			orders[i].StockAvailable = &available
		} else {
			q.logger.Warn("pending order references missing product",
				zap.Int64("order_id", orders[i].ID),
				zap.Int64("product_id", orders[i].ProductID))
		}
	}
	return orders, nil
}

// ByTransaction finds an order by its transaction id. Customers only see their own.
func (q *QueryService) ByTransaction(ctx context.Context, actor models.Actor, transactionID string) (*models.Order, error) {
	if !actor.Role.Valid() {
		return nil, apperr.Forbidden(apperr.MsgForbidden)
	}

	order, err := q.orders.GetOrderByTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			return nil, apperr.NotFound(apperr.MsgOrderNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("get order by transaction: %w", err))
	}

	if !actor.Role.In(ManagerRoles...) && order.CustomerID != actor.UserID {
		return nil, apperr.NotFound(apperr.MsgOrderNotFound)
	}
	return order, nil
}

// MergeOrders combines a generic listing with a more specific one (typically
// pending orders carrying stock_available). Orders are deduplicated by ID and
// the specific record wins. The result is most recent first.
func MergeOrders(general, specific []models.Order) []models.Order {
	byID := make(map[int64]int, len(general)+len(specific))
	merged := make([]models.Order, 0, len(general)+len(specific))

	for _, o := range general {
		if idx, ok := byID[o.ID]; ok {
			merged[idx] = o
			continue
		}
		byID[o.ID] = len(merged)
		merged = append(merged, o)
	}
	for _, o := range specific {
		if idx, ok := byID[o.ID]; ok {
			merged[idx] = o
			continue
		}
		byID[o.ID] = len(merged)
		merged = append(merged, o)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}
