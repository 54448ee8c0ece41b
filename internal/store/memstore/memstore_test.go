package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickingClock() func() time.Time {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var n int
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
}

func newStore() *Store {
	s := New()
	s.SetClock(tickingClock())
	return s
}

func TestApplyTransitionDecrementsStockOnce(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	p := s.AddProduct(models.Product{Name: "Kettle", Slug: "kettle", StockQuantity: 10, Price: decimal.NewFromInt(20)})
	o := s.AddOrder(models.Order{CustomerID: 1, ProductID: p.ID, Quantity: 4, UnitPrice: p.Price})

	approved, err := s.ApplyTransition(ctx, models.Transition{
		OrderID: o.ID, From: models.OrderStatusPending, To: models.OrderStatusApproved,
		Notes: "ok", ActorID: 9, At: time.Now(), DecrementBy: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusApproved, approved.Status)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, int64(9), *approved.ProcessedBy)

	_, err = s.ApplyTransition(ctx, models.Transition{
		OrderID: o.ID, From: models.OrderStatusPending, To: models.OrderStatusApproved, DecrementBy: 4,
	})
	assert.ErrorIs(t, err, database.ErrStatusMismatch)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.StockQuantity)
}

func TestApplyTransitionLeavesStateOnInsufficientStock(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	p := s.AddProduct(models.Product{Name: "Lamp", Slug: "lamp", StockQuantity: 3})
	o := s.AddOrder(models.Order{CustomerID: 1, ProductID: p.ID, Quantity: 5})

	_, err := s.ApplyTransition(ctx, models.Transition{
		OrderID: o.ID, From: models.OrderStatusPending, To: models.OrderStatusApproved, DecrementBy: 5,
	})
	assert.ErrorIs(t, err, database.ErrInsufficientStock)

	order, _ := s.GetOrder(ctx, o.ID)
	product, _ := s.GetProduct(ctx, p.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 3, product.StockQuantity)
}

func TestConcurrentApprovalsNeverOversell(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := s.AddProduct(models.Product{Name: "Chair", Slug: "chair", StockQuantity: 5})

	var orderIDs []int64
	for i := 0; i < 10; i++ {
		orderIDs = append(orderIDs, s.AddOrder(models.Order{CustomerID: 1, ProductID: p.ID, Quantity: 1}).ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(orderIDs)*2)
	for _, id := range orderIDs {
		for attempt := 0; attempt < 2; attempt++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := s.ApplyTransition(ctx, models.Transition{
					OrderID: id, From: models.OrderStatusPending, To: models.OrderStatusApproved, DecrementBy: 1,
				})
				results <- err
			}(id)
		}
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	product, _ := s.GetProduct(ctx, p.ID)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, product.StockQuantity)
}

func TestListOrdersNewestFirstWithJoins(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	user := &models.User{Username: "ana", Email: "ana@example.com", FullName: "Ana Ruiz", Role: models.RoleCustomer}
	require.NoError(t, s.CreateUser(ctx, user))
	p := s.AddProduct(models.Product{Name: "Desk", Slug: "desk", Category: "Furniture"})

	first := s.AddOrder(models.Order{CustomerID: user.ID, ProductID: p.ID, Quantity: 1})
	second := s.AddOrder(models.Order{CustomerID: user.ID, ProductID: p.ID, Quantity: 2, Status: models.OrderStatusApproved})

	orders, err := s.ListOrders(ctx, models.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Equal(t, "Ana Ruiz", orders[0].CustomerName)
	assert.Equal(t, "Furniture", orders[0].Category)

	pending, err := s.ListOrders(ctx, models.OrderFilter{Status: models.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)
}

func TestPendingQuantitiesCountPendingAndApproved(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	p := s.AddProduct(models.Product{Name: "Mug", Slug: "mug", StockQuantity: 10})
	s.AddOrder(models.Order{ProductID: p.ID, Quantity: 2})
	s.AddOrder(models.Order{ProductID: p.ID, Quantity: 3, Status: models.OrderStatusApproved})
	s.AddOrder(models.Order{ProductID: p.ID, Quantity: 4, Status: models.OrderStatusRejected})
	s.AddOrder(models.Order{ProductID: p.ID, Quantity: 5, Status: models.OrderStatusFulfilled})

	qty, err := s.PendingQuantity(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, qty)

	all, err := s.PendingQuantities(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{p.ID: 5}, all)
}

func TestCheckoutCreatesOnePendingOrderPerLine(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	a := s.AddProduct(models.Product{Name: "A", Slug: "a", Price: decimal.RequireFromString("2.50"), StockQuantity: 1})
	b := s.AddProduct(models.Product{Name: "B", Slug: "b", Price: decimal.NewFromInt(4), StockQuantity: 1})

	require.NoError(t, s.AddCartItem(ctx, 7, a.ID, 2))
	require.NoError(t, s.AddCartItem(ctx, 7, a.ID, 1))
	require.NoError(t, s.AddCartItem(ctx, 7, b.ID, 1))

	items, err := s.ListCart(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("7.50").Equal(items[0].TotalPrice))

	orders, err := s.Checkout(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.NotEmpty(t, o.TransactionID)
	}
	assert.True(t, decimal.RequireFromString("7.50").Equal(orders[0].TotalAmount))
	assert.NotEqual(t, orders[0].TransactionID, orders[1].TransactionID)

	// stock is only taken at approval
	product, _ := s.GetProduct(ctx, a.ID)
	assert.Equal(t, 1, product.StockQuantity)

	_, err = s.Checkout(ctx, 7)
	assert.ErrorIs(t, err, database.ErrCartEmpty)
}

func TestUpsertProductsBySlug(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	n, err := s.UpsertProducts(ctx, []models.Product{
		{Name: "Tent", Slug: "tent", StockQuantity: 3, Category: "Outdoor"},
		{Name: "Stove", Slug: "stove", StockQuantity: 1, Category: "Outdoor"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.UpsertProducts(ctx, []models.Product{{Name: "Tent XL", Slug: "tent", StockQuantity: 8, Category: "Camping"}})
	require.NoError(t, err)

	products, err := s.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Tent XL", products[0].Name)
	assert.Equal(t, 8, products[0].StockQuantity)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Camping", "Outdoor"}, categories)

	require.NoError(t, s.PurgeProducts(ctx))
	products, err = s.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestReviewsModeration(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	r := &models.Review{CustomerID: 1, Rating: 4, Body: "nice"}
	require.NoError(t, s.CreateReview(ctx, r))
	require.False(t, r.ID.IsZero())

	unmoderated := false
	list, err := s.ListReviews(ctx, models.ReviewFilter{Moderated: &unmoderated})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := s.SetModerated(ctx, r.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, updated.Moderated)

	_, err = s.SetModerated(ctx, "not-an-id", true)
	assert.ErrorIs(t, err, database.ErrReviewNotFound)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "bo", Email: "bo@example.com"}))
	err := s.CreateUser(ctx, &models.User{Username: "BO", Email: "other@example.com"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestPurgeProductsKeepsOrderedProducts(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	kept := s.AddProduct(models.Product{Name: "Ordered", Slug: "ordered", StockQuantity: 4, IsActive: true})
	s.AddProduct(models.Product{Name: "Unordered", Slug: "unordered", StockQuantity: 2, IsActive: true})
	s.AddOrder(models.Order{CustomerID: 1, ProductID: kept.ID, Quantity: 1})

	require.NoError(t, s.PurgeProducts(ctx))

	products, err := s.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, kept.ID, products[0].ID)
	assert.False(t, products[0].IsActive)
	assert.Equal(t, 0, products[0].StockQuantity)
}
