package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stock      int
		pending    int
		available  int
		outOfStock bool
		lowStock   bool
	}{
		{"plenty with modest demand", 10, 7, 3, false, false},
		{"zero stock", 0, 0, 0, true, true},
		{"at threshold", 5, 0, 5, false, true},
		{"just above threshold", 6, 0, 6, false, false},
		{"one unit", 1, 0, 1, false, true},
		{"demand consumes stock", 20, 20, 0, false, true},
		{"oversold", 8, 12, -4, false, true},
		{"zero stock with demand", 0, 3, -3, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Derive(models.Product{ID: 1, StockQuantity: tt.stock}, tt.pending)
			assert.Equal(t, tt.stock, v.CurrentStock)
			assert.Equal(t, tt.pending, v.PendingOrders)
			assert.Equal(t, tt.available, v.AvailableAfterPending)
			assert.Equal(t, tt.outOfStock, v.IsOutOfStock)
			assert.Equal(t, tt.lowStock, v.IsLowStock)
		})
	}
}

func TestDeriveInvariant(t *testing.T) {
	t.Parallel()

	for stock := 0; stock <= 12; stock++ {
		for pending := 0; pending <= 15; pending++ {
			v := Derive(models.Product{StockQuantity: stock}, pending)
			assert.Equal(t, stock == 0, v.IsOutOfStock)
			wantLow := (stock > 0 && stock <= LowStockThreshold) || stock-pending <= 0
			assert.Equal(t, wantLow, v.IsLowStock, "stock=%d pending=%d", stock, pending)
		}
	}
}

func TestReaderGet(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	p := s.AddProduct(models.Product{Name: "P", Slug: "p", StockQuantity: 10})
	s.AddOrder(models.Order{ProductID: p.ID, Quantity: 7})
	s.AddOrder(models.Order{ProductID: p.ID, Quantity: 9, Status: models.OrderStatusRejected})

	r := NewReader(s, s)
	v, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, v.PendingOrders)
	assert.Equal(t, 3, v.AvailableAfterPending)
	assert.False(t, v.IsLowStock)
	assert.False(t, v.IsOutOfStock)
}

func TestReaderGetUnknownProduct(t *testing.T) {
	s := memstore.New()
	_, err := NewReader(s, s).Get(context.Background(), 404)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestReaderList(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	a := s.AddProduct(models.Product{Name: "A", Slug: "a", StockQuantity: 0})
	b := s.AddProduct(models.Product{Name: "B", Slug: "b", StockQuantity: 30})
	s.AddOrder(models.Order{ProductID: b.ID, Quantity: 4, Status: models.OrderStatusApproved})

	views, err := NewReader(s, s).List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, a.ID, views[0].ProductID)
	assert.True(t, views[0].IsOutOfStock)
	assert.Equal(t, 4, views[1].PendingOrders)
	assert.Equal(t, 26, views[1].AvailableAfterPending)
}

type failingDemand struct{}

func (failingDemand) PendingQuantity(context.Context, int64) (int, error) {
	return 0, errors.New("db down")
}

func (failingDemand) PendingQuantities(context.Context) (map[int64]int, error) {
	return nil, errors.New("db down")
}

func TestReaderSurfacesInfrastructureFailure(t *testing.T) {
	s := memstore.New()
	p := s.AddProduct(models.Product{Name: "A", Slug: "a"})

	_, err := NewReader(s, failingDemand{}).Get(context.Background(), p.ID)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestStockLevelsSkipsUnknown(t *testing.T) {
	s := memstore.New()
	p := s.AddProduct(models.Product{Name: "A", Slug: "a", StockQuantity: 4})

	levels, err := NewReader(s, s).StockLevels(context.Background(), []int64{p.ID, p.ID, 99})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{p.ID: 4}, levels)
}

// batchOnly fails any per-product lookup.
type batchOnly struct {
	*memstore.Store
	batches int
}

func (b *batchOnly) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return nil, errors.New("per-product lookup")
}

func (b *batchOnly) StockByIDs(ctx context.Context, ids []int64) (map[int64]int, error) {
	b.batches++
	return b.Store.StockByIDs(ctx, ids)
}

func TestStockLevelsUsesOneBatchLookup(t *testing.T) {
	s := memstore.New()
	a := s.AddProduct(models.Product{Name: "A", Slug: "a", StockQuantity: 4})
	b := s.AddProduct(models.Product{Name: "B", Slug: "b", StockQuantity: 9})
	products := &batchOnly{Store: s}

	levels, err := NewReader(products, s).StockLevels(context.Background(), []int64{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{a.ID: 4, b.ID: 9}, levels)
	assert.Equal(t, 1, products.batches)
}
