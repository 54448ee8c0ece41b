package demo

import (
	"context"
	"testing"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/auth"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedUsersIsRepeatable(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	svc := auth.NewService(s, auth.NewTokenManager("secret", time.Hour), zap.NewNop())

	require.NoError(t, SeedUsers(ctx, svc, zap.NewNop()))
	require.NoError(t, SeedUsers(ctx, svc, zap.NewNop()))

	for _, a := range Accounts {
		session, err := svc.Login(ctx, a.Username, a.Password)
		require.NoError(t, err, a.Username)
		assert.Equal(t, a.Role, session.User.Role)
	}
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	require.NoError(t, SeedCatalog(ctx, s, zap.NewNop()))

	products, err := s.ListProducts(ctx, models.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, products, len(sampleCatalog))
	assert.Equal(t, "trail-running-shoes", products[0].Slug)
}
