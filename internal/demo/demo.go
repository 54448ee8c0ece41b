// Package demo provisions the fixed accounts and sample catalog used by the
// in-memory backend, so every role can be tried without a database.
package demo

import (
	"context"
	"fmt"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/auth"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Account is a demo login. The password is shown on the login page, so these
// must never be seeded into a real deployment.
type Account struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

var Accounts = []Account{
	{Username: "customer", Password: "customer123", FullName: "Casey Customer", Role: models.RoleCustomer},
	{Username: "manager", Password: "manager123", FullName: "Morgan Manager", Role: models.RoleManager},
	{Username: "admin", Password: "admin123", FullName: "Alex Admin", Role: models.RoleAdmin},
	{Username: "support", Password: "support123", FullName: "Sam Support", Role: models.RoleSupport},
}

type sampleProduct struct {
	name, category, brand, price string
	stock                        int
}

var sampleCatalog = []sampleProduct{
	{"Trail Running Shoes", "Footwear", "Stride", "89.99", 12},
	{"Leather Ankle Boots", "Footwear", "Harlow", "149.00", 4},
	{"Merino Wool Socks", "Accessories", "Stride", "14.50", 40},
	{"Canvas Weekender Bag", "Bags", "Harlow", "75.00", 0},
	{"Waterproof Shell Jacket", "Outerwear", "Northline", "199.95", 7},
}

// SeedUsers creates the demo accounts. Accounts that already exist are skipped.
func SeedUsers(ctx context.Context, accounts *auth.Service, logger *zap.Logger) error {
	for _, a := range Accounts {
		_, err := accounts.Provision(ctx, auth.Registration{
			Username: a.Username,
			Email:    a.Username + "@demo.local",
			Password: a.Password,
			FullName: a.FullName,
		}, a.Role)
		if apperr.Is(err, apperr.KindValidation) {
			logger.Debug("demo user exists", zap.String("username", a.Username))
			continue
		}
		if err != nil {
			return fmt.Errorf("seed user %s: %w", a.Username, err)
		}
	}
	logger.Info("demo users ready", zap.Int("count", len(Accounts)))
	return nil
}

// SeedCatalog loads a handful of products with a mix of stock levels so the
// inventory badges have something to show.
func SeedCatalog(ctx context.Context, products store.ProductStore, logger *zap.Logger) error {
	batch := make([]models.Product, 0, len(sampleCatalog))
	for _, s := range sampleCatalog {
		price, err := decimal.NewFromString(s.price)
		if err != nil {
			return fmt.Errorf("sample price %q: %w", s.price, err)
		}
		batch = append(batch, models.Product{
			Name:          s.name,
			Slug:          slug.Make(s.name),
			Category:      s.category,
			Brand:         s.brand,
			Price:         price,
			StockQuantity: s.stock,
			Rating:        4.5,
			IsActive:      true,
		})
	}

	n, err := products.UpsertProducts(ctx, batch)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("demo catalog ready", zap.Int("products", n))
	return nil
}
