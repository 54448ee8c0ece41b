// Package catalog imports the product catalog from the merchandising CSV export.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Column headers of the export.
const (
	colCategory     = "Category"
	colSubcategory  = "Subcategory"
	colSubcategory2 = "Subcategory2"
	colBrand        = "Brand"
	colName         = "Product name"
	colPrice        = "Price"
	colImageURL     = "Image Url"
)

var ErrMissingColumn = errors.New("missing required column")

type Options struct {
	// ClearExisting purges the catalog before loading.
	ClearExisting bool
	// DefaultStock is the stock every imported product starts with.
	DefaultStock int
}

type Result struct {
	Loaded  int
	Skipped int
}

// Parse reads products from r. Rows without a product name are skipped and counted.
func Parse(r io.Reader, defaultStock int, logger *zap.Logger) ([]models.Product, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{colName, colPrice} {
		if _, ok := index[required]; !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	// Later rows win when two rows share a slug.
	bySlug := make(map[string]int)
	var products []models.Product
	skipped := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, skipped, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := field(colName)
		if name == "" {
			skipped++
			continue
		}

		price, err := ParsePrice(field(colPrice))
		if err != nil {
			logger.Warn("unparseable price, using 0", zap.Int("line", line), zap.String("product", name), zap.Error(err))
			price = decimal.Zero
		}

		category := field(colCategory)
		brand := field(colBrand)
		product := models.Product{
			Name:          name,
			Slug:          slug.Make(name),
			Category:      category,
			Brand:         BrandOrFallback(brand, name),
			Price:         price,
			StockQuantity: defaultStock,
			Description:   Describe(name, brand, category, field(colSubcategory), field(colSubcategory2)),
			ImageURL:      field(colImageURL),
			IsActive:      true,
		}

		if i, ok := bySlug[product.Slug]; ok {
			products[i] = product
			continue
		}
		bySlug[product.Slug] = len(products)
		products = append(products, product)
	}
	return products, skipped, nil
}

// ParsePrice strips the currency markers the export uses ("CA$1,299.00").
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("CA$", "", "$", "", ",", "").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}

// BrandOrFallback uses the first word of the product name when the brand is empty.
func BrandOrFallback(brand, name string) string {
	if brand != "" {
		return brand
	}
	if words := strings.Fields(name); len(words) > 0 {
		return words[0]
	}
	return ""
}

// Describe builds a short description from the taxonomy columns.
func Describe(name, brand, category, subcategory, subcategory2 string) string {
	var parts []string
	if brand != "" {
		parts = append(parts, "High-quality "+brand)
	}
	if subcategory != "" && subcategory != category {
		parts = append(parts, strings.ToLower(subcategory))
	}
	if subcategory2 != "" && subcategory2 != subcategory {
		parts = append(parts, strings.ToLower(subcategory2))
	}
	if category != "" {
		parts = append(parts, "in the "+strings.ToLower(category)+" category")
	}
	if len(parts) == 0 {
		return "Quality " + strings.ToLower(name) + " product."
	}
	return strings.Join(parts, " ") + "."
}

// Loader writes parsed products to the product store.
type Loader struct {
	products store.ProductStore
	logger   *zap.Logger
}

func NewLoader(products store.ProductStore, logger *zap.Logger) *Loader {
	return &Loader{products: products, logger: logger}
}

func (l *Loader) Load(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	if opts.DefaultStock < 0 {
		return Result{}, fmt.Errorf("default stock must not be negative, got %d", opts.DefaultStock)
	}

	products, skipped, err := Parse(r, opts.DefaultStock, l.logger)
	if err != nil {
		return Result{}, err
	}

	if opts.ClearExisting {
		if err := l.products.PurgeProducts(ctx); err != nil {
			return Result{}, fmt.Errorf("clear catalog: %w", err)
		}
		l.logger.Warn("cleared existing products")
	}

	loaded, err := l.products.UpsertProducts(ctx, products)
	if err != nil {
		return Result{}, fmt.Errorf("upsert products: %w", err)
	}
	l.logger.Info("catalog loaded", zap.Int("loaded", loaded), zap.Int("skipped", skipped))
	return Result{Loaded: loaded, Skipped: skipped}, nil
}
