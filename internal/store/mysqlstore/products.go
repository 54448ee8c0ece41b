package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
)

const productColumns = `id, name, slug, category, brand, price, stock_quantity, rating,
	description, image_url, is_active, created_at, updated_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Category,
		&p.Brand,
		&p.Price,
		&p.StockQuantity,
		&p.Rating,
		&p.Description,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) StockByIDs(ctx context.Context, ids []int64) (map[int64]int, error) {
	levels := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return levels, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stock_quantity FROM products WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("stock by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			stock int
		)
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		levels[id] = stock
	}
	return levels, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		where = append(where, "(name LIKE ? OR brand LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) UpsertProducts(ctx context.Context, products []models.Product) (int, error) {
	query := `
		INSERT INTO products (name, slug, category, brand, price, stock_quantity, rating, description, image_url, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			category = VALUES(category),
			brand = VALUES(brand),
			price = VALUES(price),
			stock_quantity = VALUES(stock_quantity),
			rating = VALUES(rating),
			description = VALUES(description),
			image_url = VALUES(image_url),
			is_active = VALUES(is_active)`

	err := database.WithTransaction(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range products {
			_, err := stmt.ExecContext(ctx,
				p.Name, p.Slug, p.Category, p.Brand, p.Price, p.StockQuantity,
				p.Rating, p.Description, p.ImageURL, p.IsActive)
			if err != nil {
				return fmt.Errorf("upsert product %q: %w", p.Slug, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// PurgeProducts drops every product no order refers to and deactivates the
// rest with zero stock, so order history keeps its product rows.
func (s *Store) PurgeProducts(ctx context.Context) error {
	return database.WithTransaction(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items`); err != nil {
			return fmt.Errorf("clear carts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM products
			WHERE id NOT IN (SELECT product_id FROM (SELECT DISTINCT product_id FROM orders) AS ordered)`); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET is_active = FALSE, stock_quantity = 0`); err != nil {
			return fmt.Errorf("deactivate products: %w", err)
		}
		return nil
	})
}
