package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *Store) ListCart(ctx context.Context, customerID int64) ([]models.CartItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ci.customer_id, ci.product_id, p.name, ci.quantity, p.price, ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.customer_id = ?
		ORDER BY ci.product_id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(
			&item.CustomerID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) AddCartItem(ctx context.Context, customerID, productID int64, quantity int) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return database.ErrProductNotFound
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (customer_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		customerID, productID, quantity)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (s *Store) SetCartItem(ctx context.Context, customerID, productID int64, quantity int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE customer_id = ? AND product_id = ?`,
		quantity, customerID, productID)
	if err != nil {
		return fmt.Errorf("set cart item: %w", err)
	}
	// MySQL reports changed rows, so an unchanged quantity also yields 0.
	if n, _ := result.RowsAffected(); n == 0 {
		return s.requireCartLine(ctx, customerID, productID)
	}
	return nil
}

func (s *Store) RemoveCartItem(ctx context.Context, customerID, productID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE customer_id = ? AND product_id = ?`, customerID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return database.ErrProductNotFound
	}
	return nil
}

func (s *Store) requireCartLine(ctx context.Context, customerID, productID int64) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cart_items WHERE customer_id = ? AND product_id = ?)`,
		customerID, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check cart line: %w", err)
	}
	if !exists {
		return database.ErrProductNotFound
	}
	return nil
}

func (s *Store) Checkout(ctx context.Context, customerID int64) ([]models.Order, error) {
	var orderIDs []int64

	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		orderIDs = orderIDs[:0]

		rows, err := tx.QueryContext(ctx, `
			SELECT ci.product_id, ci.quantity, p.price
			FROM cart_items ci
			JOIN products p ON p.id = ci.product_id
			WHERE ci.customer_id = ?
			ORDER BY ci.product_id
			FOR UPDATE`, customerID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}

		var lines []models.NewOrderLine
		for rows.Next() {
			var line models.NewOrderLine
			if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart line: %w", err)
			}
			lines = append(lines, line)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate cart: %w", err)
		}
		if len(lines) == 0 {
			return database.ErrCartEmpty
		}

		for _, line := range lines {
			total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			result, err := tx.ExecContext(ctx, `
				INSERT INTO orders (transaction_id, customer_id, product_id, quantity, unit_price, total_amount, status, notes)
				VALUES (?, ?, ?, ?, ?, ?, ?, '')`,
				uuid.NewString(), customerID, line.ProductID, line.Quantity, line.UnitPrice, total, models.OrderStatusPending)
			if err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("get new order id: %w", err)
			}
			orderIDs = append(orderIDs, id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = ?`, customerID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		o, err := s.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}
