package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"go.uber.org/zap"
)

const orderSelect = `
	SELECT o.id, o.transaction_id, o.customer_id, o.product_id, o.quantity,
	       o.unit_price, o.total_amount, o.status, o.notes, o.processed_by,
	       o.processed_at, o.created_at, o.updated_at,
	       COALESCE(NULLIF(u.full_name, ''), u.username, ''),
	       COALESCE(p.name, ''), COALESCE(p.category, '')
	FROM orders o
	LEFT JOIN users u ON u.id = o.customer_id
	LEFT JOIN products p ON p.id = o.product_id`

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var (
		processedBy sql.NullInt64
		processedAt sql.NullTime
	)
	err := row.Scan(
		&o.ID,
		&o.TransactionID,
		&o.CustomerID,
		&o.ProductID,
		&o.Quantity,
		&o.UnitPrice,
		&o.TotalAmount,
		&o.Status,
		&o.Notes,
		&processedBy,
		&processedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.CustomerName,
		&o.ProductName,
		&o.Category,
	)
	if err != nil {
		return nil, err
	}
	o.ProcessedBy = int64Ptr(processedBy)
	if processedAt.Valid {
		at := processedAt.Time
		o.ProcessedAt = &at
	}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = ?`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *Store) GetOrderByTransaction(ctx context.Context, transactionID string) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, orderSelect+` WHERE o.transaction_id = ?`, transactionID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by transaction: %w", err)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "o.status = ?")
		args = append(args, filter.Status)
	}
	if filter.CustomerID != 0 {
		where = append(where, "o.customer_id = ?")
		args = append(args, filter.CustomerID)
	}

	query := orderSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) PendingQuantity(ctx context.Context, productID int64) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM orders
		WHERE product_id = ? AND status IN ('pending', 'approved')`,
		productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("pending quantity: %w", err)
	}
	return total, nil
}

func (s *Store) PendingQuantities(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, SUM(quantity)
		FROM orders
		WHERE status IN ('pending', 'approved')
		GROUP BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("pending quantities: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]int)
	for rows.Next() {
		var (
			productID int64
			qty       int
		)
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan pending quantity: %w", err)
		}
		totals[productID] = qty
	}
	return totals, rows.Err()
}

// ApplyTransition performs the guarded status change and optional stock
// decrement in one transaction. Both UPDATEs carry their precondition in the
// WHERE clause so a concurrent approval of the same order, or of another
// order for the same product, cannot slip between the check and the write.
func (s *Store) ApplyTransition(ctx context.Context, t models.Transition) (*models.Order, error) {
	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		var productID int64
		err := tx.QueryRowContext(ctx, `SELECT product_id FROM orders WHERE id = ?`, t.OrderID).Scan(&productID)
		if err != nil {
			if database.IsNoRows(err) {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("load order product: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = ?, notes = ?, processed_by = ?, processed_at = ?
			WHERE id = ? AND status = ?`,
			t.To, t.Notes, t.ActorID, t.At, t.OrderID, t.From)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return explainOrderMiss(ctx, tx, t)
		}

		if t.DecrementBy <= 0 {
			return nil
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - ?
			WHERE id = ? AND stock_quantity >= ?`,
			t.DecrementBy, productID, t.DecrementBy)
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, productID).Scan(&exists); err != nil {
				return fmt.Errorf("check product exists: %w", err)
			}
			if !exists {
				return database.ErrProductNotFound
			}
			return database.ErrInsufficientStock
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("order transition refused",
			zap.Int64("order_id", t.OrderID),
			zap.String("to", string(t.To)),
			zap.Error(err))
		return nil, err
	}

	return s.GetOrder(ctx, t.OrderID)
}

func explainOrderMiss(ctx context.Context, tx *sql.Tx, t models.Transition) error {
	var current models.OrderStatus
	err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, t.OrderID).Scan(&current)
	if err != nil {
		if database.IsNoRows(err) {
			return database.ErrOrderNotFound
		}
		return fmt.Errorf("reload order status: %w", err)
	}
	if current != t.From {
		return database.ErrStatusMismatch
	}
	return database.ErrConcurrentUpdate
}
