package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
)

const ticketSelect = `
	SELECT t.id, t.customer_id, t.order_id, t.product_id, t.issue_description,
	       t.attachment, t.status, t.resolution_note, t.submitted_at, t.updated_at,
	       COALESCE(NULLIF(u.full_name, ''), u.username, ''), COALESCE(p.name, '')
	FROM support_tickets t
	LEFT JOIN users u ON u.id = t.customer_id
	LEFT JOIN products p ON p.id = t.product_id`

func scanTicket(row rowScanner) (*models.SupportTicket, error) {
	t := &models.SupportTicket{}
	var orderID, productID sql.NullInt64
	err := row.Scan(
		&t.ID,
		&t.CustomerID,
		&orderID,
		&productID,
		&t.IssueDescription,
		&t.Attachment,
		&t.Status,
		&t.ResolutionNote,
		&t.SubmittedAt,
		&t.UpdatedAt,
		&t.CustomerName,
		&t.ProductName,
	)
	if err != nil {
		return nil, err
	}
	t.OrderID = int64Ptr(orderID)
	t.ProductID = int64Ptr(productID)
	return t, nil
}

func (s *Store) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusPending
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO support_tickets (customer_id, order_id, product_id, issue_description, attachment, status, resolution_note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ticket.CustomerID,
		nullableInt64(ticket.OrderID),
		nullableInt64(ticket.ProductID),
		ticket.IssueDescription,
		ticket.Attachment,
		ticket.Status,
		ticket.ResolutionNote,
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get new ticket id: %w", err)
	}

	stored, err := s.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	*ticket = *stored
	return nil
}

func (s *Store) GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error) {
	t, err := scanTicket(s.db.QueryRowContext(ctx, ticketSelect+` WHERE t.id = ?`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, database.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (s *Store) ListTickets(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.CustomerID != 0 {
		where = append(where, "t.customer_id = ?")
		args = append(args, filter.CustomerID)
	}

	query := ticketSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.submitted_at DESC, t.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []models.SupportTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (s *Store) UpdateTicket(ctx context.Context, id int64, status models.TicketStatus, note string) (*models.SupportTicket, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE support_tickets
		SET status = ?, resolution_note = COALESCE(NULLIF(?, ''), resolution_note)
		WHERE id = ? AND status <> ?`,
		status, note, id, models.TicketStatusClosed)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}

	// RowsAffected is 0 for an unchanged row too, so the re-read decides.
	current, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 && current.Status == models.TicketStatusClosed {
		return nil, database.ErrTicketClosed
	}
	return current, nil
}
