// Package tickets handles customer support tickets and their resolution by staff.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"go.uber.org/zap"
)

// Roles allowed to work the ticket queue.
var StaffRoles = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleSupport}

type OrderLookup interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
}

// Upload is an optional attachment on a new ticket.
type Upload struct {
	Filename string
	Content  io.Reader
}

type NewTicket struct {
	OrderID          *int64
	ProductID        *int64
	IssueDescription string
	Attachment       *Upload
}

type Service struct {
	tickets     store.TicketStore
	orders      OrderLookup
	attachments Attachments
	logger      *zap.Logger
}

func NewService(tickets store.TicketStore, orders OrderLookup, attachments Attachments, logger *zap.Logger) *Service {
	return &Service{tickets: tickets, orders: orders, attachments: attachments, logger: logger}
}

// Create opens a ticket for the actor. When an order is referenced it must be
// the actor's own, and its product is filled in if the caller left it out.
func (s *Service) Create(ctx context.Context, actor models.Actor, in NewTicket) (*models.SupportTicket, error) {
	description := strings.TrimSpace(in.IssueDescription)
	if description == "" {
		return nil, apperr.Validation("Issue description is required")
	}

	ticket := &models.SupportTicket{
		CustomerID:       actor.UserID,
		OrderID:          in.OrderID,
		ProductID:        in.ProductID,
		IssueDescription: description,
		Status:           models.TicketStatusPending,
	}

	if in.OrderID != nil {
		order, err := s.orders.GetOrder(ctx, *in.OrderID)
		if err != nil {
			if errors.Is(err, database.ErrOrderNotFound) {
				return nil, apperr.NotFound(apperr.MsgOrderNotFound)
			}
			return nil, apperr.Internal(fmt.Errorf("load order %d: %w", *in.OrderID, err))
		}
		if order.CustomerID != actor.UserID {
			return nil, apperr.NotFound(apperr.MsgOrderNotFound)
		}
		if ticket.ProductID == nil {
			productID := order.ProductID
			ticket.ProductID = &productID
		}
	}

	if in.Attachment != nil {
		if s.attachments == nil {
			return nil, apperr.Validation("Attachments are not accepted")
		}
		url, err := s.attachments.Save(ctx, in.Attachment.Filename, in.Attachment.Content)
		if err != nil {
			s.logger.Error("failed to save ticket attachment", zap.Error(err))
			return nil, apperr.Internal(err)
		}
		ticket.Attachment = url
	}

	if err := s.tickets.CreateTicket(ctx, ticket); err != nil {
		if ticket.Attachment != "" {
			if rmErr := s.attachments.Remove(ctx, ticket.Attachment); rmErr != nil {
				s.logger.Warn("failed to remove orphaned attachment",
					zap.String("attachment", ticket.Attachment),
					zap.Error(rmErr))
			}
		}
		return nil, apperr.Internal(fmt.Errorf("create ticket: %w", err))
	}
	s.logger.Info("ticket opened", zap.Int64("ticket_id", ticket.ID), zap.Int64("customer_id", actor.UserID))
	return ticket, nil
}

func (s *Service) ListOwn(ctx context.Context, actor models.Actor) ([]models.SupportTicket, error) {
	return s.list(ctx, models.TicketFilter{CustomerID: actor.UserID})
}

// List is the staff queue, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, actor models.Actor, status models.TicketStatus) ([]models.SupportTicket, error) {
	if !actor.Role.In(StaffRoles...) {
		return nil, apperr.Forbidden(apperr.MsgForbidden)
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validationf("Unknown ticket status %q", status)
	}
	return s.list(ctx, models.TicketFilter{Status: status})
}

func (s *Service) Get(ctx context.Context, actor models.Actor, id int64) (*models.SupportTicket, error) {
	if !actor.Role.In(StaffRoles...) {
		return nil, apperr.Forbidden(apperr.MsgForbidden)
	}
	ticket, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}
	return ticket, nil
}

// Update sets the status and resolution note. Closed tickets are final and a
// rejection must say why. A blank note keeps the previous one.
func (s *Service) Update(ctx context.Context, actor models.Actor, id int64, status models.TicketStatus, note string) (*models.SupportTicket, error) {
	if !actor.Role.In(StaffRoles...) {
		return nil, apperr.Forbidden(apperr.MsgForbidden)
	}
	if !status.Valid() {
		return nil, apperr.Validationf("Unknown ticket status %q", status)
	}
	note = strings.TrimSpace(note)
	if status == models.TicketStatusRejected && note == "" {
		return nil, apperr.Validation("A resolution note is required to reject a ticket")
	}

	// The store refuses closed tickets within the write itself.
	updated, err := s.tickets.UpdateTicket(ctx, id, status, note)
	if err != nil {
		return nil, translate(err, id)
	}
	s.logger.Info("ticket updated",
		zap.Int64("ticket_id", id),
		zap.String("status", string(status)),
		zap.Int64("actor_id", actor.UserID))
	return updated, nil
}

func (s *Service) list(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, error) {
	tickets, err := s.tickets.ListTickets(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list tickets: %w", err))
	}
	return tickets, nil
}

func translate(err error, id int64) error {
	switch {
	case errors.Is(err, database.ErrTicketNotFound):
		return apperr.NotFound(apperr.MsgTicketNotFound)
	case errors.Is(err, database.ErrTicketClosed):
		return apperr.InvalidState("Ticket is closed")
	}
	return apperr.Internal(fmt.Errorf("ticket %d: %w", id, err))
}
