package memstore

import (
	"context"
	"sort"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
)

func (s *Store) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTicketID++
	ticket.ID = s.nextTicketID
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusPending
	}
	now := s.now()
	ticket.SubmittedAt = now
	ticket.UpdatedAt = now
	stored := *ticket
	s.tickets[ticket.ID] = &stored
	return nil
}

func (s *Store) GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, database.ErrTicketNotFound
	}
	out := s.decorateTicket(t)
	return &out, nil
}

func (s *Store) ListTickets(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := make([]models.SupportTicket, 0)
	for _, t := range s.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.CustomerID != 0 && t.CustomerID != filter.CustomerID {
			continue
		}
		tickets = append(tickets, s.decorateTicket(t))
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].SubmittedAt.Equal(tickets[j].SubmittedAt) {
			return tickets[i].SubmittedAt.After(tickets[j].SubmittedAt)
		}
		return tickets[i].ID > tickets[j].ID
	})
	return tickets, nil
}

func (s *Store) UpdateTicket(ctx context.Context, id int64, status models.TicketStatus, note string) (*models.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, database.ErrTicketNotFound
	}
	if t.Status == models.TicketStatusClosed {
		return nil, database.ErrTicketClosed
	}
	t.Status = status
	if note != "" {
		t.ResolutionNote = note
	}
	t.UpdatedAt = s.now()
	out := s.decorateTicket(t)
	return &out, nil
}
