package models

import "time"

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusRejected   TicketStatus = "rejected"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusOpen, TicketStatusInProgress,
		TicketStatusResolved, TicketStatusRejected, TicketStatusClosed:
		return true
	}
	return false
}

// IsOpen reports whether the ticket still waits for a first response.
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusPending || s == TicketStatusOpen
}

// SupportTicket is the model for the 'support_tickets' table.
type SupportTicket struct {
	ID               int64        `json:"id" db:"id"`
	CustomerID       int64        `json:"customer_id" db:"customer_id"`
	OrderID          *int64       `json:"order_id,omitempty" db:"order_id"`
	ProductID        *int64       `json:"product_id,omitempty" db:"product_id"`
	IssueDescription string       `json:"issue_description" db:"issue_description"`
	Attachment       string       `json:"attachment,omitempty" db:"attachment"`
	Status           TicketStatus `json:"status" db:"status"`
	ResolutionNote   string       `json:"resolution_note,omitempty" db:"resolution_note"`
	SubmittedAt      time.Time    `json:"submitted_at" db:"submitted_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`

	// Joins
	CustomerName string `json:"customer_name,omitempty" db:"-"`
	ProductName  string `json:"product_name,omitempty" db:"-"`
}

// TicketFilter selects tickets. CustomerID == 0 means every customer.
type TicketFilter struct {
	Status     TicketStatus
	CustomerID int64
}
