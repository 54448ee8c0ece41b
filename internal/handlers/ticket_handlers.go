package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/tickets"
	"github.com/gin-gonic/gin"
)

const maxAttachmentSize = 5 << 20

// CreateTicketInput binds from JSON or from multipart form fields.
type CreateTicketInput struct {
	OrderID          *int64 `json:"order_id" form:"order_id" binding:"omitempty,gt=0"`
	ProductID        *int64 `json:"product_id" form:"product_id" binding:"omitempty,gt=0"`
	IssueDescription string `json:"issue_description" form:"issue_description" binding:"required,notblank,max=5000"`
}

// CreateTicket handles POST /v1/customer/tickets. Multipart requests may carry
// a file in the "attachment" field.
func (h *Handlers) CreateTicket(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}

	// 1. --- Bind the fields ---
	var input CreateTicketInput
	if err := c.ShouldBind(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	ticket := tickets.NewTicket{
		OrderID:          input.OrderID,
		ProductID:        input.ProductID,
		IssueDescription: input.IssueDescription,
	}

	// 2. --- Optional attachment ---
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("attachment")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			h.respondError(c, apperr.Validation("Could not read attachment"))
			return
		case file.Size > maxAttachmentSize:
			h.respondError(c, apperr.Validation("Attachment must be 5MB or smaller"))
			return
		default:
			content, err := file.Open()
			if err != nil {
				h.respondError(c, apperr.Internal(err))
				return
			}
			defer content.Close()
			ticket.Attachment = &tickets.Upload{Filename: file.Filename, Content: content}
		}
	}

	// 3. --- Save ---
	created, err := h.Tickets.Create(c.Request.Context(), actor, ticket)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": http.StatusCreated, "message": "Ticket submitted", "ticket": created})
}

// GetMyTickets handles GET /v1/customer/tickets
func (h *Handlers) GetMyTickets(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	list, err := h.Tickets.ListOwn(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"tickets": list})
}

// GetAllTickets handles GET /v1/manager/tickets?status=
func (h *Handlers) GetAllTickets(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	list, err := h.Tickets.List(c.Request.Context(), actor, models.TicketStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"tickets": list})
}

// GetTicket handles GET /v1/manager/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	id, valid := h.idParam(c, "id")
	if !valid {
		return
	}
	ticket, err := h.Tickets.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"ticket": ticket})
}

type UpdateTicketInput struct {
	Status         string `json:"status" binding:"required"`
	ResolutionNote string `json:"resolution_note" binding:"max=5000"`
}

// UpdateTicket handles POST /v1/manager/tickets/:id/update
func (h *Handlers) UpdateTicket(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	id, valid := h.idParam(c, "id")
	if !valid {
		return
	}
	var input UpdateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	ticket, err := h.Tickets.Update(c.Request.Context(), actor, id, models.TicketStatus(input.Status), input.ResolutionNote)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"message": "Ticket updated", "ticket": ticket})
}
