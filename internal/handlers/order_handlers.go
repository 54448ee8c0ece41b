package handlers

import (
	"fmt"

	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/orders"
	"github.com/gin-gonic/gin"
)

//
// --- Customer Order Handlers ---
//

// GetMyOrders handles GET /v1/customer/orders?status=
func (h *Handlers) GetMyOrders(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}

	list, err := h.Orders.List(c.Request.Context(), actor, orders.ListRequest{
		Status: models.OrderStatus(c.Query("status")),
		Scope:  orders.ScopeOwn,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"orders": list})
}

// GetOrderByTransaction handles GET /v1/customer/orders/transaction/:transaction_id
func (h *Handlers) GetOrderByTransaction(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}

	order, err := h.Orders.ByTransaction(c.Request.Context(), actor, c.Param("transaction_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"order": order})
}

//
// --- Manager Order Handlers ---
//

// GetPendingOrders handles GET /v1/manager/orders/pending. Each order carries
// the product's current stock in stock_available.
func (h *Handlers) GetPendingOrders(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}

	list, err := h.Orders.Pending(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"orders": list})
}

// GetAllOrders handles GET /v1/manager/orders/all?status=
// With ?include_stock=true the pending orders are merged in so they carry
// stock_available, which is what the orders page renders.
func (h *Handlers) GetAllOrders(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	status := models.OrderStatus(c.Query("status"))
	list, err := h.Orders.List(ctx, actor, orders.ListRequest{Status: status, Scope: orders.ScopeManager})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if c.Query("include_stock") == "true" && (status == "" || status == models.OrderStatusPending) {
		pending, err := h.Orders.Pending(ctx, actor)
		if err != nil {
			h.respondError(c, err)
			return
		}
		list = orders.MergeOrders(list, pending)
	}
	ok(c, gin.H{"orders": list})
}

type ProcessOrderInput struct {
	OrderID int64  `json:"order_id" binding:"required,gt=0"`
	Action  string `json:"action" binding:"required,oneof=approve reject fulfill"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// ProcessOrder handles POST /v1/manager/orders/process
func (h *Handlers) ProcessOrder(c *gin.Context) {
	// 1. --- Who is acting ---
	actor, valid := h.actor(c)
	if !valid {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input ProcessOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	// 3. --- Run the transition ---
	order, err := h.Engine.Process(c.Request.Context(), actor, input.OrderID, orders.Action(input.Action), input.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 4. --- Send Success Response ---
	ok(c, gin.H{
		"message": fmt.Sprintf("Order %d %s", order.ID, order.Status),
		"order":   order,
	})
}
