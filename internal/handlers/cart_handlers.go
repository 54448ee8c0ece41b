package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AddToCartInput struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemInput sets a line's quantity. Zero removes the line.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// GetCart handles GET /v1/customer/cart
func (h *Handlers) GetCart(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	summary, err := h.Cart.Get(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"cart": summary})
}

// AddToCart handles POST /v1/customer/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	if err := h.Cart.Add(c.Request.Context(), actor, input.ProductID, input.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"message": "Item added to cart"})
}

// UpdateCartItem handles PUT /v1/customer/cart/items/:product_id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	productID, valid := h.idParam(c, "product_id")
	if !valid {
		return
	}
	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if *input.Quantity == 0 {
		if err := h.Cart.Remove(ctx, actor, productID); err != nil {
			h.respondError(c, err)
			return
		}
		ok(c, gin.H{"message": "Item removed from cart"})
		return
	}
	if err := h.Cart.Set(ctx, actor, productID, *input.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"message": "Cart updated"})
}

// DeleteCartItem handles DELETE /v1/customer/cart/items/:product_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	productID, valid := h.idParam(c, "product_id")
	if !valid {
		return
	}
	if err := h.Cart.Remove(c.Request.Context(), actor, productID); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"message": "Item removed from cart"})
}

// Checkout handles POST /v1/customer/cart/checkout. Orders are created
// pending; stock is taken when a manager approves them.
func (h *Handlers) Checkout(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	orders, err := h.Cart.Checkout(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":  http.StatusCreated,
		"message": "Order placed successfully",
		"orders":  orders,
	})
}
