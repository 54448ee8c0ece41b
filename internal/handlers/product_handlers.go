package handlers

import (
	"errors"
	"strconv"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// ListProducts handles GET /v1/products?category=&q=&limit=&offset=
func (h *Handlers) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	products, err := h.Products.ListProducts(c.Request.Context(), models.ProductFilter{
		Category:   c.Query("category"),
		Search:     c.Query("q"),
		ActiveOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.respondError(c, apperr.Internal(err))
		return
	}
	ok(c, gin.H{"products": products})
}

// GetProduct handles GET /v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, valid := h.idParam(c, "id")
	if !valid {
		return
	}

	product, err := h.Products.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			h.respondError(c, apperr.NotFound(apperr.MsgProductNotFound))
			return
		}
		h.respondError(c, apperr.Internal(err))
		return
	}
	ok(c, gin.H{"product": product})
}

// ListCategories handles GET /v1/products/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.Products.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, apperr.Internal(err))
		return
	}
	ok(c, gin.H{"categories": categories})
}
