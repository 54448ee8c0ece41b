package handlers

import "github.com/gin-gonic/gin"

// GetInventory handles GET /v1/manager/inventory
func (h *Handlers) GetInventory(c *gin.Context) {
	views, err := h.Inventory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"inventory": views})
}

// GetProductInventory handles GET /v1/manager/inventory/:product_id
func (h *Handlers) GetProductInventory(c *gin.Context) {
	id, valid := h.idParam(c, "product_id")
	if !valid {
		return
	}

	view, err := h.Inventory.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"inventory": view})
}

// GetBadges handles GET /v1/manager/badges
func (h *Handlers) GetBadges(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}

	counts, err := h.Badges.Counts(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"badges": counts})
}
