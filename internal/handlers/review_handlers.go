package handlers

import (
	"net/http"
	"strconv"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/reviews"
	"github.com/gin-gonic/gin"
)

// Rating is a pointer so an omitted rating can default while 0 is rejected.
type ProductReviewInput struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Rating    *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Text      string `json:"review_text" binding:"required,notblank,max=5000"`
}

type ExperienceReviewInput struct {
	Rating *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Text   string `json:"review_text" binding:"required,notblank,max=5000"`
}

// CreateProductReview handles POST /v1/customer/reviews
func (h *Handlers) CreateProductReview(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	var input ProductReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	review, err := h.Reviews.Create(c.Request.Context(), actor, reviews.NewReview{
		ProductID: &input.ProductID,
		Rating:    input.Rating,
		Body:      input.Text,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": http.StatusCreated, "message": "Review submitted", "review": review})
}

// CreateExperienceReview handles POST /v1/customer/reviews/experience
func (h *Handlers) CreateExperienceReview(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	var input ExperienceReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	review, err := h.Reviews.Create(c.Request.Context(), actor, reviews.NewReview{
		Rating: input.Rating,
		Body:   input.Text,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": http.StatusCreated, "message": "Review submitted", "review": review})
}

// GetMyReviews handles GET /v1/customer/reviews
func (h *Handlers) GetMyReviews(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	list, err := h.Reviews.ListOwn(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"reviews": list})
}

// GetPublicReviews handles GET /v1/reviews/public?product_id=
func (h *Handlers) GetPublicReviews(c *gin.Context) {
	var productID *int64
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(c, apperr.Validation("Invalid product_id"))
			return
		}
		productID = &id
	}

	list, err := h.Reviews.Public(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"reviews": list})
}

// GetAllReviews handles GET /v1/manager/reviews?unmoderated=true
func (h *Handlers) GetAllReviews(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	list, err := h.Reviews.ListAll(c.Request.Context(), actor, c.Query("unmoderated") == "true")
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"reviews": list})
}

type ModerateReviewInput struct {
	Moderated *bool `json:"is_moderated"`
}

// ModerateReview handles PATCH /v1/manager/reviews/:id/moderate.
// An empty body approves the review.
func (h *Handlers) ModerateReview(c *gin.Context) {
	actor, valid := h.actor(c)
	if !valid {
		return
	}
	var input ModerateReviewInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			h.respondBindError(c, err)
			return
		}
	}
	moderated := true
	if input.Moderated != nil {
		moderated = *input.Moderated
	}

	review, err := h.Reviews.Moderate(c.Request.Context(), actor, c.Param("id"), moderated)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"message": "Review updated", "review": review})
}
