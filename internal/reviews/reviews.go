// Package reviews records customer reviews, labels their sentiment and lets
// managers moderate them before they go public.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/ai"
	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"go.uber.org/zap"
)

const DefaultRating = 5

// Roles allowed to see every review and change moderation.
var ModeratorRoles = []models.Role{models.RoleAdmin, models.RoleManager}

type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// NewReview is a validated submission. A nil ProductID is an experience review.
type NewReview struct {
	ProductID *int64
	Rating    *int
	Body      string
}

type Service struct {
	reviews    store.ReviewStore
	products   ProductLookup
	classifier ai.Classifier
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(reviews store.ReviewStore, products ProductLookup, classifier ai.Classifier, logger *zap.Logger) *Service {
	if classifier == nil {
		classifier = ai.NeutralClassifier{}
	}
	return &Service{
		reviews:    reviews,
		products:   products,
		classifier: classifier,
		now:        time.Now,
		logger:     logger,
	}
}

// Create stores a review by the actor. Reviews start unmoderated.
func (s *Service) Create(ctx context.Context, actor models.Actor, in NewReview) (*models.Review, error) {
	rating := DefaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("Rating must be between 1 and 5")
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, apperr.Validation("Review text is required")
	}

	review := &models.Review{
		ProductID:    in.ProductID,
		CustomerID:   actor.UserID,
		CustomerName: actor.Name,
		Rating:       rating,
		Body:         body,
		CreatedAt:    s.now().UTC(),
	}

	if in.ProductID != nil {
		product, err := s.products.GetProduct(ctx, *in.ProductID)
		if err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				return nil, apperr.NotFound(apperr.MsgProductNotFound)
			}
			return nil, apperr.Internal(fmt.Errorf("load product %d: %w", *in.ProductID, err))
		}
		review.ProductName = product.Name
	}

	review.Sentiment = s.sentiment(ctx, body)

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		s.logger.Error("failed to store review", zap.Int64("customer_id", actor.UserID), zap.Error(err))
		return nil, apperr.Internal(err)
	}
	return review, nil
}

// sentiment never fails the submission. Classifier outages fall back to neutral.
func (s *Service) sentiment(ctx context.Context, body string) models.Sentiment {
	label, err := s.classifier.Classify(ctx, body)
	if err != nil {
		s.logger.Warn("sentiment classification failed, using neutral", zap.Error(err))
		return models.SentimentNeutral
	}
	return label
}

// ListOwn returns the actor's reviews, moderated or not.
func (s *Service) ListOwn(ctx context.Context, actor models.Actor) ([]models.Review, error) {
	return s.list(ctx, models.ReviewFilter{CustomerID: actor.UserID})
}

// ListAll is the moderation queue view. unmoderatedOnly narrows it to the backlog.
func (s *Service) ListAll(ctx context.Context, actor models.Actor, unmoderatedOnly bool) ([]models.Review, error) {
	if !actor.Role.In(ModeratorRoles...) {
		return nil, apperr.Forbidden(apperr.MsgForbidden)
	}
	filter := models.ReviewFilter{}
	if unmoderatedOnly {
		moderated := false
		filter.Moderated = &moderated
	}
	return s.list(ctx, filter)
}

// Public returns moderated reviews, optionally for one product.
func (s *Service) Public(ctx context.Context, productID *int64) ([]models.Review, error) {
	moderated := true
	return s.list(ctx, models.ReviewFilter{Moderated: &moderated, ProductID: productID})
}

func (s *Service) Moderate(ctx context.Context, actor models.Actor, id string, moderated bool) (*models.Review, error) {
	if !actor.Role.In(ModeratorRoles...) {
		return nil, apperr.Forbidden(apperr.MsgForbidden)
	}
	review, err := s.reviews.SetModerated(ctx, id, moderated)
	if err != nil {
		if errors.Is(err, database.ErrReviewNotFound) {
			return nil, apperr.NotFound(apperr.MsgReviewNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("moderate review %s: %w", id, err))
	}
	s.logger.Info("review moderated",
		zap.String("review_id", id),
		zap.Bool("moderated", moderated),
		zap.Int64("actor_id", actor.UserID))
	return review, nil
}

func (s *Service) list(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	reviews, err := s.reviews.ListReviews(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list reviews: %w", err))
	}
	return reviews, nil
}
