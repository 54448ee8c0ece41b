package memstore

import (
	"context"
	"sort"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	review.ID = primitive.NewObjectID()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now()
	}
	stored := *review
	s.reviews = append(s.reviews, &stored)
	return nil
}

func (s *Store) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := make([]models.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if filter.Moderated != nil && r.Moderated != *filter.Moderated {
			continue
		}
		if filter.CustomerID != 0 && r.CustomerID != filter.CustomerID {
			continue
		}
		if filter.ProductID != nil && (r.ProductID == nil || *r.ProductID != *filter.ProductID) {
			continue
		}
		reviews = append(reviews, *r)
	}
	// Reverse first so equal timestamps keep the newest insert on top.
	for i, j := 0, len(reviews)-1; i < j; i, j = i+1, j-1 {
		reviews[i], reviews[j] = reviews[j], reviews[i]
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (s *Store) SetModerated(ctx context.Context, id string, moderated bool) (*models.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrReviewNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reviews {
		if r.ID == oid {
			r.Moderated = moderated
			out := *r
			return &out, nil
		}
	}
	return nil, database.ErrReviewNotFound
}
