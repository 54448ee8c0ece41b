// Package mongostore keeps product and shopping experience reviews in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewsCollection = "reviews"

type ReviewStore struct {
	coll *mongo.Collection
}

var _ store.ReviewStore = (*ReviewStore)(nil)

func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{coll: db.Collection(reviewsCollection)}
}

// EnsureIndexes creates the indexes the listing queries rely on.
func (s *ReviewStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_moderated", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create review indexes: %w", err)
	}
	return nil
}

func (s *ReviewStore) CreateReview(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func reviewQuery(filter models.ReviewFilter) bson.M {
	query := bson.M{}
	if filter.Moderated != nil {
		query["is_moderated"] = *filter.Moderated
	}
	if filter.CustomerID != 0 {
		query["customer_id"] = filter.CustomerID
	}
	if filter.ProductID != nil {
		query["product_id"] = *filter.ProductID
	}
	return query
}

func (s *ReviewStore) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.coll.Find(ctx, reviewQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewStore) SetModerated(ctx context.Context, id string, moderated bool) (*models.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrReviewNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var review models.Review
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"is_moderated": moderated}},
		opts,
	).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrReviewNotFound
		}
		return nil, fmt.Errorf("moderate review: %w", err)
	}
	return &review, nil
}
