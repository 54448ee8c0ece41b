package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentiment is the classifier's verdict on a review body.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Review is a document in the 'reviews' collection.
// A nil ProductID marks a shopping experience review.
type Review struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID    *int64             `json:"product_id,omitempty" bson:"product_id,omitempty"`
	ProductName  string             `json:"product_name,omitempty" bson:"product_name,omitempty"`
	CustomerID   int64              `json:"customer_id" bson:"customer_id"`
	CustomerName string             `json:"customer_name" bson:"customer_name"`
	Rating       int                `json:"rating" bson:"rating"`
	Body         string             `json:"review_text" bson:"review_text"`
	Sentiment    Sentiment          `json:"sentiment" bson:"sentiment"`
	Moderated    bool               `json:"is_moderated" bson:"is_moderated"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// IsExperience reports whether the review is about the shop rather than a product.
func (r *Review) IsExperience() bool {
	return r.ProductID == nil
}

// ReviewFilter selects reviews. Nil pointers mean "no filter".
type ReviewFilter struct {
	Moderated  *bool
	CustomerID int64
	ProductID  *int64
}
