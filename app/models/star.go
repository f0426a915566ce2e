package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const StarsCollection = "stars"

// StarRating is one customer review of the shop.
type StarRating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"userId" json:"userId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// StarSummary aggregates every rating.
type StarSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
