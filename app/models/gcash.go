package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const GcashCollection = "gcash"

// GcashEntry holds the QR image URLs customers scan to pay.
type GcashEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	QRImage   []string           `bson:"QRImage" json:"QRImage"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
