package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
)

type GcashRepository interface {
	All(ctx context.Context) ([]models.GcashEntry, error)
	Create(ctx context.Context, e *models.GcashEntry) error
	ReplaceImages(ctx context.Context, id primitive.ObjectID, images []string) (models.GcashEntry, error)
}

type MongoGcashRepository struct {
	col *mongo.Collection
}

func NewGcashRepository(db *mongo.Database) *MongoGcashRepository {
	return &MongoGcashRepository{col: db.Collection(models.GcashCollection)}
}

func (r *MongoGcashRepository) All(ctx context.Context) ([]models.GcashEntry, error) {
	defer metrics.ObserveDBQuery(models.GcashCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, translate("gcash: find", err)
	}
	out := []models.GcashEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate("gcash: decode", err)
	}
	return out, nil
}

func (r *MongoGcashRepository) Create(ctx context.Context, e *models.GcashEntry) error {
	defer metrics.ObserveDBQuery(models.GcashCollection, "insert", time.Now())

	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, e)
	return translate("gcash: insert", err)
}

func (r *MongoGcashRepository) ReplaceImages(ctx context.Context, id primitive.ObjectID, images []string) (models.GcashEntry, error) {
	defer metrics.ObserveDBQuery(models.GcashCollection, "update", time.Now())

	var e models.GcashEntry
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"QRImage": images, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	return e, translate("gcash: replace images", err)
}
