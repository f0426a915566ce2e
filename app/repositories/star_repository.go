package repositories

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
)

type StarRepository interface {
	All(ctx context.Context) ([]models.StarRating, error)
	Create(ctx context.Context, s *models.StarRating) error
	Summary(ctx context.Context) (models.StarSummary, error)
}

type MongoStarRepository struct {
	col *mongo.Collection
}

func NewStarRepository(db *mongo.Database) *MongoStarRepository {
	return &MongoStarRepository{col: db.Collection(models.StarsCollection)}
}

// All returns ratings newest first.
func (r *MongoStarRepository) All(ctx context.Context) ([]models.StarRating, error) {
	defer metrics.ObserveDBQuery(models.StarsCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, translate("stars: find", err)
	}
	out := []models.StarRating{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate("stars: decode", err)
	}
	return out, nil
}

func (r *MongoStarRepository) Create(ctx context.Context, s *models.StarRating) error {
	defer metrics.ObserveDBQuery(models.StarsCollection, "insert", time.Now())

	s.CreatedAt = time.Now().UTC()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, s)
	return translate("stars: insert", err)
}

// Summary averages server side; the average is rounded to two places.
func (r *MongoStarRepository) Summary(ctx context.Context) (models.StarSummary, error) {
	defer metrics.ObserveDBQuery(models.StarsCollection, "aggregate", time.Now())

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
		}}},
	})
	if err != nil {
		return models.StarSummary{}, translate("stars: aggregate", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Count   int     `bson:"count"`
		Average float64 `bson:"average"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.StarSummary{}, translate("stars: decode summary", err)
	}
	if len(rows) == 0 {
		return models.StarSummary{}, nil
	}
	return models.StarSummary{Count: rows[0].Count, Average: math.Round(rows[0].Average*100) / 100}, nil
}
