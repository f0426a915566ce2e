package queue

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const FailedJobsCollection = "failed_jobs"

// MongoFailedStore writes failed jobs to a collection.
type MongoFailedStore struct {
	col *mongo.Collection
}

func NewMongoFailedStore(db *mongo.Database) *MongoFailedStore {
	return &MongoFailedStore{col: db.Collection(FailedJobsCollection)}
}

func (s *MongoFailedStore) Save(ctx context.Context, f FailedJob) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := s.col.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("queue: insert failed job: %w", err)
	}
	return nil
}

// Prune deletes failures older than age and reports how many went.
func (s *MongoFailedStore) Prune(ctx context.Context, age time.Duration) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"failed_at": bson.M{"$lt": time.Now().Add(-age).UTC()}})
	if err != nil {
		return 0, fmt.Errorf("queue: prune failed jobs: %w", err)
	}
	return res.DeletedCount, nil
}
