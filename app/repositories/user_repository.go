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

type UserRepository interface {
	All(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *models.User) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

type MongoUserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(models.UsersCollection)}
}

// All returns every user, oldest first.
func (r *MongoUserRepository) All(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveDBQuery(models.UsersCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, translate("users: find", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, translate("users: decode", err)
	}
	return users, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer metrics.ObserveDBQuery(models.UsersCollection, "find_one", time.Now())

	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, translate("users: find by id", err)
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBQuery(models.UsersCollection, "find_one", time.Now())

	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, translate("users: find by email", err)
}

func (r *MongoUserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	defer metrics.ObserveDBQuery(models.UsersCollection, "count", time.Now())

	n, err := r.col.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate("users: count", err)
	}
	return n > 0, nil
}

// Create stamps timestamps and sets u.ID.
func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery(models.UsersCollection, "insert", time.Now())

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, u)
	return translate("users: insert", err)
}

// UpdateRole sets role and returns the record after the update.
func (r *MongoUserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error) {
	defer metrics.ObserveDBQuery(models.UsersCollection, "update", time.Now())

	var u models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	return u, translate("users: update role", err)
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	defer metrics.ObserveDBQuery(models.UsersCollection, "update", time.Now())

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return translate("users: update password", err)
	}
	if res.MatchedCount == 0 {
		return translate("users: update password", mongo.ErrNoDocuments)
	}
	return nil
}
