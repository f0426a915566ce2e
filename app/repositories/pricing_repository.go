package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
)

type PricingRepository interface {
	All(ctx context.Context) ([]models.ServicePricing, error)
	Find(ctx context.Context, serviceType string) (models.ServicePricing, error)
	UpdateCost(ctx context.Context, serviceType string, cost float64) (before models.ServicePricing, err error)
	Upsert(ctx context.Context, p models.ServicePricing) error
}

type MongoPricingRepository struct {
	col *mongo.Collection
}

func NewPricingRepository(db *mongo.Database) *MongoPricingRepository {
	return &MongoPricingRepository{col: db.Collection(models.PricingCollection)}
}

func (r *MongoPricingRepository) All(ctx context.Context) ([]models.ServicePricing, error) {
	defer metrics.ObserveDBQuery(models.PricingCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.M{"serviceType": bson.M{"$in": models.ServiceTypes}})
	if err != nil {
		return nil, translate("services: find", err)
	}
	out := []models.ServicePricing{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate("services: decode", err)
	}
	return out, nil
}

func (r *MongoPricingRepository) Find(ctx context.Context, serviceType string) (models.ServicePricing, error) {
	defer metrics.ObserveDBQuery(models.PricingCollection, "find_one", time.Now())

	var p models.ServicePricing
	err := r.col.FindOne(ctx, bson.M{"serviceType": serviceType}).Decode(&p)
	return p, translate("services: find "+serviceType, err)
}

// UpdateCost changes an existing category and returns it as it was before.
// Categories are never created here.
func (r *MongoPricingRepository) UpdateCost(ctx context.Context, serviceType string, cost float64) (models.ServicePricing, error) {
	defer metrics.ObserveDBQuery(models.PricingCollection, "update", time.Now())

	var before models.ServicePricing
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"serviceType": serviceType},
		bson.M{"$set": bson.M{"defaultCost": cost, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	return before, translate("services: update "+serviceType, err)
}

// Upsert writes p only when the category does not exist yet; seeding must
// not reset a cost an admin already changed.
func (r *MongoPricingRepository) Upsert(ctx context.Context, p models.ServicePricing) error {
	defer metrics.ObserveDBQuery(models.PricingCollection, "upsert", time.Now())

	_, err := r.col.UpdateOne(ctx,
		bson.M{"serviceType": p.ServiceType},
		bson.M{"$setOnInsert": bson.M{"serviceType": p.ServiceType, "defaultCost": p.DefaultCost, "updatedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return translate("services: upsert "+p.ServiceType, err)
}
