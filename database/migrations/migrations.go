// Package migrations holds the shop's Mongo index migrations. Importing it
// registers them with pkg/migration.
package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/migration"
	"github.com/shashiranjanraj/laundry/pkg/queue"
)

func init() {
	migration.Register("20260101000000_users_indexes", Indexes{
		Collection: models.UsersCollection,
		Models: []mongo.IndexModel{
			unique("users_email_unique", "email"),
			unique("users_username_unique", "username"),
		},
	})
	migration.Register("20260101000001_services_indexes", Indexes{
		Collection: models.PricingCollection,
		Models:     []mongo.IndexModel{unique("services_type_unique", "serviceType")},
	})
	migration.Register("20260101000002_stars_indexes", Indexes{
		Collection: models.StarsCollection,
		Models:     []mongo.IndexModel{desc("stars_created_at", "createdAt")},
	})
	migration.Register("20260101000003_gcash_indexes", Indexes{
		Collection: models.GcashCollection,
		Models:     []mongo.IndexModel{desc("gcash_created_at", "createdAt")},
	})
	migration.Register("20260101000004_failed_jobs_indexes", Indexes{
		Collection: queue.FailedJobsCollection,
		Models:     []mongo.IndexModel{desc("failed_jobs_failed_at", "failed_at")},
	})
}

func unique(name, field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetName(name).SetUnique(true),
	}
}

func desc(name, field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: -1}},
		Options: options.Index().SetName(name),
	}
}

// Indexes creates named indexes on one collection; Down drops them by name.
type Indexes struct {
	Collection string
	Models     []mongo.IndexModel
}

func (m Indexes) Up(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(m.Collection).Indexes().CreateMany(ctx, m.Models); err != nil {
		return fmt.Errorf("create indexes on %s: %w", m.Collection, err)
	}
	return nil
}

func (m Indexes) Names() []string {
	out := make([]string, 0, len(m.Models))
	for _, im := range m.Models {
		if im.Options != nil && im.Options.Name != nil {
			out = append(out, *im.Options.Name)
		}
	}
	return out
}

func (m Indexes) Down(ctx context.Context, db *mongo.Database) error {
	view := db.Collection(m.Collection).Indexes()
	for _, name := range m.Names() {
		if _, err := view.DropOne(ctx, name); err != nil {
			return fmt.Errorf("drop index %s: %w", name, err)
		}
	}
	return nil
}
