package seeders

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/auth"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// DefaultPrices is the opening price list, in pesos.
var DefaultPrices = map[string]float64{
	models.WalkIn:      150,
	models.DropOff:     180,
	models.WashAndDry:  200,
	models.SpecialItem: 300,
}

func init() {
	Register("pricing", func(ctx context.Context, db *mongo.Database) error {
		return SeedPricing(ctx, repositories.NewPricingRepository(db))
	})
	Register("admin", func(ctx context.Context, db *mongo.Database) error {
		return SeedAdmin(ctx, repositories.NewUserRepository(db),
			config.Get("ADMIN_EMAIL", ""), config.Get("ADMIN_PASSWORD", ""))
	})
}

// SeedPricing inserts any missing category. Existing rows keep their cost.
func SeedPricing(ctx context.Context, repo repositories.PricingRepository) error {
	for _, st := range models.ServiceTypes {
		if err := repo.Upsert(ctx, models.ServicePricing{ServiceType: st, DefaultCost: DefaultPrices[st]}); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates an admin for email unless one exists. Empty email skips.
func SeedAdmin(ctx context.Context, users repositories.UserRepository, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		logger.Info("seeders: ADMIN_EMAIL not set, skipping admin")
		return nil
	}
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if password == "" {
		password = auth.RandomToken(8)
		logger.Warn("seeders: ADMIN_PASSWORD not set, generated one", "email", email, "password", password)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return users.Create(ctx, &models.User{
		Username: strings.SplitN(email, "@", 2)[0],
		Email:    email,
		Fullname: "Administrator",
		Password: hash,
		Role:     models.RoleAdmin,
	})
}
