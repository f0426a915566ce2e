// Package mocks has testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/laundry/app/models"
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) All(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil && u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error) {
	args := m.Called(ctx, id, role)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

type PricingRepository struct{ mock.Mock }

func (m *PricingRepository) All(ctx context.Context) ([]models.ServicePricing, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.ServicePricing)
	return out, args.Error(1)
}

func (m *PricingRepository) Find(ctx context.Context, serviceType string) (models.ServicePricing, error) {
	args := m.Called(ctx, serviceType)
	return args.Get(0).(models.ServicePricing), args.Error(1)
}

func (m *PricingRepository) UpdateCost(ctx context.Context, serviceType string, cost float64) (models.ServicePricing, error) {
	args := m.Called(ctx, serviceType, cost)
	return args.Get(0).(models.ServicePricing), args.Error(1)
}

func (m *PricingRepository) Upsert(ctx context.Context, p models.ServicePricing) error {
	return m.Called(ctx, p).Error(0)
}

type GcashRepository struct{ mock.Mock }

func (m *GcashRepository) All(ctx context.Context) ([]models.GcashEntry, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.GcashEntry)
	return out, args.Error(1)
}

func (m *GcashRepository) Create(ctx context.Context, e *models.GcashEntry) error {
	args := m.Called(ctx, e)
	if args.Error(0) == nil && e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *GcashRepository) ReplaceImages(ctx context.Context, id primitive.ObjectID, images []string) (models.GcashEntry, error) {
	args := m.Called(ctx, id, images)
	return args.Get(0).(models.GcashEntry), args.Error(1)
}

type StarRepository struct{ mock.Mock }

func (m *StarRepository) All(ctx context.Context) ([]models.StarRating, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.StarRating)
	return out, args.Error(1)
}

func (m *StarRepository) Create(ctx context.Context, s *models.StarRating) error {
	return m.Called(ctx, s).Error(0)
}

func (m *StarRepository) Summary(ctx context.Context) (models.StarSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StarSummary), args.Error(1)
}
