package seeders

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/app/repositories/mocks"
	"github.com/shashiranjanraj/laundry/pkg/auth"
)

func TestSeedPricing(t *testing.T) {
	repo := &mocks.PricingRepository{}
	for st, cost := range DefaultPrices {
		repo.On("Upsert", mock.Anything, models.ServicePricing{ServiceType: st, DefaultCost: cost}).Return(nil).Once()
	}
	require.NoError(t, SeedPricing(context.Background(), repo))
	repo.AssertExpectations(t)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("skips without email", func(t *testing.T) {
		users := &mocks.UserRepository{}
		require.NoError(t, SeedAdmin(ctx, users, "", ""))
		users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("keeps existing", func(t *testing.T) {
		users := &mocks.UserRepository{}
		users.On("FindByEmail", mock.Anything, "boss@shop.ph").Return(models.User{Email: "boss@shop.ph"}, nil)
		require.NoError(t, SeedAdmin(ctx, users, " Boss@shop.ph ", "secret1"))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates admin", func(t *testing.T) {
		users := &mocks.UserRepository{}
		users.On("FindByEmail", mock.Anything, "boss@shop.ph").Return(models.User{}, repositories.ErrNotFound)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleAdmin && u.Username == "boss" && auth.CheckPassword(u.Password, "secret1")
		})).Return(nil)
		require.NoError(t, SeedAdmin(ctx, users, "boss@shop.ph", "secret1"))
		users.AssertExpectations(t)
	})
}

func TestRunAllStopsOnError(t *testing.T) {
	mu.Lock()
	saved := entries
	entries = nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		entries = saved
		mu.Unlock()
	})

	var ran []string
	Register("one", func(context.Context, *mongo.Database) error { ran = append(ran, "one"); return nil })
	Register("two", func(context.Context, *mongo.Database) error { return errors.New("boom") })
	Register("three", func(context.Context, *mongo.Database) error { ran = append(ran, "three"); return nil })

	var out bytes.Buffer
	err := RunAll(context.Background(), nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `seeder "two"`)
	assert.Equal(t, []string{"one"}, ran)
	assert.Contains(t, out.String(), "FAILED")
}
