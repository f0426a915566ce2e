package schema_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories/mocks"
	"github.com/shashiranjanraj/laundry/app/schema"
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/auth"
	"github.com/shashiranjanraj/laundry/pkg/cache"
	gql "github.com/shashiranjanraj/laundry/pkg/graphql"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
	"github.com/shashiranjanraj/laundry/pkg/testkit"
)

type result struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func handler(t *testing.T) (http.Handler, *mocks.UserRepository, *mocks.PricingRepository, *mocks.StarRepository) {
	t.Helper()
	cache.Use(cache.NewMemory())
	users, pricing, stars := &mocks.UserRepository{}, &mocks.PricingRepository{}, &mocks.StarRepository{}
	s, err := schema.New(schema.Resolvers{
		Pricing: services.NewPricingService(pricing),
		Roles:   services.NewRoleService(users),
		Stars:   services.NewStarService(stars),
	})
	require.NoError(t, err)
	return gql.Handler(s), users, pricing, stars
}

func query(t *testing.T, h http.Handler, q string, claims *auth.Claims) result {
	t.Helper()
	req := httptest.NewRequest("GET", "/graphql?query="+url.QueryEscape(q), nil)
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(context.Background(), claims))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var res result
	testkit.DecodeJSON(t, rec, &res)
	return res
}

func TestServicesQuery(t *testing.T) {
	h, _, pricing, _ := handler(t)
	pricing.On("Find", mock.Anything, models.WashAndDry).
		Return(models.ServicePricing{ServiceType: models.WashAndDry, DefaultCost: 180}, nil)

	res := query(t, h, `{ service(slug: "wash") { serviceType slug defaultCost } }`, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]interface{}{
		"serviceType": "WashAndDry", "slug": "wash", "defaultCost": 180.0,
	}, res.Data["service"])

	res = query(t, h, `{ service(slug: "iron") { serviceType } }`, nil)
	assert.NotEmpty(t, res.Errors)
}

func TestUsersQueryIsAdminOnly(t *testing.T) {
	h, users, _, _ := handler(t)
	users.On("All", mock.Anything).Return([]models.User{
		{Username: "ana", Role: models.RoleAdmin},
		{Username: "ben", Role: models.RoleUser},
	}, nil)

	res := query(t, h, `{ users { username } }`, &auth.Claims{UserID: "u1", Role: models.RoleUser})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "admin only", res.Errors[0].Message)

	res = query(t, h, `{ users(role: "user") { username role } }`, &auth.Claims{UserID: "a1", Role: models.RoleAdmin})
	require.Empty(t, res.Errors)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"username": "ben", "role": "user"},
	}, res.Data["users"])
}

func TestStarSummaryQuery(t *testing.T) {
	h, _, _, stars := handler(t)
	stars.On("Summary", mock.Anything).Return(models.StarSummary{Count: 3, Average: 4.33}, nil)

	res := query(t, h, `{ starSummary { count average } }`, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]interface{}{"count": 3.0, "average": 4.33}, res.Data["starSummary"])
}

func TestHandlerRequiresQuery(t *testing.T) {
	h, _, _, stars := handler(t)
	stars.On("Summary", mock.Anything).Return(models.StarSummary{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/graphql", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testkit.Do(t, h, "POST", "/graphql", map[string]string{"query": "{ starSummary { count } }"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
