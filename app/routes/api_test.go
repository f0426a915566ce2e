package routes_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/laundry/app/controllers"
	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/app/repositories/mocks"
	"github.com/shashiranjanraj/laundry/app/routes"
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/auth"
	"github.com/shashiranjanraj/laundry/pkg/cache"
	"github.com/shashiranjanraj/laundry/pkg/event"
	"github.com/shashiranjanraj/laundry/pkg/mail"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
	"github.com/shashiranjanraj/laundry/pkg/response"
	"github.com/shashiranjanraj/laundry/pkg/router"
	"github.com/shashiranjanraj/laundry/pkg/storage"
	"github.com/shashiranjanraj/laundry/pkg/testkit"
)

type fixture struct {
	h       http.Handler
	users   *mocks.UserRepository
	pricing *mocks.PricingRepository
	gcash   *mocks.GcashRepository
	stars   *mocks.StarRepository
	admin   string
	user    string
}

type discardDisk struct{}

func (discardDisk) Put(_ context.Context, p string, r io.Reader, _ string) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return "http://cdn/" + p, err
}

func (discardDisk) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (discardDisk) Exists(context.Context, string) bool {
	return false
}

func (discardDisk) Delete(context.Context, string) error {
	return nil
}

func (discardDisk) URL(p string) string {
	return "http://cdn/" + p
}

func setup(t *testing.T) *fixture {
	t.Helper()
	cache.Use(cache.NewMemory())
	t.Cleanup(event.Flush)

	f := &fixture{
		users:   &mocks.UserRepository{},
		pricing: &mocks.PricingRepository{},
		gcash:   &mocks.GcashRepository{},
		stars:   &mocks.StarRepository{},
	}
	r := router.New()
	routes.RegisterAPI(r, routes.Controllers{
		Auth:    controllers.NewAuthController(services.NewAuthService(f.users, mail.LogSender{})),
		Review:  controllers.NewReviewController(services.NewRoleService(f.users)),
		Pricing: controllers.NewPricingController(services.NewPricingService(f.pricing)),
		Gcash:   controllers.NewGcashController(services.NewGcashService(f.gcash, func() storage.Disk { return discardDisk{} })),
		Star:    controllers.NewStarController(services.NewStarService(f.stars)),
	})
	f.h = r

	var err error
	f.admin, err = auth.GenerateToken(primitive.NewObjectID().Hex(), models.RoleAdmin)
	require.NoError(t, err)
	f.user, err = auth.GenerateToken(primitive.NewObjectID().Hex(), models.RoleUser)
	require.NoError(t, err)
	return f
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	testkit.DecodeJSON(t, rec, &env)
	return env
}

func TestViewTOGuards(t *testing.T) {
	f := setup(t)
	f.users.On("All", mock.Anything).Return([]models.User{{Username: "ana", Role: "user"}}, nil)

	assert.Equal(t, http.StatusUnauthorized, testkit.Do(t, f.h, "GET", "/api/auth/viewTO", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, testkit.Do(t, f.h, "GET", "/api/auth/viewTO", nil, f.user).Code)

	rec := testkit.Do(t, f.h, "GET", "/api/auth/viewTO", nil, f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Users []models.User `json:"users"`
	}
	testkit.DecodeJSON(t, rec, &body)
	require.Len(t, body.Users, 1)
	assert.Equal(t, "ana", body.Users[0].Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRoleTransition(t *testing.T) {
	f := setup(t)
	id := primitive.NewObjectID()
	f.users.On("FindByID", mock.Anything, id).Return(models.User{ID: id, Role: "user"}, nil)
	f.users.On("UpdateRole", mock.Anything, id, "admin").Return(models.User{ID: id, Role: "admin"}, nil)
	missing := primitive.NewObjectID()
	f.users.On("FindByID", mock.Anything, missing).Return(models.User{}, repositories.ErrNotFound)

	rec := testkit.Do(t, f.h, "PUT", "/api/auth/role/"+id.Hex(), map[string]string{"role": "admin"}, f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var u models.User
	testkit.DecodeJSON(t, rec, &u)
	assert.Equal(t, "admin", u.Role)

	rec = testkit.Do(t, f.h, "PUT", "/api/auth/role/not-an-id", map[string]string{"role": "admin"}, f.admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testkit.Do(t, f.h, "PUT", "/api/auth/role/"+missing.Hex(), map[string]string{"role": "admin"}, f.admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testkit.Do(t, f.h, "PUT", "/api/auth/role/"+id.Hex(), map[string]string{"role": "owner"}, f.admin)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, envelope(t, rec).Errors, "role")

	rec = testkit.Do(t, f.h, "PUT", "/api/auth/role/"+id.Hex(), nil, f.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceShowAndUpdate(t *testing.T) {
	f := setup(t)
	f.pricing.On("Find", mock.Anything, models.SpecialItem).Return(models.ServicePricing{ServiceType: models.SpecialItem, DefaultCost: 300}, nil)
	f.pricing.On("UpdateCost", mock.Anything, models.SpecialItem, 350.0).Return(models.ServicePricing{ServiceType: models.SpecialItem, DefaultCost: 300}, nil)

	rec := testkit.Do(t, f.h, "GET", "/api/service/special", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.ServicePricing
	testkit.DecodeJSON(t, rec, &got)
	assert.Equal(t, 300.0, got.DefaultCost)

	assert.Equal(t, http.StatusNotFound, testkit.Do(t, f.h, "GET", "/api/service/ironing", nil, "").Code)

	rec = testkit.Do(t, f.h, "PUT", "/api/service/update", map[string]string{"serviceType": "SpecialItem", "newCost": "abc"}, f.admin)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, envelope(t, rec).Errors, "newCost")

	rec = testkit.Do(t, f.h, "PUT", "/api/service/update", map[string]string{"serviceType": "Laundry", "newCost": "10"}, f.admin)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, envelope(t, rec).Errors, "serviceType")

	assert.Equal(t, http.StatusForbidden,
		testkit.Do(t, f.h, "PUT", "/api/service/update", map[string]string{"serviceType": "SpecialItem", "newCost": "350"}, f.user).Code)

	rec = testkit.Do(t, f.h, "PUT", "/api/service/update", map[string]string{"serviceType": "SpecialItem", "newCost": "350"}, f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	testkit.DecodeJSON(t, rec, &got)
	assert.Equal(t, models.SpecialItem, got.ServiceType)
	assert.Equal(t, 350.0, got.DefaultCost)
}

func upload(t *testing.T, h http.Handler, token string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "qr.bin")
	require.NoError(t, err)
	_, _ = fw.Write(content)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/gcash/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGcashUpload(t *testing.T) {
	f := setup(t)

	rec := upload(t, f.h, f.admin, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	testkit.DecodeJSON(t, rec, &body)
	assert.Regexp(t, `^http://cdn/gcash/[0-9a-f-]{36}\.png$`, body["url"])

	rec = upload(t, f.h, f.admin, []byte("%PDF-1.4 not an image"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Please select a valid image file.", envelope(t, rec).Errors["file"])
}

func TestGcashCreateAndReplace(t *testing.T) {
	f := setup(t)
	id := primitive.NewObjectID()
	f.gcash.On("Create", mock.Anything, mock.AnythingOfType("*models.GcashEntry")).Return(nil)
	f.gcash.On("ReplaceImages", mock.Anything, id, []string{"http://cdn/b.png"}).
		Return(models.GcashEntry{ID: id, QRImage: []string{"http://cdn/b.png"}}, nil)

	rec := testkit.Do(t, f.h, "POST", "/api/gcash/gcash", map[string]interface{}{"QRImage": []string{}}, f.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = testkit.Do(t, f.h, "POST", "/api/gcash/gcash", map[string]interface{}{"QRImage": []string{"http://cdn/a.png"}}, f.admin)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = testkit.Do(t, f.h, "PUT", "/api/gcash/gcashU/"+id.Hex(), map[string]string{"QRImage": "http://cdn/b.png"}, f.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var e models.GcashEntry
	testkit.DecodeJSON(t, rec, &e)
	assert.Equal(t, []string{"http://cdn/b.png"}, e.QRImage)
}

func TestSigninSetsCookieAndSignoutRevokes(t *testing.T) {
	f := setup(t)
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	u := models.User{ID: primitive.NewObjectID(), Email: "ana@shop.ph", Password: hash, Role: "user"}
	f.users.On("FindByEmail", mock.Anything, "ana@shop.ph").Return(u, nil)

	rec := testkit.Do(t, f.h, "POST", "/api/auth/signin", map[string]string{"email": "ana@shop.ph", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	assert.Equal(t, http.StatusUnauthorized,
		testkit.Do(t, f.h, "POST", "/api/auth/signin", map[string]string{"email": "ana@shop.ph", "password": "nope"}, "").Code)

	assert.Equal(t, http.StatusConflict,
		testkit.Do(t, f.h, "POST", "/api/auth/signin", map[string]string{"email": "ana@shop.ph", "password": "secret1"}, cookie.Value).Code)

	rec = testkit.Do(t, f.h, "GET", "/api/auth/signout", nil, cookie.Value)
	require.Equal(t, http.StatusOK, rec.Code)
	testkit.AssertJSONBody(t, `{"message":"User has been signed out"}`, rec.Body.Bytes())

	// the signed-out token no longer authenticates
	assert.Equal(t, http.StatusUnauthorized,
		testkit.Do(t, f.h, "POST", "/api/star/create", map[string]interface{}{"rating": 5}, cookie.Value).Code)
}

func TestSignupDuplicate(t *testing.T) {
	f := setup(t)
	f.users.On("FindByEmail", mock.Anything, "ana@shop.ph").Return(models.User{Email: "ana@shop.ph"}, nil)

	rec := testkit.Do(t, f.h, "POST", "/api/auth/signup", map[string]string{
		"username": "ana", "email": "ana@shop.ph", "password": "secret1", "fullname": "Ana",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = testkit.Do(t, f.h, "POST", "/api/auth/signup", map[string]string{"email": "bad"}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := envelope(t, rec).Errors
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "email")
}

func TestResetPasswordBadToken(t *testing.T) {
	f := setup(t)
	rec := testkit.Do(t, f.h, "POST", "/api/auth/reset-password/deadbeef", map[string]string{"password": "newpass"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStars(t *testing.T) {
	f := setup(t)
	f.stars.On("Create", mock.Anything, mock.AnythingOfType("*models.StarRating")).Return(nil)
	f.stars.On("Summary", mock.Anything).Return(models.StarSummary{Count: 2, Average: 4.5}, nil)

	assert.Equal(t, http.StatusUnauthorized,
		testkit.Do(t, f.h, "POST", "/api/star/create", map[string]interface{}{"rating": 5}, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		testkit.Do(t, f.h, "POST", "/api/star/create", map[string]interface{}{"rating": 6}, f.user).Code)
	assert.Equal(t, http.StatusCreated,
		testkit.Do(t, f.h, "POST", "/api/star/create", map[string]interface{}{"rating": 4, "comment": "clean"}, f.user).Code)

	rec := testkit.Do(t, f.h, "GET", "/api/star/summary", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	testkit.AssertJSONBody(t, `{"count":2,"average":4.5}`, rec.Body.Bytes())
}

func TestRouteTableWithoutControllers(t *testing.T) {
	r := router.New()
	routes.RegisterAPI(r, routes.Controllers{})

	path, ok := r.Path("auth.role")
	require.True(t, ok)
	assert.Equal(t, "/api/auth/role/{orderId}", path)

	url, err := r.URL("service.show", map[string]string{"slug": "walk"})
	require.NoError(t, err)
	assert.Equal(t, "/api/service/walk", url)
}
