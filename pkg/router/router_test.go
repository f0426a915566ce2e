package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/laundry/pkg/router"
)

func TestGroupRoutesAndNames(t *testing.T) {
	r := router.New()
	var order []string
	tag := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api", tag("api"))
	auth := api.Group("auth/", tag("auth"))
	auth.Put("/role/{orderId}", "auth.role", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(chi.URLParam(req, "orderId")))
	}, tag("route"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/auth/role/abc", nil))

	assert.Equal(t, "abc", rec.Body.String())
	assert.Equal(t, []string{"api", "auth", "route"}, order)

	url, err := r.URL("auth.role", map[string]string{"orderId": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/role/42", url)

	_, err = r.URL("auth.role", nil)
	assert.Error(t, err)
	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesSorted(t *testing.T) {
	r := router.New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Post("/b", "b", noop)
	r.Get("/a", "a", noop)
	r.Get("/b", "", noop)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.Route{Method: "GET", Path: "/a", Name: "a"}, routes[0])
	assert.Equal(t, "GET", routes[1].Method)
	assert.Equal(t, "POST", routes[2].Method)
}
