package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/laundry/pkg/reqid"
	"github.com/shashiranjanraj/laundry/pkg/router"
)

func testApp() *Application {
	return New().
		Mount("/files/*", "files", http.StripPrefix("/files", http.FileServer(http.Dir(".")))).
		Routes(func(r *router.Router) {
			r.Get("/api/ping", "ping", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("pong"))
			})
		})
}

func TestHandler_MiddlewareAndRoutes(t *testing.T) {
	h := testApp().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ping", nil))
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(reqid.Header))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "laundry_http_requests_total")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPrintRoutes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintRoutes(&buf, testApp().Router()))
	out := buf.String()
	assert.Contains(t, out, "/api/ping")
	assert.Contains(t, out, "files")

	buf.Reset()
	require.NoError(t, PrintRoutes(&buf, router.New()))
	assert.Equal(t, "No named routes registered.\n", buf.String())
}
