// Package ctx gives handlers a single request context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (c *PricingController) Show(x *ctx.Context) {
//	    p, err := c.svc.Get(x.Context(), x.Param("slug"))
//	    ...
//	    x.OK(p)
//	}
//
//	api.Get("/service/{slug}", "service.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/bind"
	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
	"github.com/shashiranjanraj/laundry/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// ─── Request ──────────────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// Query returns a query-string value, or def when absent.
func (c *Context) Query(key, def string) string {
	if v := c.R.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

func (c *Context) Context() context.Context { return c.R.Context() }

// UserID is the authenticated user's id, "" for anonymous requests.
func (c *Context) UserID() string {
	id, _ := middleware.UserIDFromCtx(c.R)
	return id
}

// BindJSON decodes and validates the body into dest. On failure it writes
// a 400 or 422 and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, bind.ErrEmptyBody) {
			msg = "Request body is required"
		}
		c.Error(http.StatusBadRequest, msg)
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response ─────────────────────────────────────────────────────────────────

func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

func (c *Context) OK(v any)      { c.JSON(http.StatusOK, v) }
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

func (c *Context) Message(msg string) {
	c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, errs)
}

// Field sends a 422 for a single field.
func (c *Context) Field(name, message string) {
	c.ValidationError(map[string]string{name: message})
}

func (c *Context) NotFound(message string) { c.Error(http.StatusNotFound, message) }

// ServerError logs err with the request logger and sends a generic 500.
func (c *Context) ServerError(err error) {
	logger.WithCtx(c.Context()).Error("request failed", "error", err, "path", c.R.URL.Path)
	c.Error(http.StatusInternalServerError, "Internal Server Error")
}

// SetToken stores the access token in an httpOnly cookie.
func (c *Context) SetToken(token string, ttl time.Duration) {
	http.SetCookie(c.W, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   config.AppEnv() == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearToken expires the access token cookie.
func (c *Context) ClearToken() {
	http.SetCookie(c.W, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// WrittenStatus is the status code written so far, 0 if none.
func (c *Context) WrittenStatus() int { return c.status }
