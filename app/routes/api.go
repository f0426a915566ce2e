// Package routes mounts the shop's HTTP API.
package routes

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/laundry/app/controllers"
	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/ctx"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
	"github.com/shashiranjanraj/laundry/pkg/rbac"
	"github.com/shashiranjanraj/laundry/pkg/router"
)

// Controllers groups every handler set. Nil members are fine when only the
// route table is needed.
type Controllers struct {
	Auth    *controllers.AuthController
	Review  *controllers.ReviewController
	Pricing *controllers.PricingController
	Gcash   *controllers.GcashController
	Star    *controllers.StarController

	// PricingFeed is the websocket endpoint for live price changes.
	PricingFeed http.Handler
	// PricingEvents is the Server-Sent Events variant of PricingFeed.
	PricingEvents http.Handler
}

func RegisterAPI(r *router.Router, c Controllers) {
	admin := rbac.HasRole(models.RoleAdmin)
	authed := middleware.AuthMiddleware

	api := r.Group("/api")

	a := api.Group("/auth")
	guest := a.Group("", middleware.OptionalAuth, rbac.Guest, middleware.RateLimit(20, time.Minute))
	guest.Post("/signup", "auth.signup", ctx.Wrap(c.Auth.Signup))
	guest.Post("/signin", "auth.signin", ctx.Wrap(c.Auth.Signin))
	guest.Post("/google", "auth.google", ctx.Wrap(c.Auth.Google))
	a.Get("/signout", "auth.signout", ctx.Wrap(c.Auth.Signout), middleware.OptionalAuth)
	a.Post("/forget", "auth.forget", ctx.Wrap(c.Auth.Forget), middleware.RateLimit(5, time.Minute))
	a.Post("/reset-password/{token}", "auth.reset", ctx.Wrap(c.Auth.ResetPassword))
	a.Put("/role/{orderId}", "auth.role", ctx.Wrap(c.Review.Role), authed, admin)
	a.Get("/viewTO", "auth.viewTO", ctx.Wrap(c.Review.ViewTO), authed, admin)

	svc := api.Group("/service")
	svc.Get("", "service.index", ctx.Wrap(c.Pricing.Index))
	svc.Put("/update", "service.update", ctx.Wrap(c.Pricing.Update), authed, admin)
	svc.Get("/{slug}", "service.show", ctx.Wrap(c.Pricing.Show))
	if c.PricingFeed != nil {
		r.Handle("/api/service/ws", "service.ws", c.PricingFeed)
	}
	if c.PricingEvents != nil {
		r.Handle("/api/service/events", "service.events", c.PricingEvents)
	}

	g := api.Group("/gcash")
	g.Get("/gcashV", "gcash.index", ctx.Wrap(c.Gcash.Index))
	g.Post("/gcash", "gcash.store", ctx.Wrap(c.Gcash.Store), authed, admin)
	g.Put("/gcashU/{id}", "gcash.update", ctx.Wrap(c.Gcash.Update), authed, admin)
	g.Post("/upload", "gcash.upload", ctx.Wrap(c.Gcash.Upload), authed, admin)

	st := api.Group("/star")
	st.Get("/view", "star.index", ctx.Wrap(c.Star.Index))
	st.Get("/summary", "star.summary", ctx.Wrap(c.Star.Summary))
	st.Post("/create", "star.store", ctx.Wrap(c.Star.Store), authed)
}
