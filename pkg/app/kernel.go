package app

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/laundry/pkg/metrics"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
	"github.com/shashiranjanraj/laundry/pkg/reqid"
	"github.com/shashiranjanraj/laundry/pkg/router"
)

// Handler builds the full HTTP handler.
//
// Global middleware, outermost first:
//  1. Prometheus metrics, for total latency
//  2. Recovery
//  3. Request ID, before anything logs
//  4. Access log
//  5. CORS
//  6. Rate limiter
func (a *Application) Handler() http.Handler {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	a.register(r)
	return r.Handler()
}
