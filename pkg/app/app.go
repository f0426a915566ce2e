// Package app assembles the HTTP handler and runs the shop's servers.
//
//	a := app.New().
//	    Routes(func(r *router.Router) { routes.RegisterAPI(r, ctrls) }).
//	    Probe("mongo", database.Ping).
//	    Background(hub.Run)
//	err := a.Serve(ctx)
//
// Serve blocks until ctx is cancelled, then drains HTTP, stops gRPC and
// runs the shutdown hooks in reverse order.
package app

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/laundry/pkg/grpc"
	"github.com/shashiranjanraj/laundry/pkg/router"
)

// Application collects everything Serve needs.
type Application struct {
	routesFns  []func(*router.Router)
	mounts     []mount
	probes     map[string]grpc.Probe
	background []func(context.Context)
	shutdown   []func(context.Context)
}

type mount struct {
	pattern, name string
	h             http.Handler
}

func New() *Application {
	return &Application{probes: map[string]grpc.Probe{}}
}

// Routes registers a route callback. Callbacks run in order each time a
// handler is built.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Mount serves h for every method under pattern, e.g. "/storage/*".
func (a *Application) Mount(pattern, name string, h http.Handler) *Application {
	a.mounts = append(a.mounts, mount{pattern: pattern, name: name, h: h})
	return a
}

// Probe adds a dependency check reported by the gRPC health server.
func (a *Application) Probe(name string, p grpc.Probe) *Application {
	a.probes[name] = p
	return a
}

// Background runs fn in its own goroutine for the lifetime of Serve.
func (a *Application) Background(fn func(context.Context)) *Application {
	a.background = append(a.background, fn)
	return a
}

// OnShutdown runs fn after the servers stopped.
func (a *Application) OnShutdown(fn func(context.Context)) *Application {
	a.shutdown = append(a.shutdown, fn)
	return a
}

// Router builds a router with only the registered routes and mounts, no
// global middleware. Used by route:list.
func (a *Application) Router() *router.Router {
	r := router.New()
	a.register(r)
	return r
}

func (a *Application) register(r *router.Router) {
	for _, m := range a.mounts {
		r.Handle(m.pattern, m.name, m.h)
	}
	for _, fn := range a.routesFns {
		fn(r)
	}
}
