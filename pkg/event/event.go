// Package event is an in-process dispatcher for domain events.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// Handler receives one event payload.
type Handler func(ctx context.Context, payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

func Listen(name string, h Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], h)
}

func listeners(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Handler(nil), handlers[name]...)
}

// Fire runs every listener in registration order on the caller's goroutine.
// A panicking listener is logged and the rest still run.
func Fire(ctx context.Context, name string, payload interface{}) {
	for _, h := range listeners(name) {
		call(ctx, name, h, payload)
	}
}

// FireAsync runs each listener on its own goroutine, detached from ctx's
// cancellation but keeping its values.
func FireAsync(ctx context.Context, name string, payload interface{}) {
	detached := context.WithoutCancel(ctx)
	for _, h := range listeners(name) {
		go call(detached, name, h, payload)
	}
}

func call(ctx context.Context, name string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", r)
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
