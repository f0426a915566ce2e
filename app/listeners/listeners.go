// Package listeners reacts to domain events: live price pushes, metrics and
// the audit trail.
package listeners

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/laundry/app/jobs"
	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/event"
	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
	"github.com/shashiranjanraj/laundry/pkg/queue"
)

// Broadcaster pushes a JSON frame to connected dashboards.
type Broadcaster interface {
	BroadcastJSON(v interface{}) error
}

// Fanout sends every frame to each broadcaster in turn.
type Fanout []Broadcaster

func (f Fanout) BroadcastJSON(v interface{}) error {
	var errs []error
	for _, b := range f {
		if b == nil {
			continue
		}
		if err := b.BroadcastJSON(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher queues a job.
type Dispatcher func(ctx context.Context, job queue.Job) error

// PriceFrame is the live-feed message sent after a price change.
type PriceFrame struct {
	Type        string  `json:"type"`
	ServiceType string  `json:"serviceType"`
	DefaultCost float64 `json:"defaultCost"`
}

// Register wires every listener. hub may be nil.
func Register(hub Broadcaster, dispatch Dispatcher) {
	audit := func(name string) event.Handler {
		return func(ctx context.Context, payload interface{}) {
			job, err := jobs.NewAudit(name, payload)
			if err == nil {
				err = dispatch(ctx, job)
			}
			if err != nil {
				logger.WithCtx(ctx).Error("listeners: audit dispatch failed", "event", name, "error", err)
			}
		}
	}

	event.Listen(models.EventRoleChanged, func(_ context.Context, payload interface{}) {
		if p, ok := payload.(models.RoleChanged); ok {
			metrics.RoleTransitions.WithLabelValues(p.To).Inc()
		}
	})
	event.Listen(models.EventRoleChanged, audit(models.EventRoleChanged))

	event.Listen(models.EventPricingUpdated, func(ctx context.Context, payload interface{}) {
		p, ok := payload.(models.PricingUpdated)
		if !ok {
			return
		}
		metrics.PricingUpdates.WithLabelValues(p.ServiceType).Inc()
		if hub == nil {
			return
		}
		if err := hub.BroadcastJSON(PriceFrame{Type: models.EventPricingUpdated, ServiceType: p.ServiceType, DefaultCost: p.To}); err != nil {
			logger.WithCtx(ctx).Warn("listeners: broadcast failed", "error", err)
		}
	})
	event.Listen(models.EventPricingUpdated, audit(models.EventPricingUpdated))

	event.Listen(models.EventGcashUpdated, audit(models.EventGcashUpdated))
}
