package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/collection"
	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
	"github.com/shashiranjanraj/laundry/pkg/schedule"
	"github.com/shashiranjanraj/laundry/pkg/workerpool"
)

// ErrUnknownService is returned for a category with no URL slug.
var ErrUnknownService = errors.New("dashboard: unknown service type")

// LoadingText is displayed for a category that never fetched successfully.
const LoadingText = "Loading..."

// PricingBoard keeps the four category prices fresh by polling.
type PricingBoard struct {
	api      *Client
	interval time.Duration

	mu     sync.RWMutex
	prices map[string]models.ServicePricing
	errs   map[string]error
}

func NewPricingBoard(api *Client, interval time.Duration) *PricingBoard {
	if interval <= 0 {
		interval = time.Second
	}
	return &PricingBoard{
		api:      api,
		interval: interval,
		prices:   make(map[string]models.ServicePricing, len(models.ServiceTypes)),
		errs:     make(map[string]error, len(models.ServiceTypes)),
	}
}

// Run fetches every category now and then once per interval until ctx is
// done. One tick drives all four fetches, but each category has its own
// pool, so a hung endpoint only backs up its own category. Ticks may overlap
// when the API is slow, and whichever response lands last wins.
func (b *PricingBoard) Run(ctx context.Context) {
	pools := make(map[string]*workerpool.Pool, len(models.ServiceTypes))
	for _, st := range models.ServiceTypes {
		pools[st] = workerpool.New("pricing-poll."+st, pollWorkers)
	}
	defer func() {
		for _, p := range pools {
			p.Shutdown()
		}
	}()

	s := schedule.New()
	s.Every(b.interval).Name("pricing.poll").Immediately().Run(func(context.Context) {
		for _, st := range models.ServiceTypes {
			st := st
			if err := pools[st].Submit(func() { _ = b.fetch(ctx, st) }); err != nil {
				metrics.PollFetches.WithLabelValues(st, "dropped").Inc()
				logger.WithCtx(ctx).Warn("dashboard: poll backlog full", "service_type", st, "error", err)
			}
		}
	})
	s.Start(ctx)
	<-ctx.Done()
	s.Wait()
}

// pollWorkers bounds in-flight fetches per category. A category whose
// endpoint hangs for the full client timeout keeps about five in flight at
// the default interval; beyond the pool's backlog its ticks are dropped.
const pollWorkers = 6

// Refresh runs a single round of fetches and returns the joined failures.
func (b *PricingBoard) Refresh(ctx context.Context) error {
	pool := workerpool.New("pricing-refresh", len(models.ServiceTypes))
	defer pool.Shutdown()

	var (
		mu   sync.Mutex
		errs []error
	)
	tasks := make([]func(), 0, len(models.ServiceTypes))
	for _, st := range models.ServiceTypes {
		st := st
		tasks = append(tasks, func() {
			if err := b.fetch(ctx, st); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}
	if err := pool.Batch(ctx, tasks...); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (b *PricingBoard) fetch(ctx context.Context, serviceType string) error {
	slug, ok := models.SlugFor(serviceType)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownService, serviceType)
	}
	p, err := b.api.Pricing(ctx, slug)
	if err != nil {
		metrics.PollFetches.WithLabelValues(serviceType, "error").Inc()
		logger.WithCtx(ctx).Warn("dashboard: fetch pricing", "service_type", serviceType, "error", err)
		b.mu.Lock()
		b.errs[serviceType] = err
		b.mu.Unlock()
		return fmt.Errorf("%s: %w", serviceType, err)
	}
	metrics.PollFetches.WithLabelValues(serviceType, "ok").Inc()
	b.mu.Lock()
	b.prices[serviceType] = p
	delete(b.errs, serviceType)
	b.mu.Unlock()
	return nil
}

// Price is the last good value for serviceType.
func (b *PricingBoard) Price(serviceType string) (models.ServicePricing, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.prices[serviceType]
	return p, ok
}

// Err is the failure of the latest fetch for serviceType, nil after a
// success.
func (b *PricingBoard) Err(serviceType string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.errs[serviceType]
}

// Display renders a category as "₱ 150", or LoadingText.
func (b *PricingBoard) Display(serviceType string) string {
	p, ok := b.Price(serviceType)
	if !ok {
		return LoadingText
	}
	return FormatPeso(p.DefaultCost)
}

// Snapshot renders all categories in display order.
func (b *PricingBoard) Snapshot() []string {
	return collection.Map(models.ServiceTypes, func(st string) string {
		return st + ": " + b.Display(st)
	})
}

func FormatPeso(cost float64) string {
	return "₱ " + strconv.FormatFloat(cost, 'f', -1, 64)
}
