package dashboard

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// PricingUpdatedNotice is shown after a successful update.
const PricingUpdatedNotice = "Service updated successfully!"

// PricingForm is the admin price editor. NewCost stays raw text; the server
// validates it.
type PricingForm struct {
	api *Client

	mu          sync.Mutex
	serviceType string
	newCost     string
}

func NewPricingForm(api *Client) *PricingForm { return &PricingForm{api: api} }

func (f *PricingForm) SetServiceType(st string) {
	f.mu.Lock()
	f.serviceType = st
	f.mu.Unlock()
}

func (f *PricingForm) SetNewCost(text string) {
	f.mu.Lock()
	f.newCost = text
	f.mu.Unlock()
}

func (f *PricingForm) Values() (serviceType, newCost string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serviceType, f.newCost
}

// Submit sends the form. Success clears both fields; the pricing board
// picks the change up on its next tick.
func (f *PricingForm) Submit(ctx context.Context) (string, error) {
	st, cost := f.Values()
	if err := f.api.UpdatePricing(ctx, st, cost); err != nil {
		logger.WithCtx(ctx).Error("dashboard: update pricing", "service_type", st, "error", err)
		return "", err
	}
	f.mu.Lock()
	f.serviceType, f.newCost = "", ""
	f.mu.Unlock()
	return PricingUpdatedNotice, nil
}
