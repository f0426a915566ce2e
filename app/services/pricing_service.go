package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/cache"
	"github.com/shashiranjanraj/laundry/pkg/collection"
	"github.com/shashiranjanraj/laundry/pkg/event"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

func pricingKey(serviceType string) string { return "pricing:" + serviceType }

var costRE = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseCost accepts a plain non-negative decimal such as "150" or "89.50".
func ParseCost(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if !costRE.MatchString(raw) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCost, raw)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCost, raw)
	}
	return f, nil
}

type UpdatePricingInput struct {
	ServiceType string `json:"serviceType" validate:"required"`
	NewCost     string `json:"newCost" validate:"required"`
}

type PricingService struct {
	repo repositories.PricingRepository
}

func NewPricingService(repo repositories.PricingRepository) *PricingService {
	return &PricingService{repo: repo}
}

// Get resolves slug (walk, drop, wash, special) and reads through the cache.
func (s *PricingService) Get(ctx context.Context, slug string) (models.ServicePricing, error) {
	serviceType, ok := models.Slugs[slug]
	if !ok {
		return models.ServicePricing{}, fmt.Errorf("%w: %q", ErrUnknownService, slug)
	}

	var p models.ServicePricing
	if cache.Get(ctx, pricingKey(serviceType), &p) {
		return p, nil
	}
	p, err := s.repo.Find(ctx, serviceType)
	if err != nil {
		return models.ServicePricing{}, err
	}
	if err := cache.Set(ctx, pricingKey(serviceType), p, config.PricingCacheTTL()); err != nil {
		logger.WithCtx(ctx).Warn("pricing: cache set failed", "service_type", serviceType, "error", err)
	}
	return p, nil
}

// All returns the four categories in display order, skipping any not seeded.
func (s *PricingService) All(ctx context.Context) ([]models.ServicePricing, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	byType := collection.KeyBy(rows, func(p models.ServicePricing) string { return p.ServiceType })
	out := make([]models.ServicePricing, 0, len(rows))
	for _, t := range models.ServiceTypes {
		if p, ok := byType[t]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update sets the cost of one category from raw form text, drops its cache
// entry and fires EventPricingUpdated.
func (s *PricingService) Update(ctx context.Context, actorID string, in UpdatePricingInput) (models.ServicePricing, error) {
	if !models.ValidServiceType(in.ServiceType) {
		return models.ServicePricing{}, fmt.Errorf("%w: %q", ErrUnknownService, in.ServiceType)
	}
	cost, err := ParseCost(in.NewCost)
	if err != nil {
		return models.ServicePricing{}, err
	}

	before, err := s.repo.UpdateCost(ctx, in.ServiceType, cost)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.ServicePricing{}, fmt.Errorf("%w: %q not seeded", ErrUnknownService, in.ServiceType)
	}
	if err != nil {
		return models.ServicePricing{}, err
	}
	if err := cache.Forget(ctx, pricingKey(in.ServiceType)); err != nil {
		logger.WithCtx(ctx).Warn("pricing: cache forget failed", "service_type", in.ServiceType, "error", err)
	}

	event.Fire(ctx, models.EventPricingUpdated, models.PricingUpdated{
		ServiceType: in.ServiceType,
		From:        before.DefaultCost,
		To:          cost,
		ActorID:     actorID,
	})
	return models.ServicePricing{ServiceType: in.ServiceType, DefaultCost: cost}, nil
}
