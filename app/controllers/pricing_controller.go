package controllers

import (
	"errors"

	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/ctx"
)

type PricingController struct {
	svc *services.PricingService
}

func NewPricingController(svc *services.PricingService) *PricingController {
	return &PricingController{svc: svc}
}

func (p *PricingController) Index(c *ctx.Context) {
	all, err := p.svc.All(c.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.OK(all)
}

// Show handles GET /api/service/{slug}. An unknown slug is a 404 here, not a
// validation error.
func (p *PricingController) Show(c *ctx.Context) {
	sp, err := p.svc.Get(c.Context(), c.Param("slug"))
	if errors.Is(err, services.ErrUnknownService) {
		c.NotFound("Service not found")
		return
	}
	if err != nil {
		fail(c, err, "Service not found")
		return
	}
	c.OK(sp)
}

func (p *PricingController) Update(c *ctx.Context) {
	var in services.UpdatePricingInput
	if !c.BindJSON(&in) {
		return
	}
	sp, err := p.svc.Update(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err, "Service not found")
		return
	}
	c.OK(sp)
}
