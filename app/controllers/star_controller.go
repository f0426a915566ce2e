package controllers

import (
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/ctx"
)

type StarController struct {
	svc *services.StarService
}

func NewStarController(svc *services.StarService) *StarController {
	return &StarController{svc: svc}
}

func (s *StarController) Index(c *ctx.Context) {
	all, err := s.svc.List(c.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.OK(all)
}

func (s *StarController) Store(c *ctx.Context) {
	var in services.CreateStarInput
	if !c.BindJSON(&in) {
		return
	}
	r, err := s.svc.Create(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.Created(r)
}

func (s *StarController) Summary(c *ctx.Context) {
	sum, err := s.svc.Summary(c.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.OK(sum)
}
