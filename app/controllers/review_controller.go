package controllers

import (
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/ctx"
)

// ReviewController serves the admin review table.
type ReviewController struct {
	svc *services.RoleService
}

func NewReviewController(svc *services.RoleService) *ReviewController {
	return &ReviewController{svc: svc}
}

// ViewTO handles GET /api/auth/viewTO.
func (rc *ReviewController) ViewTO(c *ctx.Context) {
	users, err := rc.svc.List(c.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.OK(map[string]interface{}{"users": users})
}

type roleInput struct {
	Role string `json:"role" validate:"required"`
}

// Role handles PUT /api/auth/role/{orderId}.
func (rc *ReviewController) Role(c *ctx.Context) {
	var in roleInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := rc.svc.ChangeRole(c.Context(), c.UserID(), c.Param("orderId"), in.Role)
	if err != nil {
		fail(c, err, "Order not found")
		return
	}
	c.OK(u)
}
