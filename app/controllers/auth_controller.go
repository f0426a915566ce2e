package controllers

import (
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/auth"
	"github.com/shashiranjanraj/laundry/pkg/ctx"
	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
)

type AuthController struct {
	svc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{svc: svc}
}

func (a *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := a.svc.Signup(c.Context(), in)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.Created(u)
}

type signinInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (a *AuthController) Signin(c *ctx.Context) {
	var in signinInput
	if !c.BindJSON(&in) {
		return
	}
	sess, err := a.svc.Signin(c.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.SetToken(sess.Token, auth.TokenTTL)
	c.OK(sess)
}

func (a *AuthController) Google(c *ctx.Context) {
	var in services.GoogleInput
	if !c.BindJSON(&in) {
		return
	}
	sess, err := a.svc.Google(c.Context(), in)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.SetToken(sess.Token, auth.TokenTTL)
	c.OK(sess)
}

// Signout always clears the cookie; a presented token is also revoked.
func (a *AuthController) Signout(c *ctx.Context) {
	claims, _ := middleware.ClaimsFromCtx(c.R)
	if err := a.svc.Signout(c.Context(), claims); err != nil {
		logger.WithCtx(c.Context()).Warn("auth: revoke failed", "error", err)
	}
	c.ClearToken()
	c.Message("User has been signed out")
}

type forgetInput struct {
	Email string `json:"email" validate:"required,email"`
}

func (a *AuthController) Forget(c *ctx.Context) {
	var in forgetInput
	if !c.BindJSON(&in) {
		return
	}
	if err := a.svc.Forget(c.Context(), in.Email); err != nil {
		fail(c, err, "")
		return
	}
	c.Message("If that email is registered, a reset link has been sent")
}

type resetInput struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (a *AuthController) ResetPassword(c *ctx.Context) {
	var in resetInput
	if !c.BindJSON(&in) {
		return
	}
	if err := a.svc.ResetPassword(c.Context(), c.Param("token"), in.Password); err != nil {
		fail(c, err, "")
		return
	}
	c.Message("Password has been reset")
}
