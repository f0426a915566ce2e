// Package controllers adapts HTTP requests onto the services.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/ctx"
)

// fail writes the response for err. notFound is the 404 message.
func fail(c *ctx.Context, err error, notFound string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		c.NotFound(notFound)
	case errors.Is(err, services.ErrInvalidRole):
		c.Field("role", "The selected role is invalid.")
	case errors.Is(err, services.ErrInvalidCost):
		c.Field("newCost", "The newCost must be a non-negative number.")
	case errors.Is(err, services.ErrUnknownService):
		c.Field("serviceType", "The selected serviceType is invalid.")
	case errors.Is(err, services.ErrNoImages):
		c.Field("QRImage", "The QRImage field is required.")
	case errors.Is(err, services.ErrNotImage):
		c.Field("file", "Please select a valid image file.")
	case errors.Is(err, services.ErrAccountExists):
		c.Error(http.StatusConflict, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Error(http.StatusUnauthorized, "Wrong credentials")
	case errors.Is(err, services.ErrInvalidResetToken):
		c.Error(http.StatusBadRequest, "Password reset link is invalid or has expired")
	default:
		c.ServerError(err)
	}
}
