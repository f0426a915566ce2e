// Package services holds the shop's business rules. Controllers map the
// sentinel errors below onto HTTP statuses with errors.Is.
package services

import "errors"

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("reset token is invalid or has expired")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUnknownService     = errors.New("unknown service type")
	ErrInvalidCost        = errors.New("cost must be a non-negative number")
	ErrNoImages           = errors.New("at least one QR image is required")
	ErrNotImage           = errors.New("file is not an image")
)
