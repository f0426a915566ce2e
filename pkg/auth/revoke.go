package auth

import (
	"context"
	"time"

	"github.com/shashiranjanraj/laundry/pkg/cache"
)

func revokedKey(jti string) string { return "auth:revoked:" + jti }

// Revoke denylists a token until it would have expired anyway.
func Revoke(ctx context.Context, c *Claims) error {
	if c == nil || c.ID == "" {
		return nil
	}
	ttl := TokenTTL
	if c.ExpiresAt != nil {
		ttl = time.Until(c.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return cache.Set(ctx, revokedKey(c.ID), true, ttl)
}

// IsRevoked reports whether the token was signed out.
func IsRevoked(ctx context.Context, c *Claims) bool {
	return c != nil && c.ID != "" && cache.Has(ctx, revokedKey(c.ID))
}
