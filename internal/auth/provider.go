package auth

import (
	"context"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// Provider resolves a bearer token to the user that owns it.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*internal.User, error)
}
