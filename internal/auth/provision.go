package auth

import (
	"context"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

// Provisioning wraps an external provider so every user it vouches for has a
// row in users. Entries, profiles and avatars all hang off that row.
type Provisioning struct {
	next  Provider
	users storage.UserRepository
}

func NewProvisioning(next Provider, users storage.UserRepository) *Provisioning {
	return &Provisioning{next: next, users: users}
}

// ValidateToken returns the locally stored user, so fields kept here such as
// the avatar url are current.
func (p *Provisioning) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	user, err := p.next.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := p.users.EnsureUser(ctx, user); err != nil {
		return nil, &internal.StoreError{Op: "provision user " + user.ID, Cause: err}
	}
	stored, err := p.users.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, &internal.StoreError{Op: "load user " + user.ID, Cause: err}
	}
	return stored, nil
}

var _ Provider = (*Provisioning)(nil)
