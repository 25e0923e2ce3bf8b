package service

import (
	"context"
	"time"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

// SaveProfile upserts the caller's only baby profile; a second save overwrites the first.
func SaveProfile(ctx context.Context, repo storage.ProfileRepository, user *internal.User, req *internal.BabyProfile) (*internal.BabyProfile, error) {
	profile, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	profile.OwnerID = user.ID
	profile.UpdatedAt = time.Now().UTC()
	if err := repo.UpsertProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
