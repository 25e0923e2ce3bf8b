package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

type EntryRequest struct {
	Kind        internal.EntryKind `json:"kind" validate:"required,oneof=diaper sleep feeding"`
	Observation string             `json:"observation" validate:"max=2000"`
	Data        json.RawMessage    `json:"data" validate:"required"`
}

// ValidateEntryRequest checks the envelope and returns the normalized payload.
func ValidateEntryRequest(req *EntryRequest) (internal.Payload, error) {
	if err := internal.FromValidator(internal.Validator().Struct(req)); err != nil {
		return nil, err
	}
	payload, err := internal.DecodePayload(req.Kind, req.Data)
	if err != nil {
		return nil, err
	}
	return payload.Normalize()
}

// CreateEntry assigns id and timestamp; derived fields are always recomputed.
func CreateEntry(ctx context.Context, repo storage.EntryRepository, user *internal.User, req *EntryRequest) (*internal.Entry, error) {
	payload, err := ValidateEntryRequest(req)
	if err != nil {
		return nil, err
	}
	entry := &internal.Entry{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		CreatedAt:   time.Now().UTC(),
		Observation: req.Observation,
		Payload:     payload,
	}
	if err := repo.InsertEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func UpdateEntry(ctx context.Context, repo storage.EntryRepository, user *internal.User, id string, changes internal.EntryChanges) (*internal.Entry, error) {
	current, err := repo.GetEntry(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	updated, err := current.Apply(changes)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateEntry(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func DeleteEntry(ctx context.Context, repo storage.EntryRepository, user *internal.User, id string) error {
	return repo.DeleteEntry(ctx, user.ID, id)
}
