package storage

import (
	"context"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

type UserRepository interface {
	// CreateUser fails with internal.ErrConflict when the username or email is taken.
	CreateUser(ctx context.Context, user *internal.User) error
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
	// GetUserByLogin looks a user up by username or email.
	GetUserByLogin(ctx context.Context, login string) (*internal.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	// EnsureUser records a user vouched for by an external identity service.
	// An existing row with the same id is left as it is.
	EnsureUser(ctx context.Context, user *internal.User) error
}

type SessionRepository interface {
	SaveSession(ctx context.Context, session *internal.Session) error
	GetSession(ctx context.Context, token string) (*internal.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// EntryRepository scopes every lookup to the owning user.
type EntryRepository interface {
	InsertEntry(ctx context.Context, entry *internal.Entry) error
	UpdateEntry(ctx context.Context, entry *internal.Entry) error
	DeleteEntry(ctx context.Context, ownerID, id string) error
	GetEntry(ctx context.Context, ownerID, id string) (*internal.Entry, error)
	// ListEntries returns the owner's entries newest first.
	ListEntries(ctx context.Context, ownerID string) ([]internal.Entry, error)
}

type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile *internal.BabyProfile) error
	GetProfile(ctx context.Context, ownerID string) (*internal.BabyProfile, error)
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Users    UserRepository
	Sessions SessionRepository
	Entries  EntryRepository
	Profiles ProfileRepository
	close    func() error
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
