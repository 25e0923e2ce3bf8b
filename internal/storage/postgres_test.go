package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// Runs only when POSTGRES_TEST_DSN points at a disposable database.
func TestPostgresRepositories(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	repos, err := NewPostgresRepositories(ctx, dsn, internal.NopLogger())
	require.NoError(t, err)
	defer repos.Close()

	suffix := uuid.NewString()[:8]
	user := &internal.User{ID: uuid.NewString(), Username: "pg-" + suffix, Email: suffix + "@example.com", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Users.CreateUser(ctx, user))
	dup := *user
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repos.Users.CreateUser(ctx, &dup), internal.ErrConflict)

	entry := &internal.Entry{ID: uuid.NewString(), OwnerID: user.ID, CreatedAt: time.Now().UTC(), Payload: internal.Feeding{Method: internal.FeedingBottle}}
	require.NoError(t, repos.Entries.InsertEntry(ctx, entry))
	list, err := repos.Entries.ListEntries(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, internal.KindFeeding, list[0].Kind())

	require.NoError(t, repos.Profiles.UpsertProfile(ctx, &internal.BabyProfile{OwnerID: user.ID, Name: "Ana", WeightKg: 3, LengthCm: 50, BirthDate: "2026-01-01", Conditions: []string{"colic"}}))
	p, err := repos.Profiles.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", p.BirthDate)

	external := &internal.User{ID: uuid.NewString(), Username: "ext-" + suffix}
	require.NoError(t, repos.Users.EnsureUser(ctx, external))
	require.NoError(t, repos.Users.EnsureUser(ctx, external))
	require.NoError(t, repos.Entries.InsertEntry(ctx, &internal.Entry{ID: uuid.NewString(), OwnerID: external.ID, CreatedAt: time.Now().UTC(), Payload: internal.Diaper{Status: internal.DiaperClean}}))

	orphan := &internal.Entry{ID: uuid.NewString(), OwnerID: "no-such-user", CreatedAt: time.Now().UTC(), Payload: internal.Diaper{Status: internal.DiaperClean}}
	assert.ErrorIs(t, repos.Entries.InsertEntry(ctx, orphan), internal.ErrNotFound)

	require.NoError(t, repos.Entries.DeleteEntry(ctx, user.ID, entry.ID))
	assert.ErrorIs(t, repos.Entries.DeleteEntry(ctx, user.ID, entry.ID), internal.ErrNotFound)
}
