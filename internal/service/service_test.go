package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

func setupRepos(t *testing.T) *storage.Repositories {
	t.Helper()
	repos, err := storage.NewFileRepositories(t.TempDir(), internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestCreateEntryRecomputesDuration(t *testing.T) {
	repos := setupRepos(t)
	user := &internal.User{ID: "u1"}

	entry, err := CreateEntry(context.Background(), repos.Entries, user, &EntryRequest{
		Kind: internal.KindSleep,
		Data: json.RawMessage(`{"start":"22:00","end":"06:00","duration_minutes":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", entry.OwnerID)
	assert.NotEmpty(t, entry.ID)
	assert.WithinDuration(t, time.Now(), entry.CreatedAt, time.Minute)
	assert.Equal(t, 480, entry.Payload.(internal.Sleep).DurationMinutes)
}

func TestValidateEntryRequest(t *testing.T) {
	_, err := ValidateEntryRequest(&EntryRequest{Kind: "bath", Data: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, internal.ErrValidation)

	_, err = ValidateEntryRequest(&EntryRequest{Kind: internal.KindDiaper})
	assert.ErrorIs(t, err, internal.ErrValidation)

	_, err = ValidateEntryRequest(&EntryRequest{Kind: internal.KindSleep, Data: json.RawMessage(`{"start":"07:00","end":"07:00"}`)})
	assert.ErrorIs(t, err, internal.ErrValidation)

	p, err := ValidateEntryRequest(&EntryRequest{Kind: internal.KindFeeding, Data: json.RawMessage(`{"method":"purée"}`)})
	require.NoError(t, err)
	assert.Equal(t, internal.Feeding{Method: internal.FeedingPuree}, p)
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	owner := &internal.User{ID: "u1"}
	stranger := &internal.User{ID: "u2"}

	entry, err := CreateEntry(ctx, repos.Entries, owner, &EntryRequest{Kind: internal.KindDiaper, Data: json.RawMessage(`{"status":"clean"}`)})
	require.NoError(t, err)

	note := "after bath"
	_, err = UpdateEntry(ctx, repos.Entries, stranger, entry.ID, internal.EntryChanges{Observation: &note})
	assert.ErrorIs(t, err, internal.ErrNotFound)

	updated, err := UpdateEntry(ctx, repos.Entries, owner, entry.ID, internal.EntryChanges{Observation: &note})
	require.NoError(t, err)
	assert.Equal(t, note, updated.Observation)
	assert.Equal(t, entry.CreatedAt, updated.CreatedAt)

	_, err = UpdateEntry(ctx, repos.Entries, owner, entry.ID, internal.EntryChanges{Payload: internal.Sleep{Start: "01:00", End: "02:00"}})
	assert.ErrorIs(t, err, internal.ErrValidation)

	assert.ErrorIs(t, DeleteEntry(ctx, repos.Entries, stranger, entry.ID), internal.ErrNotFound)
	require.NoError(t, DeleteEntry(ctx, repos.Entries, owner, entry.ID))
}

func TestSaveProfileOverwrites(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	user := &internal.User{ID: "u1"}

	_, err := SaveProfile(ctx, repos.Profiles, user, &internal.BabyProfile{Name: "Ana", WeightKg: 3, LengthCm: 50, BirthDate: "2026-01-01"})
	require.NoError(t, err)
	saved, err := SaveProfile(ctx, repos.Profiles, user, &internal.BabyProfile{OwnerID: "someone-else", Name: "Ana Clara", WeightKg: 4.1, LengthCm: 55, BirthDate: "2026-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.OwnerID)

	got, err := repos.Profiles.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Clara", got.Name)
	assert.InDelta(t, 4.1, got.WeightKg, 0.001)

	_, err = SaveProfile(ctx, repos.Profiles, user, &internal.BabyProfile{Name: "Ana"})
	assert.ErrorIs(t, err, internal.ErrValidation)
}

func TestCalculateDashboard(t *testing.T) {
	entries := []internal.Entry{
		{Payload: internal.Sleep{Start: "22:00", End: "06:00", DurationMinutes: 480}},
		{Payload: internal.Sleep{Start: "13:00", End: "14:30", DurationMinutes: 90}},
		{Payload: internal.Diaper{Status: internal.DiaperDirty}},
		{Payload: internal.Feeding{Method: internal.FeedingBreast}},
		{Payload: internal.Feeding{Method: internal.FeedingBottle}},
	}
	d := CalculateDashboard(entries)
	assert.Equal(t, internal.Dashboard{DiaperCount: 1, FeedingCount: 2, SleepCount: 2, TotalSleepMinutes: 570}, d)
	assert.Equal(t, internal.Dashboard{}, CalculateDashboard(nil))
}
