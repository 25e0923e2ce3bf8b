package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

type recordingAdder struct {
	mu      sync.Mutex
	calls   []internal.Payload
	err     error
	release chan struct{}
	entered chan struct{}
}

func (a *recordingAdder) Add(_ context.Context, observation string, p internal.Payload) (internal.Entry, error) {
	a.mu.Lock()
	a.calls = append(a.calls, p)
	a.mu.Unlock()
	if a.entered != nil {
		a.entered <- struct{}{}
	}
	if a.release != nil {
		<-a.release
	}
	return internal.Entry{ID: "e1", Observation: observation, Payload: p}, a.err
}

func (a *recordingAdder) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func TestCanSubmitRequiresFields(t *testing.T) {
	f := NewSleepForm(&recordingAdder{})
	assert.False(t, f.CanSubmit())

	require.NoError(t, f.Edit(func(s *SleepFields) { s.Start = "22:00" }))
	assert.False(t, f.CanSubmit())

	require.NoError(t, f.Edit(func(s *SleepFields) { s.End = "06:00" }))
	assert.True(t, f.CanSubmit())
}

func TestSubmitSuccessClearsFields(t *testing.T) {
	adder := &recordingAdder{}
	f := NewDiaperForm(adder)
	var transitions []State
	f.OnTransition(func(_, to State) { transitions = append(transitions, to) })

	require.NoError(t, f.Edit(func(d *DiaperFields) {
		d.Status = "Dirty"
		d.Observation = "  after nap "
	}))
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, 1, adder.count())
	assert.Equal(t, DiaperFields{}, f.Fields())
	assert.Equal(t, Editing, f.State())
	assert.Empty(t, f.Message())
	assert.Equal(t, []State{Submitting, Done, Editing}, transitions)
}

func TestSubmitFailurePreservesInput(t *testing.T) {
	adder := &recordingAdder{err: &internal.StoreError{Op: "insert entry", Cause: errors.New("offline")}}
	f := NewFeedingForm(adder)
	require.NoError(t, f.Edit(func(d *FeedingFields) {
		d.Method = "bottle"
		d.Observation = "90ml"
	}))

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, internal.ErrStore)
	assert.Equal(t, FeedingFields{Method: "bottle", Observation: "90ml"}, f.Fields())
	assert.NotEmpty(t, f.Message())
	assert.Equal(t, Editing, f.State())
}

func TestValidationNeverReachesManager(t *testing.T) {
	adder := &recordingAdder{}
	f := NewSleepForm(adder)
	require.NoError(t, f.Edit(func(s *SleepFields) {
		s.Start = "10:00"
		s.End = "10:00"
	}))

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, internal.ErrValidation)
	assert.Zero(t, adder.count())
	assert.Equal(t, "10:00", f.Fields().Start)

	empty := NewDiaperForm(adder)
	assert.ErrorIs(t, empty.Submit(context.Background()), internal.ErrValidation)
	assert.Zero(t, adder.count())
}

func TestConcurrentSubmitIsBusy(t *testing.T) {
	adder := &recordingAdder{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := NewDiaperForm(adder)
	require.NoError(t, f.Edit(func(d *DiaperFields) { d.Status = internal.DiaperClean }))

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-adder.entered

	assert.Equal(t, Submitting, f.State())
	assert.False(t, f.CanSubmit())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, f.Edit(func(d *DiaperFields) { d.Status = "dirty" }), ErrBusy)

	close(adder.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, adder.count())
}

func TestCloseDropsLateResult(t *testing.T) {
	adder := &recordingAdder{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := NewDiaperForm(adder)
	require.NoError(t, f.Edit(func(d *DiaperFields) { d.Status = internal.DiaperClean }))

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-adder.entered
	f.Close()
	close(adder.release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, internal.DiaperClean, f.Fields().Status)
}

type recordingUpdater struct {
	id      string
	changes internal.EntryChanges
}

func (u *recordingUpdater) Update(_ context.Context, id string, changes internal.EntryChanges) (internal.Entry, error) {
	u.id, u.changes = id, changes
	return internal.Entry{ID: id}, nil
}

func TestEditFormKeepsKind(t *testing.T) {
	entry := internal.Entry{ID: "e7", OwnerID: "u1", Observation: "short nap", Payload: internal.Sleep{Start: "13:00", End: "14:00", DurationMinutes: 60}}
	u := &recordingUpdater{}
	f := NewEditForm(u, entry)

	assert.Equal(t, "13:00", f.Fields().Start)
	require.NoError(t, f.Edit(func(e *EditFields) {
		e.End = "15:30"
		e.Method = "bottle"
	}))
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, "e7", u.id)
	require.NotNil(t, u.changes.Observation)
	assert.Equal(t, "short nap", *u.changes.Observation)
	sleep, ok := u.changes.Payload.(internal.Sleep)
	require.True(t, ok)
	assert.Equal(t, 150, sleep.DurationMinutes)
	assert.Equal(t, "15:30", f.Fields().End)
}

type recordingProfileStore struct {
	saved *internal.BabyProfile
}

func (s *recordingProfileStore) UpsertBabyProfile(_ context.Context, p internal.BabyProfile) (*internal.BabyProfile, error) {
	p.OwnerID = "u1"
	s.saved = &p
	return &p, nil
}

func TestProfileForm(t *testing.T) {
	store := &recordingProfileStore{}
	var notified *internal.BabyProfile
	f := NewProfileForm(store, nil, func(p *internal.BabyProfile) { notified = p })
	assert.False(t, f.CanSubmit())

	require.NoError(t, f.Edit(func(p *ProfileFields) {
		p.Name = "Ana"
		p.WeightKg = "3,5"
		p.LengthCm = "51"
		p.BirthDate = "2026-02-01"
		p.Conditions = "reflux, , colic, reflux"
	}))
	require.NoError(t, f.Submit(context.Background()))

	require.NotNil(t, store.saved)
	assert.InDelta(t, 3.5, store.saved.WeightKg, 1e-9)
	assert.Equal(t, []string{"colic", "reflux"}, store.saved.Conditions)
	assert.Equal(t, store.saved, notified)
	assert.Equal(t, "Ana", f.Fields().Name)
}

func TestProfileFormRejectsBadNumbers(t *testing.T) {
	store := &recordingProfileStore{}
	f := NewProfileForm(store, &internal.BabyProfile{Name: "Ana", WeightKg: 3, LengthCm: 50, BirthDate: "2026-02-01"}, nil)
	require.NoError(t, f.Edit(func(p *ProfileFields) { p.WeightKg = "heavy" }))

	err := f.Submit(context.Background())
	var verr *internal.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "weight_kg")
	assert.Nil(t, store.saved)
}
