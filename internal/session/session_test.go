package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/client"
)

type fakeProvider struct {
	session    *internal.Identity
	sessionErr error
	signOutErr error
	listener   client.SessionListener
	released   bool
	signOuts   int
}

func (f *fakeProvider) GetSession(context.Context) (*internal.Identity, error) {
	return f.session, f.sessionErr
}

func (f *fakeProvider) OnSessionChange(fn client.SessionListener) func() {
	f.listener = fn
	return func() { f.released = true }
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.signOuts++
	return f.signOutErr
}

func identity(id string) *internal.Identity {
	return &internal.Identity{User: internal.User{ID: id}, Token: "tok-" + id}
}

func TestInitializeRestoresExistingSession(t *testing.T) {
	p := &fakeProvider{session: identity("u1")}
	s := New(p, internal.NopLogger())
	defer s.Close()

	require.NoError(t, s.Initialize(context.Background()))
	require.NotNil(t, s.Current())
	assert.Equal(t, "u1", s.Current().User.ID)
}

func TestInitializeWithoutSessionStaysSignedOut(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, internal.NopLogger())
	defer s.Close()

	require.NoError(t, s.Initialize(context.Background()))
	assert.Nil(t, s.Current())
}

func TestInitializeProviderFailure(t *testing.T) {
	p := &fakeProvider{sessionErr: errors.New("offline")}
	s := New(p, internal.NopLogger())
	defer s.Close()

	assert.Error(t, s.Initialize(context.Background()))
	assert.Nil(t, s.Current())
}

func TestProviderChangesReachSubscribers(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, internal.NopLogger())
	require.NoError(t, s.Initialize(context.Background()))

	var seen []*internal.Identity
	release := s.Subscribe(func(id *internal.Identity) { seen = append(seen, id) })

	p.listener(client.SignedIn, identity("u1"))
	p.listener(client.Expired, nil)
	release()
	p.listener(client.SignedIn, identity("u2"))

	require.Len(t, seen, 2)
	assert.Equal(t, "u1", seen[0].User.ID)
	assert.Nil(t, seen[1])
	assert.Equal(t, "u2", s.Current().User.ID)

	s.Close()
	assert.True(t, p.released)
}

func TestLogoutClearsEvenWhenSignOutFails(t *testing.T) {
	p := &fakeProvider{signOutErr: errors.New("network down")}
	s := New(p, internal.NopLogger())
	s.Login(identity("u1"))

	var last *internal.Identity = identity("sentinel")
	s.Subscribe(func(id *internal.Identity) { last = id })

	err := s.Logout(context.Background())
	assert.ErrorIs(t, err, internal.ErrAuth)
	assert.Nil(t, s.Current())
	assert.Nil(t, last)
	assert.Equal(t, 1, p.signOuts)
}

func TestLogoutSuccess(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, internal.NopLogger())
	s.Login(identity("u1"))

	require.NoError(t, s.Logout(context.Background()))
	assert.Nil(t, s.Current())
}
