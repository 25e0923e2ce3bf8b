// Package session holds the identity of the signed-in user for one running
// client and keeps it in step with the identity provider.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/client"
)

// Provider is the part of the remote store client the context depends on.
type Provider interface {
	GetSession(ctx context.Context) (*internal.Identity, error)
	OnSessionChange(fn client.SessionListener) func()
	SignOut(ctx context.Context) error
}

type Listener func(identity *internal.Identity)

type Context struct {
	provider Provider
	logger   internal.Logger
	identity atomic.Pointer[internal.Identity]

	mu          sync.Mutex
	listeners   map[int]Listener
	nextID      int
	unsubscribe func()
}

func New(provider Provider, logger internal.Logger) *Context {
	return &Context{provider: provider, logger: logger, listeners: make(map[int]Listener)}
}

// Initialize subscribes to provider changes and loads any existing session.
// An unreachable provider leaves the context signed out and returns the error.
func (s *Context) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.unsubscribe == nil {
		s.unsubscribe = s.provider.OnSessionChange(func(event client.SessionEvent, identity *internal.Identity) {
			s.logger.Debugf("session: provider reported %s", event)
			s.set(identity)
		})
	}
	s.mu.Unlock()

	identity, err := s.provider.GetSession(ctx)
	if err != nil {
		s.logger.Warnf("session: failed to restore session: %v", err)
		return err
	}
	if identity != nil {
		s.set(identity)
	}
	return nil
}

// Current returns the signed-in identity or nil.
func (s *Context) Current() *internal.Identity {
	return s.identity.Load()
}

// Subscribe registers fn for every identity change and returns its release function.
func (s *Context) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Login records an identity obtained from a successful sign in.
func (s *Context) Login(identity *internal.Identity) {
	s.set(identity)
}

// Logout signs out remotely and clears the identity even when that fails.
func (s *Context) Logout(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	s.set(nil)
	if err != nil {
		s.logger.Warnf("session: remote sign out failed: %v", err)
		if !errors.Is(err, internal.ErrAuth) {
			err = &internal.AuthError{Cause: err}
		}
		return err
	}
	return nil
}

// Close releases the provider subscription.
func (s *Context) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Context) set(identity *internal.Identity) {
	prev := s.identity.Swap(identity)
	if prev == identity {
		return
	}
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(identity)
	}
}

var _ Provider = (*client.Client)(nil)
