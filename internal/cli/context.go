// Package cli holds the babycare command implementations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/cache"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/client"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/credentials"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/datasync"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/entries"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/session"
)

// Context is passed to every command's Run method.
type Context struct {
	context.Context

	Client      *client.Client
	Cache       cache.Cache
	Sync        *datasync.Coordinator
	Session     *session.Context
	Credentials *credentials.Store
	Logger      internal.Logger
	Out         io.Writer
}

// errSignedOut is shown when a command needs a session and there is none.
var errSignedOut = errors.New("not signed in; run `babycare login` first")

// Start restores the stored session and keeps the keyring in step with it.
// The returned function releases the session subscriptions.
func (c *Context) Start() func() {
	stored, err := c.Credentials.Load()
	switch {
	case err == nil:
		c.Client.Restore(stored)
	case !errors.Is(err, credentials.ErrNotFound):
		c.Logger.Warnf("cli: %v", err)
	}

	unsubscribe := c.Session.Subscribe(func(identity *internal.Identity) {
		var err error
		if identity == nil {
			err = c.Credentials.Clear()
		} else {
			err = c.Credentials.Save(identity)
		}
		if err != nil {
			c.Logger.Warnf("cli: %v", err)
		}
	})
	if err := c.Session.Initialize(c); err != nil {
		c.Logger.Warnf("cli: session check failed, continuing signed out: %v", err)
	} else if stored != nil && c.Session.Current() == nil {
		if err := c.Credentials.Clear(); err != nil {
			c.Logger.Warnf("cli: %v", err)
		}
	}
	return func() {
		unsubscribe()
		c.Session.Close()
	}
}

func (c *Context) RequireUser() (*internal.Identity, error) {
	identity := c.Session.Current()
	if identity == nil {
		return nil, errSignedOut
	}
	return identity, nil
}

// Manager returns an entry manager loaded for the signed-in user. It fails
// rather than showing an empty history when the entries cannot be loaded.
func (c *Context) Manager() (*entries.Manager, error) {
	identity, err := c.RequireUser()
	if err != nil {
		return nil, err
	}
	seq, ok := c.Sync.Entries(c, identity.User.ID)
	if !ok {
		return nil, errors.New("could not load entries from cache or server; try again later")
	}
	m := entries.NewManager(identity.User.ID, c.Client, entries.WithMirror(c.Sync), entries.WithLogger(c.Logger))
	m.Load(seq)
	return m, nil
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}
