package api

import (
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/auth"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/avatar"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

type App interface {
	Logger() internal.Logger
	// Auth is nil when identities come from an external provider.
	Auth() *auth.Service
	TokenProvider() auth.Provider
	Users() storage.UserRepository
	EntryRepo() storage.EntryRepository
	ProfileRepo() storage.ProfileRepository
	Avatars() *avatar.Bucket
}

// Application is the App wired by cmd/server.
type Application struct {
	Log          internal.Logger
	AuthService  *auth.Service
	Provider     auth.Provider
	Repositories *storage.Repositories
	Bucket       *avatar.Bucket
}

func (a *Application) Logger() internal.Logger                { return a.Log }
func (a *Application) Auth() *auth.Service                    { return a.AuthService }
func (a *Application) Users() storage.UserRepository          { return a.Repositories.Users }
func (a *Application) EntryRepo() storage.EntryRepository     { return a.Repositories.Entries }
func (a *Application) ProfileRepo() storage.ProfileRepository { return a.Repositories.Profiles }
func (a *Application) Avatars() *avatar.Bucket                { return a.Bucket }

// TokenProvider provisions users of an external provider into the repositories.
func (a *Application) TokenProvider() auth.Provider {
	if a.Provider != nil {
		return auth.NewProvisioning(a.Provider, a.Repositories.Users)
	}
	return a.AuthService
}
