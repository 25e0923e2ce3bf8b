package cli

import (
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/client"
)

type RegisterCmd struct {
	Username string `help:"Username (3-64 characters)." required:""`
	Email    string `help:"Email address." required:""`
	Password string `help:"Password (at least 6 characters)." required:"" env:"BABYCARE_PASSWORD"`
	Avatar   string `help:"Profile image to upload after signing up." type:"existingfile"`
}

func (c *RegisterCmd) Run(ctx *Context) error {
	if _, err := ctx.Client.SignUp(ctx, client.Registration{Username: c.Username, Email: c.Email, Password: c.Password}); err != nil {
		return err
	}
	identity, err := ctx.Client.SignIn(ctx, client.Credentials{Login: c.Username, Password: c.Password})
	if err != nil {
		return err
	}
	if c.Avatar != "" {
		if url, err := uploadAvatarFile(ctx, c.Avatar); err != nil {
			ctx.printf("warning: avatar not uploaded: %v\n", err)
		} else {
			identity.User.AvatarURL = url
		}
	}
	ctx.Session.Login(identity)
	ctx.printf("Registered and signed in as %s\n", identity.User.Username)
	if identity.User.AvatarURL != "" {
		ctx.printf("avatar: %s\n", identity.User.AvatarURL)
	}
	return nil
}

type LoginCmd struct {
	Login    string `arg:"" help:"Username or email."`
	Password string `help:"Password." required:"" env:"BABYCARE_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *Context) error {
	identity, err := ctx.Client.SignIn(ctx, client.Credentials{Login: c.Login, Password: c.Password})
	if err != nil {
		return err
	}
	ctx.Session.Login(identity)
	ctx.printf("Signed in as %s\n", identity.User.Username)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	identity := ctx.Session.Current()
	if identity == nil {
		ctx.printf("Not signed in\n")
		return nil
	}
	err := ctx.Session.Logout(ctx)
	ctx.Sync.Invalidate(identity.User.ID)
	ctx.printf("Signed out\n")
	if err != nil {
		ctx.printf("warning: the server did not confirm sign out: %v\n", err)
	}
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	identity, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	u := identity.User
	ctx.printf("%s <%s>\nid: %s\n", u.Username, u.Email, u.ID)
	if u.AvatarURL != "" {
		ctx.printf("avatar: %s\n", u.AvatarURL)
	}
	ctx.printf("session expires: %s\n", identity.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
