package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/form"
)

type BabyShowCmd struct{}

func (c *BabyShowCmd) Run(ctx *Context) error {
	identity, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	profile, ok := ctx.Sync.BabyProfile(ctx, identity.User.ID)
	if !ok {
		return fmt.Errorf("could not load the baby profile; try again later")
	}
	if profile == nil {
		ctx.printf("No baby profile yet; create one with `babycare baby set`\n")
		return nil
	}
	printProfile(ctx, profile)
	return nil
}

type BabySetCmd struct {
	Name       string   `help:"Baby's name."`
	Weight     string   `help:"Weight in kg."`
	Length     string   `help:"Length in cm."`
	BirthDate  string   `name:"birth-date" help:"Birth date (YYYY-MM-DD)."`
	Conditions []string `help:"Conditions, comma separated. Replaces the current list."`
}

// Run merges the flags over the current profile so single fields can be changed.
func (c *BabySetCmd) Run(ctx *Context) error {
	identity, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	current, ok := ctx.Sync.BabyProfile(ctx, identity.User.ID)
	if !ok {
		return fmt.Errorf("could not load the current baby profile; try again later")
	}

	f := form.NewProfileForm(ctx.Client, current, func(saved *internal.BabyProfile) {
		ctx.Sync.SaveProfile(identity.User.ID, saved)
	})
	defer f.Close()
	if err := f.Edit(func(p *form.ProfileFields) {
		set(&p.Name, c.Name)
		set(&p.WeightKg, c.Weight)
		set(&p.LengthCm, c.Length)
		set(&p.BirthDate, c.BirthDate)
		if c.Conditions != nil {
			p.Conditions = strings.Join(c.Conditions, ",")
		}
	}); err != nil {
		return err
	}
	if !f.CanSubmit() {
		return internal.NewValidationError("a new profile needs --name, --weight, --length and --birth-date")
	}
	if err := f.Submit(ctx); err != nil {
		return err
	}
	ctx.printf("Baby profile saved\n")
	return nil
}

type BabyCmd struct {
	Show BabyShowCmd `cmd:"" default:"1" help:"Show the baby profile."`
	Set  BabySetCmd  `cmd:"" help:"Create or update the baby profile."`
}

type AvatarCmd struct {
	File string `arg:"" type:"existingfile" help:"Image file to upload."`
}

func (c *AvatarCmd) Run(ctx *Context) error {
	identity, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	url, err := uploadAvatarFile(ctx, c.File)
	if err != nil {
		return err
	}
	updated := *identity
	updated.User.AvatarURL = url
	ctx.Session.Login(&updated)
	ctx.printf("Avatar uploaded: %s\n", url)
	return nil
}

func uploadAvatarFile(ctx *Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ctx.Client.UploadAvatar(ctx, filepath.Base(path), f)
}

func printProfile(ctx *Context, p *internal.BabyProfile) {
	ctx.printf("Name:       %s\n", p.Name)
	ctx.printf("Born:       %s\n", p.BirthDate)
	ctx.printf("Weight:     %.2f kg\n", p.WeightKg)
	ctx.printf("Length:     %.1f cm\n", p.LengthCm)
	if len(p.Conditions) > 0 {
		ctx.printf("Conditions: %s\n", strings.Join(p.Conditions, ", "))
	}
}
