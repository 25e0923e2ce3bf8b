package cli

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc/pool"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/service"
)

// DashboardCmd is the home screen: profile and totals, loaded side by side.
type DashboardCmd struct{}

func (c *DashboardCmd) Run(ctx *Context) error {
	identity, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	owner := identity.User.ID

	var (
		profile     *internal.BabyProfile
		profileOK   bool
		entries     []internal.Entry
		entriesOK   bool
		remoteTotal *internal.Dashboard
	)
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(pctx context.Context) error {
		profile, profileOK = ctx.Sync.BabyProfile(pctx, owner)
		return nil
	})
	p.Go(func(pctx context.Context) error {
		entries, entriesOK = ctx.Sync.Entries(pctx, owner)
		return nil
	})
	p.Go(func(pctx context.Context) error {
		d, err := ctx.Client.Dashboard(pctx)
		if err != nil {
			ctx.Logger.Debugf("cli: remote dashboard unavailable: %v", err)
			return nil
		}
		remoteTotal = d
		return nil
	})
	if err := p.Wait(); err != nil {
		return err
	}

	ctx.printf("Hello, %s\n\n", identity.User.Username)
	switch {
	case !profileOK:
		ctx.printf("Baby profile: unavailable\n")
	case profile == nil:
		ctx.printf("Baby profile: not set\n")
	default:
		printProfile(ctx, profile)
	}
	ctx.printf("\n")

	var totals internal.Dashboard
	switch {
	case remoteTotal != nil:
		totals = *remoteTotal
	case entriesOK:
		totals = service.CalculateDashboard(entries)
	default:
		return errors.New("could not load entries from cache or server; try again later")
	}
	ctx.printf("Diapers:  %d\n", totals.DiaperCount)
	ctx.printf("Feedings: %d\n", totals.FeedingCount)
	ctx.printf("Sleeps:   %d (%s total)\n", totals.SleepCount, minutes(totals.TotalSleepMinutes))
	return nil
}
