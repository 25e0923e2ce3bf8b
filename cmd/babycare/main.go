package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/cache"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/cli"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/client"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/credentials"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/datasync"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/session"
)

var CLI struct {
	Version  kong.VersionFlag
	Server   string `help:"Baby-care API base URL." env:"BABYCARE_SERVER" default:"http://localhost:8088"`
	Cache    string `help:"Local cache file." env:"BABYCARE_CACHE" type:"path" default:"${cache}"`
	LogLevel string `help:"Log level (debug|info|warn|error)." default:"warn"`
	LogFile  string `help:"Also write logs to this rotated file." type:"path"`

	Register  cli.RegisterCmd  `cmd:"" help:"Create an account and sign in."`
	Login     cli.LoginCmd     `cmd:"" help:"Sign in."`
	Logout    cli.LogoutCmd    `cmd:"" help:"Sign out."`
	Whoami    cli.WhoamiCmd    `cmd:"" help:"Show the signed-in user."`
	Dashboard cli.DashboardCmd `cmd:"" help:"Show the baby profile and totals." default:"1"`
	Add       cli.AddCmd       `cmd:"" help:"Record a care event."`
	List      cli.ListCmd      `cmd:"" help:"List recorded events, newest first."`
	Edit      cli.EditCmd      `cmd:"" help:"Change a recorded event."`
	Rm        cli.RmCmd        `cmd:"" help:"Delete a recorded event."`
	Baby      cli.BabyCmd      `cmd:"" help:"Show or update the baby profile."`
	Avatar    cli.AvatarCmd    `cmd:"" help:"Upload a profile picture."`
	Lang      cli.LangCmd      `cmd:"" help:"Show or set the interface language."`
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "babycare", "cache.json")
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("babycare"),
		kong.Description("Track diapers, sleep and feedings from the terminal."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0", "cache": defaultCachePath()},
	)

	logger, err := internal.NewLogger(internal.LogOptions{Env: "development", Level: CLI.LogLevel, File: CLI.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := cache.Open(afero.NewOsFs(), CLI.Cache, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	api := client.New(CLI.Server, client.WithLogger(logger))
	appCtx := &cli.Context{
		Context:     ctx,
		Client:      api,
		Cache:       store,
		Sync:        datasync.NewCoordinator(store, api, logger),
		Session:     session.New(api, logger),
		Credentials: credentials.NewStore(CLI.Server),
		Logger:      logger,
		Out:         os.Stdout,
	}
	release := appCtx.Start()

	runErr := kctx.Run(appCtx)

	release()
	stop()
	if err := store.Close(); err != nil {
		logger.Errorf("failed to save cache: %v", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
