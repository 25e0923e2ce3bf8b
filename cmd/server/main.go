package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/api"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/auth"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/avatar"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/config"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(internal.LogOptions{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg.DBType, cfg.DataDir, cfg.DBDSN, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			logger.Errorf("failed to close storage: %v", err)
		}
	}()

	if err := os.MkdirAll(cfg.AvatarDir, 0o755); err != nil {
		logger.Fatalf("failed to create avatar dir: %v", err)
	}
	bucket := avatar.NewBucket(afero.NewBasePathFs(afero.NewOsFs(), cfg.AvatarDir), cfg.PublicBaseURL)

	app := &api.Application{Log: logger, Repositories: repos, Bucket: bucket}
	switch cfg.AuthMode {
	case "remote":
		app.Provider = auth.NewRemoteProvider(cfg.AuthServiceURL, logger)
	default:
		app.AuthService = auth.NewService(repos.Users, repos.Sessions, cfg.SessionTTL, logger)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server running on %s (storage=%s auth=%s)", cfg.ListenAddr, cfg.DBType, cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
