package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/config"
	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/handler"
	"github.com/harvestcms/internal/logging"
	"github.com/harvestcms/internal/router"
	"github.com/harvestcms/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if _, err := logging.Setup(cfg.LogLevel); err != nil {
		slog.Warn("falling back to info logging", "error", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(cfg.DatabasePath); err != nil {
		return err
	}
	created, err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword)
	if err != nil {
		return err
	}
	if created {
		slog.InfoContext(ctx, "created admin user", "username", cfg.SuperRootUserName)
	}

	objects, err := storage.FromConfig(cfg)
	if err != nil {
		return err
	}

	api := handler.NewAPI(db.DB, objects, handler.Options{
		PublicDir:         cfg.PublicDir,
		SynthesizeMissing: cfg.SynthesizeMissing,
	})

	uploadDir := cfg.UploadDir
	if cfg.Storage.Driver == config.StorageDriverMinio {
		uploadDir = ""
	}
	engine := router.SetupRouter(api, router.Options{
		SessionSecret:     cfg.SessionSecret,
		TemplateDir:       cfg.TemplateDir,
		PublicDir:         cfg.PublicDir,
		UploadDir:         uploadDir,
		UploadURLPath:     cfg.UploadURLPath,
		FormRatePerMinute: cfg.FormRatePerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown failed", "error", err)
		}
	}()

	slog.InfoContext(ctx, "starting server", "addr", cfg.ListenAddr, "storage", cfg.Storage.Driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
