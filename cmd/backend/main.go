package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/malik-javed/ez-secure-files/internal/auth"
	"github.com/malik-javed/ez-secure-files/internal/blob"
	"github.com/malik-javed/ez-secure-files/internal/config"
	"github.com/malik-javed/ez-secure-files/internal/logging"
	"github.com/malik-javed/ez-secure-files/internal/mailer"
	"github.com/malik-javed/ez-secure-files/internal/server"
	"github.com/malik-javed/ez-secure-files/internal/service"
	"github.com/malik-javed/ez-secure-files/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(0).Fatal("failed to load config", "error", err)
	}

	log := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", "error", err)
	}

	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer func() { _ = db.Close() }()

	log.Info("running migrations")
	if err := store.RunMigrations(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	blobs, err := blob.Dial(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket)
	cancel()
	if err != nil {
		log.Fatal("failed to connect to object storage", "error", err)
	}

	notifier := mailer.New(mailer.Config{
		Enabled:  cfg.SMTP.Enabled,
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout,
		BaseURL:  cfg.BaseURL,
	}, log)

	sessions := auth.NewSessionCodec(cfg.SecretKey, cfg.SessionTTL)
	caps, err := auth.NewCapabilityCodec(cfg.SecretKey)
	if err != nil {
		log.Fatal("failed to build capability codec", "error", err)
	}

	authSvc := service.NewAuthService(store.NewIdentityStore(db), notifier, sessions, cfg.BypassVerification, log)
	fileSvc := service.NewFileService(store.NewFileStore(db), blobs, caps, cfg.BaseURL, cfg.AllowedExtensions, log)

	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Auth:           authSvc,
		Files:          fileSvc,
		Log:            log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting", "addr", cfg.Addr, "base_url", cfg.BaseURL)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatal("shutdown error", "error", err)
		}
		log.Info("shutdown complete")
	case err := <-errCh:
		if err != nil {
			log.Fatal("server error", "error", err)
		}
	}
}
