package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/db"
	"github.com/monocle-dev/planboard/internal/auth"
	"github.com/monocle-dev/planboard/internal/config"
	"github.com/monocle-dev/planboard/internal/handlers"
	"github.com/monocle-dev/planboard/internal/logging"
	"github.com/monocle-dev/planboard/internal/router"
	"github.com/monocle-dev/planboard/internal/services"
	"github.com/monocle-dev/planboard/internal/store"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.StringP("config", "c", "", "path to a YAML config file (overrides "+config.ConfigEnvVar+")")
	migrateOnly := flag.Bool("migrate-only", false, "run the auto-migration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Logger.Fatalf("Error loading configuration: %v", err)
	}

	if err := logging.Init(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		logging.Logger.Fatalf("Error configuring logging: %v", err)
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logging.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		logging.Logger.Fatalf("Failed to migrate database: %v", err)
	}

	if *migrateOnly {
		logging.Logger.Info("Migration complete")
		return
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logging.Logger.Fatalf("Failed to configure tokens: %v", err)
	}

	st := store.New(gdb)
	notifier := services.NewNotifier(st, cfg.WebhookTimeout)
	hub := handlers.NewHub(cfg.OriginAllowed)

	if !logging.Logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(st, issuer, hub, notifier)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(h, cfg.OriginAllowed),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Logger.Infof("Planboard listening on :%s (%s)", cfg.Port, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Server shutdown failed: %v", err)
	}
	notifier.Wait()

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}
