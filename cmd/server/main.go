package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/yatube/backend/internal/metrics"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/anonto42/yatube/backend/internal/router"
	"github.com/anonto42/yatube/backend/internal/storage"
	"github.com/anonto42/yatube/backend/pkg/cache"
	"github.com/anonto42/yatube/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		port    string
	)

	cmd := &cobra.Command{
		Use:          "yatube",
		Short:        "Yatube blogging server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg := config.Load(files...)
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file (defaults to ./.env)")
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port, overrides PORT")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := config.NewLogger(cfg)

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize databases")
		return err
	}
	defer db.CloseDB(log)

	if err := repositories.Migrate(db.SQL); err != nil {
		log.WithError(err).Error("Failed to auto migrate models")
		return err
	}
	log.Info("Auto-migrations completed.")

	store, err := newCacheStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	m := metrics.New()
	deps := router.Dependencies{
		Config:  cfg,
		DB:      db.SQL,
		Cache:   store,
		Media:   storage.NewFileSystemStorage(cfg.MediaRoot, "/media/"),
		Metrics: m,
		Logger:  log,
	}

	e := echo.New()
	e.HideBanner = true
	router.SetupMiddleware(e, deps)
	if err := router.SetupRoutes(e, deps); err != nil {
		log.WithError(err).Error("Failed to configure routes")
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	startErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			startErr <- err
		}
	}()

	select {
	case err := <-startErr:
		log.WithError(err).Error("Server stopped")
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

func newCacheStore(ctx context.Context, cfg *config.Config, db *config.DB, log *logrus.Logger) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "mongo":
		store := cache.NewMongoStore(db.Mongo.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Error("Failed to create page cache indexes")
			return nil, err
		}
		log.Info("Page cache backed by MongoDB.")
		return store, nil
	case "memory", "":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}
