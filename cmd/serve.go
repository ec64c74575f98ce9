package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"masterdata-service/internal/router"
	"masterdata-service/internal/storage"
	"masterdata-service/pkg/database"
	"masterdata-service/prometheus"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	log.Info("Starting service...", zap.String("environment", cfg.Server.Env))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(prom.DefaultRegisterer)
	log.Info("Prometheus metrics initialized")

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)
	log.Info("Database connection established", zap.String("db_host", cfg.DB.Host), zap.String("db_name", cfg.DB.DBName))

	store, err := storage.NewLocal(cfg.Upload.Dir, storage.Limits{
		MaxImageBytes: cfg.Upload.MaxImageBytes,
		MaxFileBytes:  cfg.Upload.MaxFileBytes,
	})
	if err != nil {
		return err
	}
	log.Info("Upload storage ready", zap.String("dir", cfg.Upload.Dir))

	e, err := router.New(router.Deps{Config: cfg, DB: db, JWT: newJWT(cfg), Storage: store})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		errCh <- e.Start(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
