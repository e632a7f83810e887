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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"microtwit/config"
	"microtwit/database"
	"microtwit/handlers"
	"microtwit/logging"
	"microtwit/metrics"
	"microtwit/repository"
	"microtwit/router"
	"microtwit/storage"
	"microtwit/telemetry"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	logger, err := logging.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize tracing")
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to flush traces")
			}
		}()
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Database unavailable")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Schema migration failed")
	}
	if cfg.SeedDemoUsers {
		if err := database.SeedDemoUsers(ctx, db); err != nil {
			logger.WithError(err).Fatal("Failed to seed demo users")
		}
		logger.Info("Demo users seeded")
	}

	blobs, err := storage.New(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize media storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	api := handlers.NewAPI(repository.New(db), blobs, m, logger, cfg.MaxUploadBytes)

	opts := router.Options{
		MediaURLPrefix: cfg.MediaURLPrefix,
		CORSOrigins:    cfg.CORSOrigins,
		Gatherer:       reg,
	}
	if local, ok := blobs.(*storage.LocalStore); ok {
		opts.MediaDir = local.Dir()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.New(api, logger, m, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"driver": cfg.DBDriver,
			"env":    cfg.Env,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
