package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobtag/internal/app/server/api"
	"jobtag/internal/app/server/config"
	"jobtag/internal/domain/changefeed"
	"jobtag/internal/infrastructure/storage/postgres"
	"jobtag/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to init storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	registry := api.NewRegistry()
	hub := changefeed.NewHub(log, changefeed.NewMetrics(registry), 0)
	defer hub.Close()

	notifications := postgres.NewNotifications(storage.Pool(), cfg.Realtime.NotifyChannel, log)
	listener := changefeed.NewListener(notifications, hub, log)
	go func() {
		if err := listener.Run(ctx); err != nil {
			log.Error("change listener stopped", "error", err)
		}
	}()

	router := api.New(api.Deps{
		Storage:    storage,
		Hub:        hub,
		Registry:   registry,
		SessionTTL: cfg.Server.SessionTTL,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting server", "address", cfg.Server.RunAddress, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
