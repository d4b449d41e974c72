package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetconfig/channelhub/internal/api"
	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/bus"
	"github.com/fleetconfig/channelhub/internal/config"
	"github.com/fleetconfig/channelhub/internal/engine"
	"github.com/fleetconfig/channelhub/internal/service"
	"github.com/fleetconfig/channelhub/internal/store"
	"github.com/fleetconfig/channelhub/internal/stream"
	"github.com/fleetconfig/channelhub/migrations"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL
	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	if err := pgStore.RunMigrations(ctx, migrations.Files); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Initialize Redis (change bus + polling rate limiter)
	redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisStore.Close()
	logger.Info("connected to Redis")

	gate := auth.NewGate(pgStore, logger)
	changeBus := bus.NewRedisBus(redisStore.Client(), logger)
	resolver := engine.NewResolver(pgStore, cfg.ExternalBaseURL, logger)
	limiter := engine.NewRateLimiter(redisStore.Client(), logger)
	svc := service.New(pgStore, gate, resolver, changeBus, logger)
	hub := stream.NewHub(changeBus, gate, logger)

	router := api.NewRouter(svc, pgStore, hub, limiter, cfg.ResolveRateLimitPerSecond, pgStore, redisStore)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
