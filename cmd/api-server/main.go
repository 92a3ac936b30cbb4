package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animehub/database"
	"animehub/internal/config"
	httpapi "animehub/internal/microservices/http-api"
	"animehub/internal/microservices/http-api/repository"
	"animehub/internal/microservices/http-api/service"
	"animehub/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load config (env + optional .env)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Error("database_connect_failed", "error", err.Error())
		os.Exit(1)
	}
	defer database.Close(db)

	// Feed cache is optional; without REDIS_URL every feed read hits the store
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = repository.NewRedisClient(context.Background(), cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis_unavailable_cache_disabled", "error", err.Error())
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewAnimeGroupRepository(db)
	modRepo := repository.NewModerationRepository(db)
	feedCache := repository.NewFeedCache(rdb, cfg.CacheTTLDuration())

	// Services
	authService := service.NewAuthService(userRepo, cfg)
	services := httpapi.Services{
		Auth:       authService,
		Users:      service.NewUserService(userRepo, groupRepo, authService, feedCache, logger),
		Anime:      service.NewAnimeService(groupRepo, service.EntryRulesFromConfig(cfg)),
		Feed:       service.NewFeedService(groupRepo, feedCache, cfg.FeedLimit, logger),
		Moderation: service.NewModerationService(modRepo, userRepo, feedCache, logger),
		Stats:      service.NewStatsService(userRepo, groupRepo, modRepo),
	}

	router := httpapi.NewRouter(cfg, services, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv, "feed_cache", rdb != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http_shutdown_failed", "error", err.Error())
	}
	logger.Info("server_stopped_gracefully")
}
