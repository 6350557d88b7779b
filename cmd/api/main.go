package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/cache"
	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/handler"
	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/middleware"
	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/repository"
	"github.com/AchilleasB/cuidotecas/community-service/internal/config"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/services"
	"github.com/AchilleasB/cuidotecas/community-service/internal/logging"
	"github.com/AchilleasB/cuidotecas/community-service/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	cfg := config.Load()

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.AppVersion)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("connect to redis", zap.Error(err))
	}
	cancel()
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddress))

	store := repository.NewStore(db, logger.Named("store"))
	tokens := cache.NewTokenStore(redisClient, logger)
	notifier := services.NewNotifier(logger.Named("notifier"))

	svc := handler.Services{
		Auth:          services.NewAuthService(store, tokens, cfg.JWTPrivateKey, cfg.TokenTTL),
		Registration:  services.NewRegistrationService(store, logger),
		Users:         services.NewUserService(store),
		Children:      services.NewChildService(store),
		Cuidotecas:    services.NewCuidotecaService(store, notifier, logger),
		Enrollments:   services.NewEnrollmentService(store, notifier, logger),
		Connections:   services.NewConnectionService(store, notifier, logger),
		Notifications: services.NewNotificationService(store),
		Feed:          services.NewFeedService(store, notifier, logger),
		Events:        services.NewEventService(store, notifier, logger),
		Documents:     services.NewDocumentService(store),
		Messaging:     services.NewMessagingService(store, logger),
	}

	auth := middleware.NewAuthMiddleware(cfg.JWTPublicKey, tokens, logger.Named("auth"))
	health := handler.NewHealthHandler(store, tokens, cfg.AppVersion, logger)
	mux := handler.NewRouter(svc, auth, health, logger)

	var h http.Handler = mux
	h = middleware.CORSMiddleware(cfg.AllowedOrigins)(h)
	h = middleware.RequestLogger(logger.Named("http"))(h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("server error, shutting down", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
