package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/contactdesk/contactdesk/internal/app"
	"github.com/contactdesk/contactdesk/internal/auth"
	"github.com/contactdesk/contactdesk/internal/avatar"
	"github.com/contactdesk/contactdesk/internal/contacts"
	"github.com/contactdesk/contactdesk/internal/observability"
	"github.com/contactdesk/contactdesk/internal/platform/cache"
	"github.com/contactdesk/contactdesk/internal/platform/db"
	"github.com/contactdesk/contactdesk/internal/users"
	"github.com/contactdesk/contactdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	avatarStore, err := avatar.New(ctx, avatar.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Error("init avatar store", slog.Any("error", err))
		os.Exit(1)
	}

	mailClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, cfg.PublicBaseURL)
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	userRepo := users.NewRepository(pool)
	userCache := users.NewCache(redisClient, cfg.UserCacheTTL)
	userService := users.NewService(userRepo, avatarStore, userCache, logger)
	usersHandler := users.NewHandler(logger, userService)

	authService := auth.NewService(userRepo, tokens, mailClient, userCache, auth.ServiceConfig{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		ConfirmTTL: cfg.ConfirmTokenTTL,
		ResetTTL:   cfg.ResetTokenTTL,
	}, logger)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Tokens: tokens, Users: userService, Logger: logger}

	contactRepo := contacts.NewRepository(pool)
	contactService := contacts.NewService(contactRepo)
	contactsHandler := contacts.NewHandler(contactService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Pool:            pool,
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		UsersHandler:    usersHandler,
		ContactsHandler: contactsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
