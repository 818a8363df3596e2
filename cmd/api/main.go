package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/contacts-service/internal/api/http"
	"github.com/spec-kit/contacts-service/internal/api/http/handlers"
	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/cache"
	"github.com/spec-kit/contacts-service/internal/config"
	"github.com/spec-kit/contacts-service/internal/events"
	"github.com/spec-kit/contacts-service/internal/mailer"
	"github.com/spec-kit/contacts-service/internal/observability"
	"github.com/spec-kit/contacts-service/internal/persistence"
	"github.com/spec-kit/contacts-service/internal/repository"
	"github.com/spec-kit/contacts-service/internal/service"
	"github.com/spec-kit/contacts-service/internal/storage"
	"github.com/spec-kit/contacts-service/internal/worker"
)

const notificationQueueSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var (
		userCache      cache.Cache
		cachePinger    handlers.Pinger
		limiterStorage fiber.Storage
	)
	if cfg.Redis.Driver == "redis" {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		userCache = redis
		cachePinger = redis
		limiterStorage = persistence.NewLimiterStorage(redis.Client, "limiter:")
	} else {
		logger.Warn("using in-memory cache; used reset tokens and rate limits are per process")
		userCache = cache.NewMemory()
	}

	tokens, err := auth.NewTokenManager(cfg.Auth, userCache, logger, metrics)
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	resolver := auth.NewUserResolver(userRepo, userCache, cfg.Auth.UserCacheTTL, logger, metrics)

	dispatcher := events.NewInMemoryDispatcher(logger)
	queue := worker.NewQueue(dispatcher, notificationQueueSize, logger)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := queue.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification worker stopped", zap.Error(err))
		}
	}()

	var sender mailer.Sender = mailer.LogSender{Logger: logger}
	if cfg.Mail.Enabled() {
		m, err := mailer.New(cfg.Mail, logger)
		if err != nil {
			logger.Fatal("failed to init mailer", zap.Error(err))
		}
		sender = m
	} else {
		logger.Warn("MAIL_SERVER not set; notification emails are logged only")
	}
	service.NewNotificationService(dispatcher, sender, logger).RegisterHandlers()

	var avatars service.AvatarUploader
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3AvatarStore(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to init avatar storage", zap.Error(err))
		}
		avatars = store
	}

	authService := service.NewAuthService(service.AuthDependencies{
		Users:      userRepo,
		Tokens:     tokens,
		Resolver:   resolver,
		Publisher:  queue,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, avatars, resolver, logger)
	contactService := service.NewContactService(contactRepo, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, cfg.App, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, cachePinger),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Contacts:       handlers.NewContactsHandler(contactService),
		AuthMiddleware: auth.NewMiddleware(tokens, resolver),
		Registry:       metrics.Registry(),
		ResetLimit:     cfg.RateLimit.ResetRequestMax,
		ResetWindow:    cfg.RateLimit.ResetRequestWindow,
		LimiterStorage: limiterStorage,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	queue.Close()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
