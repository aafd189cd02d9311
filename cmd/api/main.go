package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/qna-service/internal/api/http"
	"github.com/spec-kit/qna-service/internal/api/http/handlers"
	"github.com/spec-kit/qna-service/internal/auth"
	"github.com/spec-kit/qna-service/internal/cache"
	"github.com/spec-kit/qna-service/internal/config"
	"github.com/spec-kit/qna-service/internal/events"
	"github.com/spec-kit/qna-service/internal/notify"
	"github.com/spec-kit/qna-service/internal/observability"
	"github.com/spec-kit/qna-service/internal/persistence"
	"github.com/spec-kit/qna-service/internal/repository"
	"github.com/spec-kit/qna-service/internal/service"
)

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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var postRepo repository.PostRepository
	if pool := pg.PoolHandle(); pool != nil {
		postRepo = repository.NewPostRepository(pool)
	} else {
		logger.Warn("using in-memory post repository; data will not survive restarts")
		postRepo = repository.NewMemoryPostRepository()
	}

	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTP, logger)
	} else {
		logger.Warn("SMTP_HOST not provided; answer notifications disabled")
	}

	dispatcher := events.NewInMemoryDispatcher()
	listCache := cache.NewListCache(redis.Client, cfg.Redis.ListCacheTTL(), logger)

	qnaService := service.NewQnaService(service.Dependencies{
		PostRepo:   postRepo,
		Notifier:   notifier,
		Dispatcher: dispatcher,
		ListCache:  listCache,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	service.NewNotificationService(dispatcher, logger).RegisterHandlers()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	operatorMiddleware := auth.NewOperatorMiddleware(tokenManager)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:             handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Qna:                handlers.NewQnaHandler(qnaService),
		AdminQna:           handlers.NewAdminQnaHandler(qnaService),
		OperatorMiddleware: operatorMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
