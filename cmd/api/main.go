package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-management/internal/api/http"
	"github.com/spec-kit/user-management/internal/api/http/handlers"
	"github.com/spec-kit/user-management/internal/api/validation"
	"github.com/spec-kit/user-management/internal/auth"
	"github.com/spec-kit/user-management/internal/cache"
	"github.com/spec-kit/user-management/internal/config"
	"github.com/spec-kit/user-management/internal/domain"
	"github.com/spec-kit/user-management/internal/events"
	"github.com/spec-kit/user-management/internal/observability"
	"github.com/spec-kit/user-management/internal/persistence"
	"github.com/spec-kit/user-management/internal/repository"
	"github.com/spec-kit/user-management/internal/service"
	"github.com/spec-kit/user-management/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	var userCache *cache.UserCache
	if cfg.Cache.Enabled {
		userCache = cache.NewUserCache(redis.Client, cfg.Cache.TTL(), logger)
	}

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:   userRepo,
		Cache:      userCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	validate := validation.New()
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager, cfg.Auth.Enabled)

	engine := html.New(cfg.App.TemplatesDir, ".html")
	engine.AddFunc("deref", func(v any) string {
		switch p := v.(type) {
		case *domain.UserStatus:
			if p != nil {
				return string(*p)
			}
		case *domain.UserRole:
			if p != nil {
				return string(*p)
			}
		}
		return ""
	})
	app := fiber.New(fiber.Config{Views: engine})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis, metrics),
		Users:          handlers.NewUsersHandler(userService, validate),
		Views:          handlers.NewViewsHandler(userService, validate),
		Auth:           handlers.NewAuthHandler(tokenManager, cfg.Auth),
		AuthMiddleware: authMiddleware,
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
