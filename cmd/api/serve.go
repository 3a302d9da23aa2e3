package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront-api/internal/api/http"
	"github.com/spec-kit/storefront-api/internal/api/http/handlers"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/observability"
	"github.com/spec-kit/storefront-api/internal/persistence"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := pg.Migrate(ctx, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	users := pg.UserStore(logger)

	redis := persistence.NewRedis(cfg.Redis)
	defer redis.Close()
	notifier := redis.Notifier(ctx, cfg.Notification.ResetQueue, logger)

	health := map[string]handlers.Pinger{"redis": redis}
	if pg.Configured() {
		health["postgres"] = pg
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, notifier, logger, cfg.Notification).RegisterHandlers()

	authService, err := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   users,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:      logger,
		Metrics:     metrics,
		Timeout:     cfg.App.RequestTimeout(),
		FrontendURL: cfg.App.FrontendURL,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, health),
		Auth:     handlers.NewAuthHandler(authService, cfg.Auth),
		Session:  auth.NewSessionMiddleware(authService.TokenManager(), cfg.Auth.CookieName),
		Registry: metrics.Registry(),
	})

	workers := worker.NewGroup(logger)
	workers.AddSweeper(worker.NewResetSweeper(users, cfg.Auth.SweepInterval(), logger))
	workers.Add("http", func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", cfg.App.Addr()))
			errCh <- app.Listen(cfg.App.Addr())
		}()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			return app.ShutdownWithTimeout(shutdownTimeout)
		}
	})

	return workers.Run(ctx)
}
