package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/fluxboard/internal/api/http"
	"github.com/spec-kit/fluxboard/internal/api/http/handlers"
	"github.com/spec-kit/fluxboard/internal/auth"
	"github.com/spec-kit/fluxboard/internal/events"
	"github.com/spec-kit/fluxboard/internal/observability"
	"github.com/spec-kit/fluxboard/internal/persistence"
	"github.com/spec-kit/fluxboard/internal/repository"
	"github.com/spec-kit/fluxboard/internal/service"
	"github.com/spec-kit/fluxboard/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	fluxRepo := repository.NewFluxRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	relay := worker.NewRelay(redis, 256, 2*time.Second, logger)
	relay.Start()
	defer relay.Stop()
	service.NewChangeNotifier(dispatcher, relay, logger, cfg.Events).RegisterHandlers()

	dashboard := service.NewDashboardService(service.DashboardDependencies{
		FluxRepo:     fluxRepo,
		UserRepo:     userRepo,
		FetchTimeout: cfg.Board.FetchTimeout(),
		PageSize:     cfg.Board.PageSize,
		MaxPageSize:  cfg.Board.MaxPageSize,
		Logger:       logger,
	})
	gateway := service.NewMutationGateway(service.MutationDependencies{
		FluxRepo:   fluxRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Flux:           handlers.NewFluxHandler(dashboard, gateway, cfg.Board.Location(), logger),
		Users:          handlers.NewUsersHandler(dashboard),
		AuthMiddleware: authMiddleware,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		logger.Error("fiber listen", zap.Error(err))
		return err
	case sig := <-shutdownSignal():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.ShutdownWithTimeout(10 * time.Second)
}

func shutdownSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
