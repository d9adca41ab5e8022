package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workorder-service/internal/api/http"
	"github.com/spec-kit/workorder-service/internal/api/http/handlers"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/cache"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/observability"
	"github.com/spec-kit/workorder-service/internal/persistence"
	"github.com/spec-kit/workorder-service/internal/repository"
	"github.com/spec-kit/workorder-service/internal/service"
	"github.com/spec-kit/workorder-service/internal/worker"
	"github.com/spec-kit/workorder-service/internal/workflow"
)

func newServeCommand() *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "Fixture file to load before serving (overrides STORE_SEED_FILE)")
	return cmd
}

func runServe(parent context.Context, seedFile string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(contextOrBackground(parent))
	defer cancel()

	store, closeStore, err := persistence.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		return err
	}
	defer closeStore()

	if seedFile == "" {
		seedFile = cfg.Store.SeedFile
	}
	if err := persistence.SeedFromFile(ctx, store, seedFile, logger); err != nil {
		logger.Error("failed to seed store", zap.Error(err))
		return err
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var references repository.ReferenceRepository = store.References()
	if redis.Enabled() {
		references = cache.NewReferenceCache(references, redis.Client, cfg.Redis.ReferenceCacheTTL(), logger)
	}

	metrics := observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(dispatcher, 256, logger)
	worker.StartNotificationWorker(ctx, service.NewNotificationService(dispatcher, logger, cfg.Notification), notifications)
	defer notifications.Stop()

	workOrders := service.NewWorkOrderService(service.WorkOrderDependencies{
		Store:      store,
		References: references,
		Machine:    workflow.NewMachine(cfg.Workflow.StrictReject),
		Dispatcher: notifications,
		Metrics:    metrics,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	health := map[string]handlers.Pinger{"store": store}
	if redis.Enabled() {
		health["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, health),
		WorkOrders:     handlers.NewWorkOrdersHandler(workOrders),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
		Metrics:        metrics,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("strict_reject", cfg.Workflow.StrictReject))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			return err
		}
	}

	return app.Shutdown()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
