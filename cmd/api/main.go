package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/assignment"
	"github.com/spec-kit/helpdesk/internal/broker"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/observer"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
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

	var (
		redis   *broker.Redis
		queue   service.EventQueue
		workers *worker.NotificationWorker
	)
	if cfg.Redis.Enabled {
		redis = broker.NewRedis(cfg.Redis, logger)
		defer redis.Close()

		publisher := broker.NewRedisPublisher(redis.Client, cfg.Notification.Channel)
		workers = worker.NewNotificationWorker(publisher, logger, cfg.Notification.QueueSize, 2*time.Second)
		workers.Start(ctx)
		queue = workers
	}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, queue, logger, cfg.Notification).RegisterHandlers()

	strategies, err := assignment.NewRegistry(cfg.Assignment.DefaultStrategy)
	if err != nil {
		logger.Fatal("failed to build strategies", zap.Error(err))
	}

	counter := observer.NewStatsCounter()
	system := service.NewTicketSystem(service.TicketSystemDependencies{Logger: logger})
	system.AddObserver(observer.NewLogger(cfg.Observer.LoggerName, logger))
	system.AddObserver(counter)
	system.AddObserver(observer.NewEventBridge(dispatcher, time.Second))

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis),
		Directory:  handlers.NewDirectoryHandler(system),
		Tickets:    handlers.NewTicketsHandler(system, strategies),
		Statistics: handlers.NewStatisticsHandler(system, counter, metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	if workers != nil {
		workers.Stop()
	}
	logger.Info("event totals", zap.String("stats", counter.Display()))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
