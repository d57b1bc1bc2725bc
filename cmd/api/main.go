package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civicguard/internal/api/http"
	"github.com/spec-kit/civicguard/internal/api/http/handlers"
	"github.com/spec-kit/civicguard/internal/config"
	"github.com/spec-kit/civicguard/internal/events"
	"github.com/spec-kit/civicguard/internal/geo"
	"github.com/spec-kit/civicguard/internal/media"
	"github.com/spec-kit/civicguard/internal/notify"
	"github.com/spec-kit/civicguard/internal/observability"
	"github.com/spec-kit/civicguard/internal/persistence"
	"github.com/spec-kit/civicguard/internal/queue"
	"github.com/spec-kit/civicguard/internal/repository"
	"github.com/spec-kit/civicguard/internal/routing"
	"github.com/spec-kit/civicguard/internal/service"
	"github.com/spec-kit/civicguard/internal/storage"
	"github.com/spec-kit/civicguard/internal/vision"
	"github.com/spec-kit/civicguard/internal/worker"
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

	metrics := observability.NewMetrics()

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

	var ticketRepo repository.TicketRepository
	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewPostgresTicketRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	var jobs queue.Queue
	if redis.Available(ctx) {
		jobs = queue.NewRedisQueue(redis.Client, cfg.Worker.QueueName)
	} else {
		jobs = queue.NewMemoryQueue(0)
	}

	var objectStore storage.ObjectStore
	mediaDir := ""
	if cfg.Storage.MinioConfigured() {
		minioStore, err := storage.NewMinioStore(cfg.Storage, logger)
		if err != nil {
			logger.Fatal("failed to init minio storage", zap.Error(err))
		}
		objectStore = minioStore
	} else {
		localStore, err := storage.NewLocalStore(cfg.Storage.MediaDir, cfg.App.PublicURL)
		if err != nil {
			logger.Fatal("failed to init local storage", zap.Error(err))
		}
		objectStore = localStore
		mediaDir = localStore.Dir()
	}

	routes, err := routing.LoadTable(cfg.Routing.TablePath, cfg.Routing.DefaultZone)
	if err != nil {
		logger.Fatal("failed to load routing table", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	apiNotifier := notify.NewHTTPNotifier()

	notificationService := service.NewNotificationService(dispatcher, apiNotifier, logger, cfg.Notify)
	notificationService.RegisterHandlers()

	resolver := geo.NewResolver(cfg.Geo, logger, metrics)

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		TicketRepo: ticketRepo,
		Store:      objectStore,
		Classifier: vision.NewRuleBasedClassifier(),
		GPS:        media.NewExifExtractor(),
		Resolver:   resolver,
		Jobs:       jobs,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	ticketService := service.NewTicketService(ticketRepo)

	filingWorker := worker.NewFilingWorker(worker.FilingDependencies{
		TicketRepo: ticketRepo,
		Routes:     routes,
		Email:      notify.NewSMTPSender(cfg.SMTP),
		API:        apiNotifier,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	waitForWorkers := worker.StartPool(ctx, cfg.Worker.Count, jobs, filingWorker, logger)

	app := fiber.New(fiber.Config{BodyLimit: media.MaxUploadBytes + 1024})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.AllowedOrigins)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:  handlers.NewTicketsHandler(intakeService, ticketService),
		Geocode:  handlers.NewGeocodeHandler(resolver),
		MediaDir: mediaDir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	waitForWorkers()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
