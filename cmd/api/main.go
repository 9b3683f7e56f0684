package main

import (
	"context"
	"errors"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storyapi/internal/asset"
	"storyapi/internal/config"
	"storyapi/internal/database"
	"storyapi/internal/database/migration"
	handlers "storyapi/internal/http/handler"
	"storyapi/internal/http/middleware"
	"storyapi/internal/logging"
	"storyapi/internal/metrics"
	"storyapi/internal/notify"
	"storyapi/internal/otel"
	"storyapi/internal/repository/postgres"
	"storyapi/internal/service"
	"storyapi/internal/storage"
)

const (
	bodyLimit       = 20 << 20
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.Location())
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	dbx := database.WrapSqlx(db)

	resolver, err := asset.NewResolver(cfg.Asset)
	if err != nil {
		logger.Fatal("failed to initialize asset resolver", zap.Error(err))
	}
	store, err := newAssetStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize asset storage", zap.Error(err))
	}

	pipelineMetrics, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register pipeline metrics", zap.Error(err))
	}

	users := postgres.NewUserPostgres(dbx)
	dispatcher := notify.NewDispatcher(
		postgres.NewFollowerPostgres(dbx),
		users,
		newNotifier(cfg.Push, logger),
		notify.Options{
			Concurrency: cfg.Push.Concurrency,
			RatePerSec:  cfg.Push.RatePerSec,
			Logger:      logger,
			Metrics:     pipelineMetrics,
		},
	)

	pipeline := service.NewPipeline(resolver, store, dispatcher, service.PipelineOptions{
		Logger:        logger,
		Metrics:       pipelineMetrics,
		NotifyTimeout: time.Duration(cfg.Push.TimeoutSec) * time.Second,
	})
	svc := service.NewPublishService(pipeline,
		postgres.NewStoryPostgres(db),
		postgres.NewPagePostgres(db),
		users,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    bodyLimit,
		// Request values reach the detached notification pass and metric labels.
		Immutable: true,
	})

	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register http metrics", zap.Error(err))
	}

	// RequestID runs first so every later middleware sees the id
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(logger))
	app.Use(httpMetrics.Handler())

	limiter := middleware.NewRateLimiter(float64(cfg.RateLimit.RPS), cfg.RateLimit.Burst, logger)
	limiter.StartCleanup(ctx, time.Minute)

	opts := handlers.RouteOptions{
		Gatherer:     prometheus.DefaultGatherer,
		WriteLimiter: limiter.Handler(),
		Docs:         true,
	}
	if cfg.Asset.Backend == "disk" && cfg.Asset.Serve {
		opts.AssetPrefix = assetPrefix(cfg.Asset.CDNBase)
		opts.AssetRoot = cfg.Asset.Root
	}
	handlers.RegisterRoutes(app, db, svc, opts)

	addr := ":" + cfg.Port
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	logger.Info("server started", zap.String("addr", addr), zap.String("asset_backend", cfg.Asset.Backend))

	<-ctx.Done()
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(sctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	// Notifications already dispatched are allowed to finish.
	if err := pipeline.Wait(sctx); err != nil {
		logger.Warn("notifications still in flight", zap.Error(err))
	}
	if err := shutdownTracing(sctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("tracing shutdown", zap.Error(err))
	}
}

func newAssetStore(cfg *config.AppConfig) (storage.AssetStore, error) {
	if cfg.Asset.Backend == "minio" {
		s, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return storage.NewDisk(), nil
}

func newNotifier(cfg config.PushConfig, logger *zap.Logger) notify.Notifier {
	if cfg.Endpoint == "" {
		logger.Warn("push endpoint not configured, notifications are logged only")
		return notify.NewLogNotifier(logger)
	}
	return notify.NewHTTPNotifier(cfg.Endpoint, cfg.AccessToken, time.Duration(cfg.TimeoutSec)*time.Second)
}

// assetPrefix is the path part of the CDN base, or empty when assets sit at the host root.
func assetPrefix(cdnBase string) string {
	u, err := url.Parse(cdnBase)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	return u.Path
}
