package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivedesk/internal/api"
	"drivedesk/internal/config"
	"drivedesk/internal/domain"
	"drivedesk/internal/events"
	"drivedesk/internal/logging"
	"drivedesk/internal/mailer"
	"drivedesk/internal/metrics"
	"drivedesk/internal/repository"
	"drivedesk/internal/service"
	"drivedesk/internal/storage"
	"drivedesk/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := loadCatalogOverride(cfg, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	kv, kvCloser, err := initKV(cfg, redisClient, &logger)
	if err != nil {
		return err
	}
	if kvCloser != nil {
		defer (func() { _ = kvCloser.Close() })()
	}

	keys := storage.Keys{
		Bookings: cfg.Storage.Keys.Bookings,
		Managers: cfg.Storage.Keys.Managers,
		Session:  cfg.Storage.Keys.Session,
		Feedback: cfg.Storage.Keys.Feedback,
	}
	bookingStore := storage.NewBookingStore(kv, keys)
	managerDirectory := storage.NewManagerDirectory(kv, keys)
	feedbackStore := storage.NewFeedbackStore(kv, keys)

	eventBus := events.NewEventBus()

	mailLogger := logger.With().Str("component", "mailer").Logger()
	mail := mailer.NewLogMailer(cfg.Mailer.From, &mailLogger)

	workerLogger := logger.With().Str("component", "mail_worker").Logger()
	mailWorker := worker.NewMailWorker(mail, redisClient, cfg.Mailer.QueueKey, worker.RetryPolicy{
		MaxRetries:   cfg.Mailer.MaxRetries,
		InitialDelay: cfg.Mailer.InitialDelay(),
		MaxDelay:     cfg.Mailer.MaxDelay(),
	}, &workerLogger)

	bookingService := service.NewBookingService(bookingStore, eventBus, mailWorker, &logger)
	managerService := service.NewManagerService(managerDirectory, eventBus, &logger)
	feedbackService := service.NewFeedbackService(feedbackStore, bookingStore, eventBus, &logger)

	httpServer := api.NewHTTPServer(cfg.Server, bookingService, managerService, feedbackService, cfg.Catalog, cfg.Exports, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go mailWorker.Start(ctx)

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadCatalogOverride replaces the configured model and dealership lists with
// the contents of CATALOG_PATH when that file exists.
func loadCatalogOverride(cfg *config.Config, logger *zerolog.Logger) error {
	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		return nil
	}

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", catalogPath).Msg("read catalog")
		return err
	}

	var catalog struct {
		Models      []string `yaml:"models"`
		Dealerships []string `yaml:"dealerships"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		logger.Error().Err(err).Str("catalog_path", catalogPath).Msg("parse catalog")
		return err
	}

	if len(catalog.Models) > 0 {
		cfg.Catalog.Models = catalog.Models
	}
	if len(catalog.Dealerships) > 0 {
		cfg.Catalog.Dealerships = catalog.Dealerships
	}

	return config.ValidateCatalog(cfg.Catalog)
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initKV selects the storage backend. Redis gets a memory fallback wrapper;
// sqlite and memory run as-is.
func initKV(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) (domain.KV, io.Closer, error) {
	switch cfg.Storage.Backend {
	case "redis":
		if redisClient == nil {
			logger.Warn().Msg("redis backend configured but unreachable, using memory store")
			return repository.NewMemoryKV(), nil, nil
		}
		failoverLogger := logger.With().Str("component", "kv").Logger()
		kv := repository.NewFailoverKV(
			repository.NewRedisKV(redisClient, cfg.Redis.Prefix),
			repository.NewMemoryKV(),
			&failoverLogger,
		)
		return kv, nil, nil
	case "sqlite":
		kv, err := repository.NewSQLiteKV(cfg.SQLite.Path)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.SQLite.Path).Msg("init sqlite storage")
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.SQLite.Path).Msg("sqlite storage ready")
		return kv, kv, nil
	default:
		return repository.NewMemoryKV(), nil, nil
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.Server.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.Server.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
