package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawcare/internal/api"
	"pawcare/internal/booking"
	"pawcare/internal/catalog"
	"pawcare/internal/config"
	"pawcare/internal/domain"
	"pawcare/internal/events"
	"pawcare/internal/logging"
	"pawcare/internal/metrics"
	"pawcare/internal/repository"
	"pawcare/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
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

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	drafts := initDraftRepository(cfg, redisClient, &logger)

	catalogClient := catalog.NewClient(cfg.Catalog, *logging.Component(&logger, "catalog"))
	if redisClient != nil {
		catalogClient.UseRedisCache(redisClient, cfg.Catalog.CacheTTLDuration())
	}

	eventBus := initEventBus(&logger)

	draftService := service.NewDraftService(drafts, catalogClient, eventBus, service.Options{
		MaxBookingDays: cfg.Drafts.MaxBookingDays,
		SubmitLimit:    cfg.Drafts.SubmitLimit,
		SubmitWindow:   cfg.Drafts.SubmitWindowDuration(),
		Summary: booking.SummaryFormat{
			CurrencySymbol: cfg.Summary.CurrencySymbol,
			DateLayout:     cfg.Summary.DateLayout,
		},
	}, logging.Component(&logger, "drafts"))

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	httpServer := api.NewHTTPServer(&cfg.API, draftService, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
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

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, redisClient); err != nil {
		if cfg.Drafts.Store == "redis" {
			// Drafts fall back to memory and the failover store keeps probing.
			logger.Warn().Err(err).Msg("redis unreachable at startup, drafts start in memory")
			return redisClient
		}
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(redisClient)
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initDraftRepository(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.DraftRepository {
	memory := repository.NewMemoryDraftRepository(cfg.Drafts.TTLDuration())
	if cfg.Drafts.Store != "redis" || redisClient == nil {
		logger.Info().Msg("drafts stored in memory")
		return memory
	}

	primary := repository.NewRedisDraftRepository(redisClient, cfg.Drafts.TTLDuration())
	logger.Info().Msg("drafts stored in redis with in-memory failover")
	return repository.NewFailoverDraftRepository(primary, memory, logging.Component(logger, "drafts-store"))
}

func initEventBus(logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus()
	eventLogger := logging.Component(logger, "events")

	for _, eventType := range []string{
		events.EventDraftStarted,
		events.EventDraftReset,
		events.EventDraftCancelled,
		events.EventBookingSubmitted,
		events.EventBookingRejected,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			eventLogger.Info().
				Str("event_id", event.ID).
				Str("event_type", event.Type).
				RawJSON("payload", event.Payload).
				Msg("booking event")
			return nil
		})
	}
	return bus
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

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	event := logger.Info().Int("http_port", cfg.API.HTTP.Port)
	if grpcServer != nil {
		event = event.Str("grpc_addr", grpcServer.Addr())
	}
	event.Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.SetServing(false)
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
