package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	httpadapter "github.com/couchcryptid/wetland-risk-monitor/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wetland-risk-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/wetland-risk-monitor/internal/adapter/openmeteo"
	"github.com/couchcryptid/wetland-risk-monitor/internal/config"
	"github.com/couchcryptid/wetland-risk-monitor/internal/monitor"
	"github.com/couchcryptid/wetland-risk-monitor/internal/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

// startupWarmAttempts bounds the initial warm retries before the scheduler
// takes over.
const startupWarmAttempts = 5

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := openmeteo.NewClient(cfg.ForecastBaseURL, cfg.ForecastTimeout, metrics, logger)
	fetcher := openmeteo.NewCachedFetcher(client, cfg.ForecastCacheSize, metrics)
	logger.Info("forecast client configured",
		"base_url", cfg.ForecastBaseURL,
		"timeout", cfg.ForecastTimeout,
		"cache_size", cfg.ForecastCacheSize,
	)

	// Initialize publisher (feature-flagged via KAFKA_ENABLED).
	var publisher monitor.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("assessment publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("assessment publishing disabled")
	}

	svc := monitor.New(fetcher, publisher, clockwork.NewRealClock(), logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the snapshot cache; readiness flips after the first pass.
	go func() {
		if err := svc.WarmWithRetry(ctx, startupWarmAttempts); err != nil && ctx.Err() == nil {
			logger.Warn("startup warm incomplete", "error", err)
		}
	}()

	var scheduler *monitor.Scheduler
	if cfg.RefreshSchedule != "" {
		scheduler, err = monitor.NewScheduler(cfg.RefreshSchedule, svc, cfg.ForecastTimeout*2, logger)
		if err != nil {
			logger.Error("failed to schedule refresh", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	} else {
		logger.Info("scheduled refresh disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
