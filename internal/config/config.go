package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Open-Meteo forecast configuration.
	ForecastBaseURL   string
	ForecastTimeout   time.Duration
	ForecastCacheSize int

	// RefreshSchedule is a cron spec for re-fetching every site. Empty disables it.
	RefreshSchedule string

	// Assessment publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	forecastTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FORECAST_TIMEOUT", "10s"))
	if err != nil || forecastTimeout <= 0 {
		return nil, errors.New("invalid FORECAST_TIMEOUT")
	}

	refreshSchedule := sharedcfg.EnvOrDefault("REFRESH_SCHEDULE", "@every 30m")
	if v, ok := os.LookupEnv("REFRESH_SCHEDULE"); ok && v == "" {
		refreshSchedule = ""
	}
	if refreshSchedule != "" {
		if _, err := cron.ParseStandard(refreshSchedule); err != nil {
			return nil, fmt.Errorf("invalid REFRESH_SCHEDULE: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ForecastBaseURL:   sharedcfg.EnvOrDefault("FORECAST_BASE_URL", "https://api.open-meteo.com"),
		ForecastTimeout:   forecastTimeout,
		ForecastCacheSize: parseForecastCacheSize(),

		RefreshSchedule: refreshSchedule,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "wetland-risk-assessments"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseForecastCacheSize() int {
	if s := os.Getenv("FORECAST_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 64
}
