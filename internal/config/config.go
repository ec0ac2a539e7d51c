package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is loaded from the environment; one struct serves the worker,
// the API and the demo client.
type Config struct {
	Env            string `env:"APP_ENV" envDefault:"dev"`
	ServiceName    string `env:"APP_SERVICE_NAME" envDefault:"temporal-ecommerce-agent"`
	ServiceVersion string `env:"APP_SERVICE_VERSION" envDefault:"dev"`

	TemporalHostPort  string `env:"TEMPORAL_HOST" envDefault:"localhost:7233"`
	TemporalNamespace string `env:"TEMPORAL_NAMESPACE" envDefault:"default"`
	TaskQueue         string `env:"TEMPORAL_TASK_QUEUE" envDefault:"ecommerce-order-processing"`

	KafkaBrokers       []string `env:"KAFKA_BROKER" envDefault:"localhost:9092"`
	OrdersTopic        string   `env:"KAFKA_ORDERS_TOPIC" envDefault:"orders.incoming"`
	NotificationsTopic string   `env:"KAFKA_NOTIFICATIONS_TOPIC" envDefault:"orders.notifications"`
	EventsTopic        string   `env:"KAFKA_EVENTS_TOPIC" envDefault:"orders.events"`

	// PostgresDSN empty means the in-memory snapshot store.
	PostgresDSN string `env:"POSTGRES_DSN"`
	// RedisAddr empty disables consumer-side dedupe.
	RedisAddr string `env:"REDIS_ADDR"`

	OTELExporterURL string  `env:"OTEL_EXPORTER_URL" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8081"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
