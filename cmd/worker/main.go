package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/stwomack/temporal-ecommerce-agent/internal/activities"
	"github.com/stwomack/temporal-ecommerce-agent/internal/agents"
	"github.com/stwomack/temporal-ecommerce-agent/internal/config"
	"github.com/stwomack/temporal-ecommerce-agent/internal/infrastructure"
	"github.com/stwomack/temporal-ecommerce-agent/internal/store"
	"github.com/stwomack/temporal-ecommerce-agent/internal/workflows"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/idempotency"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/logging"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/shutdown"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New()

	stopTracing := tracing.InitTracer(
		tracing.TraceConfig{ExporterURL: cfg.OTELExporterURL, SampleRate: cfg.TraceSampleRate},
		tracing.AppInfo{Environment: cfg.Env, ServiceName: cfg.ServiceName + "-worker", ServiceVersion: cfg.ServiceVersion},
	)
	defer stopTracing()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
		Logger:    logging.Temporal(logger),
	})
	if err != nil {
		log.Fatalf("failed to connect to Temporal: %v", err)
	}
	defer temporalClient.Close()

	var snapshots activities.SnapshotStore
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to connect to Postgres: %v", err)
		}
		defer pool.Close()
		pg := store.NewPostgres(logger, pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare Postgres schema: %v", err)
		}
		snapshots = pg
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory snapshot store")
		snapshots = store.NewMemory()
	}

	var dedupe *idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		dedupe = idempotency.NewStore(rdb, 24*time.Hour)
	} else {
		logger.Warn("REDIS_ADDR not set, consumer dedupe disabled")
	}

	publisher, err := infrastructure.NewPublisher(logger, cfg.KafkaBrokers, cfg.NotificationsTopic, cfg.EventsTopic)
	if err != nil {
		log.Fatalf("failed to create Kafka publisher: %v", err)
	}
	defer publisher.Close()

	acts := &activities.Activities{
		Intake:          agents.NewIntakeAgent(),
		Payment:         agents.NewPaymentAgent(),
		Fulfillment:     agents.NewFulfillmentAgent(),
		CustomerService: agents.NewCustomerServiceAgent(),
		Store:           snapshots,
		Notifications:   publisher,
		Events:          publisher,
	}

	w := worker.New(temporalClient, cfg.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.OrderProcessingWorkflow)
	w.RegisterActivity(acts)

	consumer, err := infrastructure.NewConsumer(logger, cfg.KafkaBrokers, cfg.OrdersTopic, temporalClient, cfg.TaskQueue, dedupe)
	if err != nil {
		log.Fatalf("failed to create Kafka consumer: %v", err)
	}
	defer consumer.Close()

	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("kafka consumer stopped", "error", err)
		}
	}()

	logger.Info("worker started", "taskQueue", cfg.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
}
