package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
	"github.com/stwomack/temporal-ecommerce-agent/internal/workflows"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/idempotency"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/tracing"
)

// Consumer turns incoming Kafka order records into workflow starts. The
// workflow id is derived from the order id, so the Temporal server
// enforces one live orchestration per order; the optional Redis dedupe
// avoids even attempting a second start for a redelivered record.
type Consumer struct {
	client    *kgo.Client
	topic     string
	temporal  client.Client
	taskQueue string
	dedupe    *idempotency.Store
	log       *slog.Logger
}

func NewConsumer(log *slog.Logger, brokers []string, topic string, temporalClient client.Client, taskQueue string, dedupe *idempotency.Store) (*Consumer, error) {
	kafkaClient, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup("order-orchestration"),
		kgo.ConsumeTopics(topic),
		kgo.BlockRebalanceOnPoll(),
	)
	if err != nil {
		return nil, fmt.Errorf("init kafka consumer: %w", err)
	}
	return &Consumer{
		client:    kafkaClient,
		topic:     topic,
		temporal:  temporalClient,
		taskQueue: taskQueue,
		dedupe:    dedupe,
		log:       log,
	}, nil
}

// Run polls until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("order topic listening started", "topic", c.topic)
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.log.Error("kafka fetch error", "topic", topic, "partition", partition, "error", err)
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			links := tracing.ExtractTraceContextFromKafka(ctx, record.Headers)
			func(ctx context.Context) {
				ctx, span := tracing.StartInfrastructure(ctx, "ProcessOrderRecord", tracing.SubLayerBroker, trace.WithLinks(links...))
				defer span.End()
				if err := c.processRecord(ctx, record); err != nil {
					span.RecordError(err)
					c.log.Error("failed to process order record", "error", err)
				}
			}(ctx)
		}
		c.client.AllowRebalance()
	}
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) error {
	if c.dedupe != nil {
		seen, err := c.dedupe.Seen(ctx, c.dedupe.Key(record.Topic, record.Partition, record.Offset))
		if err != nil {
			return fmt.Errorf("dedupe check: %w", err)
		}
		if seen {
			c.log.Info("skipping already-processed record",
				"topic", record.Topic, "partition", record.Partition, "offset", record.Offset)
			return nil
		}
	}

	var order domain.Order
	if err := json.Unmarshal(record.Value, &order); err != nil {
		return fmt.Errorf("decode order payload: %w", err)
	}
	if order.ID == "" {
		return errors.New("order payload has no id")
	}

	run, err := c.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflows.WorkflowIDPrefix + order.ID,
		TaskQueue: c.taskQueue,
	}, workflows.OrderProcessingWorkflow, order)
	if err != nil {
		return fmt.Errorf("start workflow for order %s: %w", order.ID, err)
	}

	c.log.Info("order workflow started", "orderID", order.ID, "workflowID", run.GetID(), "runID", run.GetRunID())
	return nil
}

func (c *Consumer) Close() {
	c.client.Close()
}
