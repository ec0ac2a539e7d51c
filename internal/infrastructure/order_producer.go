package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/tracing"
)

// OrderProducer publishes accepted orders to the intake topic for the
// worker to pick up.
type OrderProducer struct {
	client *kgo.Client
	admin  *kadm.Client
	topic  string
	log    *slog.Logger
}

func NewOrderProducer(log *slog.Logger, brokers []string, topic string) (*OrderProducer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProduceRequestTimeout(10*time.Second),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ClientID("oms-api"),
	)
	if err != nil {
		return nil, fmt.Errorf("init kafka producer: %w", err)
	}

	p := &OrderProducer{
		client: client,
		admin:  kadm.NewClient(client),
		topic:  topic,
		log:    log,
	}
	if err := p.ensureTopicExists(topic); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *OrderProducer) ensureTopicExists(topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := p.admin.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if _, ok := existing[topic]; ok {
		return nil
	}
	if _, err := p.admin.CreateTopics(ctx, 1, 1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	p.log.Info("kafka topic created", "topic", topic)
	return nil
}

func (p *OrderProducer) PublishOrder(ctx context.Context, order domain.Order) error {
	ctx, span := tracing.StartInfrastructure(ctx, "PublishOrder", tracing.SubLayerBroker)
	defer span.End()
	span.SetAttributes(tracing.OrderAttributes(order)...)

	payload, err := json.Marshal(order)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal order %s: %w", order.ID, err)
	}

	record := &kgo.Record{
		Topic:   p.topic,
		Key:     []byte(order.ID),
		Value:   payload,
		Headers: tracing.InjectTraceContextToKafka(ctx),
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("produce order %s: %w", order.ID, err)
	}

	p.log.Info("order published", "orderID", order.ID, "topic", p.topic)
	return nil
}

func (p *OrderProducer) Close() {
	p.client.Close()
}
