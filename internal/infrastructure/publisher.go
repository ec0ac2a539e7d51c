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

// Publisher delivers notifications and order events to Kafka. It backs
// both workflow sinks: a produce is acknowledged by all in-sync replicas
// before the activity completes, which is the durability the workflow
// needs before moving on.
type Publisher struct {
	client             *kgo.Client
	admin              *kadm.Client
	notificationsTopic string
	eventsTopic        string
	log                *slog.Logger
}

type notificationMessage struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type eventMessage struct {
	OrderID        string `json:"order_id"`
	Event          string `json:"event"`
	Details        string `json:"details"`
	OrderStatus    string `json:"order_status"`
	PaymentStatus  string `json:"payment_status"`
	ShippingStatus string `json:"shipping_status"`
	At             string `json:"at"`
}

func NewPublisher(log *slog.Logger, brokers []string, notificationsTopic, eventsTopic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProduceRequestTimeout(10*time.Second),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ClientID("oms-worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("init kafka producer: %w", err)
	}

	p := &Publisher{
		client:             client,
		admin:              kadm.NewClient(client),
		notificationsTopic: notificationsTopic,
		eventsTopic:        eventsTopic,
		log:                log,
	}
	for _, topic := range []string{notificationsTopic, eventsTopic} {
		if err := p.ensureTopicExists(topic); err != nil {
			client.Close()
			return nil, err
		}
	}
	return p, nil
}

func (p *Publisher) ensureTopicExists(topic string) error {
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

func (p *Publisher) Notify(ctx context.Context, order domain.Order, message string) error {
	payload, err := json.Marshal(notificationMessage{
		OrderID: order.ID,
		Email:   order.Customer.Email,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("marshal notification for order %s: %w", order.ID, err)
	}
	return p.produce(ctx, p.notificationsTopic, order.ID, payload)
}

func (p *Publisher) LogEvent(ctx context.Context, order domain.Order, event, details string) error {
	payload, err := json.Marshal(eventMessage{
		OrderID:        order.ID,
		Event:          event,
		Details:        details,
		OrderStatus:    string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		ShippingStatus: string(order.ShippingStatus),
		At:             order.UpdatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal event for order %s: %w", order.ID, err)
	}
	return p.produce(ctx, p.eventsTopic, order.ID, payload)
}

func (p *Publisher) produce(ctx context.Context, topic, key string, payload []byte) error {
	record := &kgo.Record{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: tracing.InjectTraceContextToKafka(ctx),
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
