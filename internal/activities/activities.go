// Package activities holds every side-effecting operation of the order
// workflow. Nothing mutates an order or talks to the outside world
// except through these activities, so Temporal's event history fully
// determines what has already happened when a workflow replays.
package activities

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/tracing"
)

// InvalidTransitionError marks status updates the order lifecycle does
// not allow. The payment retry policy lists it as non-retryable so such
// failures surface immediately instead of burning attempts.
const InvalidTransitionError = "InvalidTransitionError"

// SnapshotStore persists the latest order snapshot after each mutation.
type SnapshotStore interface {
	Save(ctx context.Context, order domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
}

// NotificationSink delivers customer-facing messages. The call must
// complete (or fail) before the workflow proceeds.
type NotificationSink interface {
	Notify(ctx context.Context, order domain.Order, message string) error
}

// EventSink records order lifecycle events.
type EventSink interface {
	LogEvent(ctx context.Context, order domain.Order, event, details string) error
}

// Activities bundles the decision providers, the snapshot store and the
// sinks behind Temporal's activity boundary.
type Activities struct {
	Intake          domain.IntakeProvider
	Payment         domain.PaymentProvider
	Fulfillment     domain.FulfillmentProvider
	CustomerService domain.CustomerServiceProvider

	Store         SnapshotStore
	Notifications NotificationSink
	Events        EventSink
}

func (a *Activities) ProcessOrderIntake(ctx context.Context, order domain.Order) (domain.Decision, error) {
	ctx, span := tracing.StartApplication(ctx, "ProcessOrderIntake")
	defer span.End()
	span.SetAttributes(tracing.OrderAttributes(order)...)

	logger := activity.GetLogger(ctx)
	logger.Info("Processing order intake", "orderID", order.ID)

	decision, err := a.Intake.ProcessIntake(ctx, order)
	if err != nil {
		span.RecordError(err)
		return domain.Decision{}, fmt.Errorf("intake provider: %w", err)
	}
	logger.Info("Order intake decision", "orderID", order.ID, "decision", decision.Decision, "reasoning", decision.Reasoning)
	return decision, nil
}

func (a *Activities) ProcessPayment(ctx context.Context, order domain.Order, attempt int) (domain.Decision, error) {
	ctx, span := tracing.StartApplication(ctx, "ProcessPayment")
	defer span.End()
	span.SetAttributes(tracing.OrderAttributes(order)...)

	logger := activity.GetLogger(ctx)
	logger.Info("Processing payment", "orderID", order.ID, "attempt", attempt)

	decision, err := a.Payment.ProcessPayment(ctx, order, attempt)
	if err != nil {
		span.RecordError(err)
		return domain.Decision{}, fmt.Errorf("payment provider: %w", err)
	}
	logger.Info("Payment decision", "orderID", order.ID, "decision", decision.Decision, "reasoning", decision.Reasoning)
	return decision, nil
}

func (a *Activities) ProcessFulfillment(ctx context.Context, order domain.Order) (domain.Decision, error) {
	ctx, span := tracing.StartApplication(ctx, "ProcessFulfillment")
	defer span.End()
	span.SetAttributes(tracing.OrderAttributes(order)...)

	logger := activity.GetLogger(ctx)
	logger.Info("Processing fulfillment", "orderID", order.ID)

	decision, err := a.Fulfillment.ProcessFulfillment(ctx, order)
	if err != nil {
		span.RecordError(err)
		return domain.Decision{}, fmt.Errorf("fulfillment provider: %w", err)
	}
	logger.Info("Fulfillment decision", "orderID", order.ID, "decision", decision.Decision, "reasoning", decision.Reasoning)
	return decision, nil
}

func (a *Activities) HandleCustomerService(ctx context.Context, order domain.Order, issueType, reason string) (domain.Decision, error) {
	ctx, span := tracing.StartApplication(ctx, "HandleCustomerService")
	defer span.End()
	span.SetAttributes(tracing.OrderAttributes(order)...)

	logger := activity.GetLogger(ctx)
	logger.Info("Handling customer service escalation", "orderID", order.ID, "issueType", issueType)

	decision, err := a.CustomerService.HandleIssue(ctx, order, issueType, reason)
	if err != nil {
		span.RecordError(err)
		return domain.Decision{}, fmt.Errorf("customer service provider: %w", err)
	}
	logger.Info("Customer service decision", "orderID", order.ID, "decision", decision.Decision, "reasoning", decision.Reasoning)
	return decision, nil
}

// UpdateOrderStatus returns a new snapshot with the order status applied
// and persisted. Re-applying the current status is a no-op success so
// the activity stays idempotent under at-least-once execution.
func (a *Activities) UpdateOrderStatus(ctx context.Context, order domain.Order, status domain.OrderStatus) (domain.Order, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Updating order status", "orderID", order.ID, "status", status)

	if order.Status == status {
		return order, nil
	}
	if !domain.CanTransition(order.Status, status) {
		return domain.Order{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("order %s cannot move from %s to %s", order.ID, order.Status, status),
			InvalidTransitionError, nil)
	}

	updated := order.WithStatus(status, time.Now().UTC())
	if err := a.save(ctx, updated); err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

func (a *Activities) UpdatePaymentStatus(ctx context.Context, order domain.Order, status domain.PaymentStatus) (domain.Order, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Updating payment status", "orderID", order.ID, "status", status)

	if order.PaymentStatus == status {
		return order, nil
	}
	updated := order.WithPaymentStatus(status, time.Now().UTC())
	if err := a.save(ctx, updated); err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// UpdateShippingStatus applies the shipping status and assigns a
// tracking number the first time an order ships.
func (a *Activities) UpdateShippingStatus(ctx context.Context, order domain.Order, status domain.ShippingStatus) (domain.Order, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Updating shipping status", "orderID", order.ID, "status", status)

	if order.ShippingStatus == status {
		return order, nil
	}
	now := time.Now().UTC()
	updated := order.WithShippingStatus(status, now)
	if status == domain.ShippingStatusShipped && updated.TrackingNumber == "" {
		updated = updated.WithTrackingNumber(newTrackingNumber(), now)
		logger.Info("Assigned tracking number", "orderID", order.ID, "trackingNumber", updated.TrackingNumber)
	}
	if err := a.save(ctx, updated); err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

func (a *Activities) SendNotification(ctx context.Context, order domain.Order, message string) error {
	ctx, span := tracing.StartInfrastructure(ctx, "SendNotification", tracing.SubLayerBroker)
	defer span.End()

	logger := activity.GetLogger(ctx)
	logger.Info("Sending notification", "orderID", order.ID, "email", order.Customer.Email, "message", message)

	if err := a.Notifications.Notify(ctx, order, message); err != nil {
		span.RecordError(err)
		return fmt.Errorf("notify order %s: %w", order.ID, err)
	}
	return nil
}

func (a *Activities) LogOrderEvent(ctx context.Context, order domain.Order, event, details string) error {
	ctx, span := tracing.StartInfrastructure(ctx, "LogOrderEvent", tracing.SubLayerBroker)
	defer span.End()

	logger := activity.GetLogger(ctx)
	logger.Info("Order event", "orderID", order.ID, "event", event, "details", details)

	if err := a.Events.LogEvent(ctx, order, event, details); err != nil {
		span.RecordError(err)
		return fmt.Errorf("log event %s for order %s: %w", event, order.ID, err)
	}
	return nil
}

func (a *Activities) save(ctx context.Context, order domain.Order) error {
	ctx, span := tracing.StartInfrastructure(ctx, "SaveOrderSnapshot", tracing.SubLayerDatabase)
	defer span.End()

	if err := a.Store.Save(ctx, order); err != nil {
		span.RecordError(err)
		return fmt.Errorf("save snapshot for order %s: %w", order.ID, err)
	}
	return nil
}

func newTrackingNumber() string {
	u := uuid.New()
	return fmt.Sprintf("TRK%010d", binary.BigEndian.Uint32(u[:4]))
}
