package activities

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
	"github.com/stwomack/temporal-ecommerce-agent/internal/store"
)

type fakeSink struct {
	mu            sync.Mutex
	notifications []string
	events        []string
}

func (f *fakeSink) Notify(ctx context.Context, order domain.Order, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, message)
	return nil
}

func (f *fakeSink) LogEvent(ctx context.Context, order domain.Order, event, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event+":"+details)
	return nil
}

type fixedIntake struct{ decision domain.Decision }

func (p fixedIntake) ProcessIntake(ctx context.Context, order domain.Order) (domain.Decision, error) {
	return p.decision, nil
}

type failingIntake struct{}

func (failingIntake) ProcessIntake(ctx context.Context, order domain.Order) (domain.Decision, error) {
	return domain.Decision{}, errors.New("model endpoint down")
}

func newEnv(t *testing.T) (*testsuite.TestActivityEnvironment, *Activities, *store.Memory, *fakeSink) {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()

	sink := &fakeSink{}
	snapshots := store.NewMemory()
	acts := &Activities{
		Intake:        fixedIntake{decision: domain.Decision{AgentName: "intake", Decision: domain.DecisionApprove, Reasoning: "ok"}},
		Store:         snapshots,
		Notifications: sink,
		Events:        sink,
	}
	env.RegisterActivity(acts)
	return env, acts, snapshots, sink
}

func pendingOrder() domain.Order {
	return domain.NewOrder("ORD-1", domain.Customer{ID: "CUST-1", Email: "john.doe@example.com"}, []domain.Product{
		{ID: "PROD-001", Name: "Wireless Headphones", Price: 99.99, Quantity: 2, SKU: "WH-001"},
	})
}

func TestUpdateOrderStatusPersistsSnapshot(t *testing.T) {
	env, acts, snapshots, _ := newEnv(t)

	val, err := env.ExecuteActivity(acts.UpdateOrderStatus, pendingOrder(), domain.OrderStatusValidated)
	require.NoError(t, err)

	var updated domain.Order
	require.NoError(t, val.Get(&updated))
	require.Equal(t, domain.OrderStatusValidated, updated.Status)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	stored, err := snapshots.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusValidated, stored.Status)
}

func TestUpdateOrderStatusSameStatusIsNoOp(t *testing.T) {
	env, acts, snapshots, _ := newEnv(t)
	order := pendingOrder()

	val, err := env.ExecuteActivity(acts.UpdateOrderStatus, order, domain.OrderStatusPending)
	require.NoError(t, err)

	var updated domain.Order
	require.NoError(t, val.Get(&updated))
	require.Equal(t, order.Status, updated.Status)
	require.Equal(t, order.UpdatedAt.UTC(), updated.UpdatedAt.UTC())

	// A replayed no-op writes nothing.
	_, err = snapshots.Get(context.Background(), "ORD-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateOrderStatusRejectsIllegalTransition(t *testing.T) {
	env, acts, _, _ := newEnv(t)

	_, err := env.ExecuteActivity(acts.UpdateOrderStatus, pendingOrder(), domain.OrderStatusShipped)
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, InvalidTransitionError, appErr.Type())
	require.True(t, appErr.NonRetryable())
}

func TestUpdateShippingStatusAssignsTrackingNumber(t *testing.T) {
	env, acts, snapshots, _ := newEnv(t)

	val, err := env.ExecuteActivity(acts.UpdateShippingStatus, pendingOrder(), domain.ShippingStatusShipped)
	require.NoError(t, err)

	var updated domain.Order
	require.NoError(t, val.Get(&updated))
	require.Equal(t, domain.ShippingStatusShipped, updated.ShippingStatus)
	require.True(t, strings.HasPrefix(updated.TrackingNumber, "TRK"))
	require.Len(t, updated.TrackingNumber, 13)

	stored, err := snapshots.Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.Equal(t, updated.TrackingNumber, stored.TrackingNumber)
}

func TestUpdateShippingStatusKeepsExistingTrackingNumber(t *testing.T) {
	env, acts, _, _ := newEnv(t)
	order := pendingOrder()
	order.TrackingNumber = "TRK0000000001"

	val, err := env.ExecuteActivity(acts.UpdateShippingStatus, order, domain.ShippingStatusShipped)
	require.NoError(t, err)

	var updated domain.Order
	require.NoError(t, val.Get(&updated))
	require.Equal(t, "TRK0000000001", updated.TrackingNumber)
}

func TestSendNotificationAndLogEvent(t *testing.T) {
	env, acts, _, sink := newEnv(t)
	order := pendingOrder()

	_, err := env.ExecuteActivity(acts.SendNotification, order, "Order validated successfully")
	require.NoError(t, err)
	_, err = env.ExecuteActivity(acts.LogOrderEvent, order, "workflow_started", "Order processing workflow initiated")
	require.NoError(t, err)

	require.Equal(t, []string{"Order validated successfully"}, sink.notifications)
	require.Equal(t, []string{"workflow_started:Order processing workflow initiated"}, sink.events)
}

func TestProcessOrderIntakeDelegatesToProvider(t *testing.T) {
	env, acts, _, _ := newEnv(t)

	val, err := env.ExecuteActivity(acts.ProcessOrderIntake, pendingOrder())
	require.NoError(t, err)

	var d domain.Decision
	require.NoError(t, val.Get(&d))
	require.Equal(t, domain.DecisionApprove, d.Decision)
	require.Equal(t, "intake", d.AgentName)
}

func TestProcessOrderIntakeWrapsProviderError(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	sink := &fakeSink{}
	acts := &Activities{Intake: failingIntake{}, Store: store.NewMemory(), Notifications: sink, Events: sink}
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.ProcessOrderIntake, pendingOrder())
	require.Error(t, err)
	require.Contains(t, err.Error(), "model endpoint down")
}
