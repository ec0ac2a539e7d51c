// Package workflows contains the durable order processing workflow. The
// workflow is a sequential state machine over an immutable order
// snapshot chain; every side effect runs as an activity so the event
// history alone reconstructs progress after a crash.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/stwomack/temporal-ecommerce-agent/internal/activities"
	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

// WorkflowIDPrefix plus the order id names the workflow instance. The
// server guarantees at most one running instance per id, which is the
// only mutual exclusion an order needs.
const WorkflowIDPrefix = "order-processing-"

const (
	maxPaymentRetries = 3

	decisionTimeout   = 5 * time.Minute
	escalationTimeout = 10 * time.Minute

	defaultMaxAttempts = 3
)

// paymentNonRetryable lists error types the payment activity gateway
// must not retry; validation-class failures fail fast to the controller.
var paymentNonRetryable = []string{activities.InvalidTransitionError, "ValidationError"}

// Method references for ExecuteActivity; the worker registers the real
// struct.
var a *activities.Activities

// OrderProcessingWorkflow drives an order through intake, payment,
// fulfillment and shipping, branching into customer-service escalation
// on rejection, fraud suspicion or repeated failure.
func OrderProcessingWorkflow(ctx workflow.Context, input domain.Order) (domain.OutcomeReport, error) {
	logger := workflow.GetLogger(ctx)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: decisionTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: defaultMaxAttempts},
	})

	state := &orderState{order: normalizeOrder(input, workflow.Now(ctx).UTC())}
	logger.Info("Starting order processing workflow",
		"orderID", state.order.ID, "customer", state.order.Customer.Name)

	report, err := state.process(ctx)
	if err != nil {
		logger.Error("Order workflow failed", "orderID", state.order.ID, "error", err)
		// Best effort: the failure itself must reach the caller even if
		// the error-path side effects fail too.
		_ = state.logEvent(ctx, "workflow_error", err.Error())
		_ = state.escalate(ctx, domain.IssueWorkflowError, err.Error())
		return domain.OutcomeReport{}, err
	}

	logger.Info("Order workflow finished", "orderID", state.order.ID, "status", report.Status)
	return report, nil
}

// orderState carries the current order snapshot; every status activity
// rebinds it to the returned copy.
type orderState struct {
	order domain.Order
}

func (s *orderState) process(ctx workflow.Context) (domain.OutcomeReport, error) {
	if err := s.logEvent(ctx, "workflow_started", "Order processing workflow initiated"); err != nil {
		return domain.OutcomeReport{}, err
	}
	if err := s.setOrderStatus(ctx, domain.OrderStatusPending); err != nil {
		return domain.OutcomeReport{}, err
	}

	var intake domain.Decision
	if err := workflow.ExecuteActivity(ctx, a.ProcessOrderIntake, s.order).Get(ctx, &intake); err != nil {
		return domain.OutcomeReport{}, fmt.Errorf("order intake: %w", err)
	}

	switch intake.Decision {
	case domain.DecisionReject:
		if err := s.setOrderStatus(ctx, domain.OrderStatusCancelled); err != nil {
			return domain.OutcomeReport{}, err
		}
		if err := s.notify(ctx, "Order rejected: "+intake.Reasoning); err != nil {
			return domain.OutcomeReport{}, err
		}
		if err := s.logEvent(ctx, "order_rejected", intake.Reasoning); err != nil {
			return domain.OutcomeReport{}, err
		}
		return domain.OutcomeReport{Status: domain.OutcomeRejected, Reason: intake.Reasoning}, nil

	case domain.DecisionEscalate:
		return s.terminateEscalated(ctx, domain.IssueOrderIntake, intake.Reasoning)
	}

	if err := s.setOrderStatus(ctx, domain.OrderStatusValidated); err != nil {
		return domain.OutcomeReport{}, err
	}
	if err := s.notify(ctx, "Order validated successfully"); err != nil {
		return domain.OutcomeReport{}, err
	}

	payment, err := s.payWithRetry(ctx)
	if err != nil {
		return domain.OutcomeReport{}, fmt.Errorf("payment: %w", err)
	}
	if payment.Decision != domain.DecisionApprove {
		return s.terminateEscalated(ctx, domain.IssuePayment, payment.Reasoning)
	}

	if err := s.setPaymentStatus(ctx, domain.PaymentStatusCompleted); err != nil {
		return domain.OutcomeReport{}, err
	}
	if err := s.notify(ctx, "Payment processed successfully"); err != nil {
		return domain.OutcomeReport{}, err
	}

	var fulfillment domain.Decision
	if err := workflow.ExecuteActivity(ctx, a.ProcessFulfillment, s.order).Get(ctx, &fulfillment); err != nil {
		return domain.OutcomeReport{}, fmt.Errorf("fulfillment: %w", err)
	}
	if fulfillment.Decision != domain.DecisionShip {
		return s.terminateEscalated(ctx, domain.IssueFulfillment, fulfillment.Reasoning)
	}

	if err := s.setShippingStatus(ctx, domain.ShippingStatusShipped); err != nil {
		return domain.OutcomeReport{}, err
	}
	if err := s.notify(ctx, "Order shipped successfully"); err != nil {
		return domain.OutcomeReport{}, err
	}
	if err := s.logEvent(ctx, "order_completed", "Order processing completed successfully"); err != nil {
		return domain.OutcomeReport{}, err
	}

	return domain.OutcomeReport{
		Status:         domain.OutcomeCompleted,
		OrderID:        s.order.ID,
		TrackingNumber: s.order.TrackingNumber,
	}, nil
}

// payWithRetry is the bounded payment loop: up to maxPaymentRetries
// provider calls with 1s then 2s of backoff between RETRY decisions.
// The backoff is a durable timer, not a blocking sleep.
func (s *orderState) payWithRetry(ctx workflow.Context) (domain.Decision, error) {
	logger := workflow.GetLogger(ctx)

	payCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: decisionTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        maxPaymentRetries,
			NonRetryableErrorTypes: paymentNonRetryable,
		},
	})

	for attempt := 0; attempt < maxPaymentRetries; attempt++ {
		var decision domain.Decision
		err := workflow.ExecuteActivity(payCtx, a.ProcessPayment, s.order, attempt).Get(payCtx, &decision)
		if err != nil {
			if attempt == maxPaymentRetries-1 {
				return domain.Decision{}, err
			}
			logger.Warn("Payment attempt failed", "orderID", s.order.ID, "attempt", attempt+1, "error", err)
			continue
		}

		switch {
		case decision.Decision == domain.DecisionApprove:
			return decision, nil
		case decision.Decision == domain.DecisionRetry && attempt < maxPaymentRetries-1:
			logger.Info("Payment retry", "orderID", s.order.ID, "attempt", attempt+1)
			if err := workflow.Sleep(ctx, time.Duration(1<<attempt)*time.Second); err != nil {
				return domain.Decision{}, err
			}
		default:
			// Final-attempt RETRY or any other decision goes back to the
			// caller unchanged; non-APPROVE means escalation there.
			return decision, nil
		}
	}

	// Unreachable given the branches above; kept as a safety net.
	return domain.Decision{
		Decision:                  domain.DecisionEscalate,
		Reasoning:                 fmt.Sprintf("Payment failed after %d attempts", maxPaymentRetries),
		RequiresHumanIntervention: true,
	}, nil
}

// terminateEscalated marks the order escalated, runs the escalation
// handler and ends the run with an escalated outcome.
func (s *orderState) terminateEscalated(ctx workflow.Context, issueType, reason string) (domain.OutcomeReport, error) {
	if err := s.setOrderStatus(ctx, domain.OrderStatusEscalated); err != nil {
		return domain.OutcomeReport{}, err
	}
	if err := s.escalate(ctx, issueType, reason); err != nil {
		return domain.OutcomeReport{}, err
	}
	return domain.OutcomeReport{Status: domain.OutcomeEscalated, Reason: reason}, nil
}

// escalate invokes the customer service provider and applies its verdict.
// A RESOLVE outcome changes nothing beyond the log entry; this workflow
// still terminates with an escalated outcome afterwards.
func (s *orderState) escalate(ctx workflow.Context, issueType, reason string) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Escalating order", "orderID", s.order.ID, "issueType", issueType, "reason", reason)

	// Escalations may involve more deliberation than the other stages.
	csCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: escalationTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: defaultMaxAttempts},
	})

	var decision domain.Decision
	if err := workflow.ExecuteActivity(csCtx, a.HandleCustomerService, s.order, issueType, reason).Get(csCtx, &decision); err != nil {
		return fmt.Errorf("customer service: %w", err)
	}

	if err := s.logEvent(ctx, "escalation_handled", decision.Reasoning); err != nil {
		return err
	}

	switch {
	case decision.Decision == domain.DecisionCancelOrder:
		if err := s.setOrderStatus(ctx, domain.OrderStatusCancelled); err != nil {
			return err
		}
		return s.notify(ctx, "Order cancelled: "+decision.Reasoning)
	case decision.RequiresHumanIntervention:
		return s.notify(ctx, "Order requires human review: "+decision.Reasoning)
	}
	return nil
}

func (s *orderState) setOrderStatus(ctx workflow.Context, status domain.OrderStatus) error {
	var updated domain.Order
	if err := workflow.ExecuteActivity(ctx, a.UpdateOrderStatus, s.order, status).Get(ctx, &updated); err != nil {
		return fmt.Errorf("set order status %s: %w", status, err)
	}
	s.order = updated
	return nil
}

func (s *orderState) setPaymentStatus(ctx workflow.Context, status domain.PaymentStatus) error {
	var updated domain.Order
	if err := workflow.ExecuteActivity(ctx, a.UpdatePaymentStatus, s.order, status).Get(ctx, &updated); err != nil {
		return fmt.Errorf("set payment status %s: %w", status, err)
	}
	s.order = updated
	return nil
}

func (s *orderState) setShippingStatus(ctx workflow.Context, status domain.ShippingStatus) error {
	var updated domain.Order
	if err := workflow.ExecuteActivity(ctx, a.UpdateShippingStatus, s.order, status).Get(ctx, &updated); err != nil {
		return fmt.Errorf("set shipping status %s: %w", status, err)
	}
	s.order = updated
	return nil
}

func (s *orderState) notify(ctx workflow.Context, message string) error {
	if err := workflow.ExecuteActivity(ctx, a.SendNotification, s.order, message).Get(ctx, nil); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (s *orderState) logEvent(ctx workflow.Context, event, details string) error {
	if err := workflow.ExecuteActivity(ctx, a.LogOrderEvent, s.order, event, details).Get(ctx, nil); err != nil {
		return fmt.Errorf("log event %s: %w", event, err)
	}
	return nil
}

// normalizeOrder fills the fields the wire payload may omit.
func normalizeOrder(order domain.Order, now time.Time) domain.Order {
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}
	if order.ShippingStatus == "" {
		order.ShippingStatus = domain.ShippingStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	return order
}
