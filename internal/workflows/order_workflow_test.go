package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/stwomack/temporal-ecommerce-agent/internal/activities"
	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
	"github.com/stwomack/temporal-ecommerce-agent/internal/store"
)

type stubIntake struct {
	decision domain.Decision
	err      error
	calls    int
}

func (s *stubIntake) ProcessIntake(ctx context.Context, order domain.Order) (domain.Decision, error) {
	s.calls++
	return s.decision, s.err
}

// scriptedPayment returns one decision per attempt, repeating the last
// entry when the script runs out. Guarded because timing probes read
// the counter while the workflow is still running.
type scriptedPayment struct {
	mu     sync.Mutex
	script []domain.Decision
	called int
}

func (p *scriptedPayment) ProcessPayment(ctx context.Context, order domain.Order, attempt int) (domain.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.called
	if i >= len(p.script) {
		i = len(p.script) - 1
	}
	p.called++
	return p.script[i], nil
}

func (p *scriptedPayment) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.called
}

type stubFulfillment struct {
	decision domain.Decision
	calls    int
}

func (s *stubFulfillment) ProcessFulfillment(ctx context.Context, order domain.Order) (domain.Decision, error) {
	s.calls++
	return s.decision, nil
}

type stubCustomerService struct {
	decision  domain.Decision
	issueType string
	reason    string
	calls     int
}

func (s *stubCustomerService) HandleIssue(ctx context.Context, order domain.Order, issueType, reason string) (domain.Decision, error) {
	s.calls++
	s.issueType = issueType
	s.reason = reason
	return s.decision, nil
}

type recordingSink struct {
	mu            sync.Mutex
	notifications []string
	events        []string
}

func (r *recordingSink) Notify(ctx context.Context, order domain.Order, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, message)
	return nil
}

func (r *recordingSink) LogEvent(ctx context.Context, order domain.Order, event, details string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func approve(reasoning string) domain.Decision {
	return domain.Decision{AgentName: "test", Decision: domain.DecisionApprove, Confidence: 0.9, Reasoning: reasoning}
}

func decision(verdict, reasoning string, human bool) domain.Decision {
	return domain.Decision{AgentName: "test", Decision: verdict, Confidence: 0.8, Reasoning: reasoning, RequiresHumanIntervention: human}
}

type OrderWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env *testsuite.TestWorkflowEnvironment

	intake      *stubIntake
	payment     *scriptedPayment
	fulfillment *stubFulfillment
	cs          *stubCustomerService
	sink        *recordingSink
	snapshots   *store.Memory
}

func TestOrderWorkflowSuite(t *testing.T) {
	suite.Run(t, new(OrderWorkflowTestSuite))
}

func (s *OrderWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()

	s.intake = &stubIntake{decision: approve("Order validated")}
	s.payment = &scriptedPayment{script: []domain.Decision{approve("Payment approved")}}
	s.fulfillment = &stubFulfillment{decision: decision(domain.DecisionShip, "Shipping available", false)}
	s.cs = &stubCustomerService{decision: decision(domain.DecisionEscalateToHuman, "Needs review", true)}
	s.sink = &recordingSink{}
	s.snapshots = store.NewMemory()

	acts := &activities.Activities{
		Intake:          s.intake,
		Payment:         s.payment,
		Fulfillment:     s.fulfillment,
		CustomerService: s.cs,
		Store:           s.snapshots,
		Notifications:   s.sink,
		Events:          s.sink,
	}
	s.env.RegisterWorkflow(OrderProcessingWorkflow)
	s.env.RegisterActivity(acts)
}

func (s *OrderWorkflowTestSuite) testOrder() domain.Order {
	order := domain.NewOrder("ORD-TEST", domain.Customer{
		ID:    "CUST-1",
		Name:  "John Doe",
		Email: "john.doe@example.com",
		Address: domain.Address{
			Street: "123 Main Street", City: "New York", State: "NY",
			ZipCode: "10001", Country: "USA",
		},
	}, []domain.Product{
		{ID: "PROD-001", Name: "Wireless Headphones", Price: 99.99, Quantity: 2, SKU: "WH-001"},
		{ID: "PROD-002", Name: "Smartphone Case", Price: 19.99, Quantity: 1, SKU: "SC-002"},
	})
	order.PaymentMethod = &domain.PaymentMethod{Type: "credit_card", Last4: "1234", ExpiryMonth: 12, ExpiryYear: 2030}
	return order
}

func (s *OrderWorkflowTestSuite) result() domain.OutcomeReport {
	s.Require().True(s.env.IsWorkflowCompleted())
	s.Require().NoError(s.env.GetWorkflowError())
	var report domain.OutcomeReport
	s.Require().NoError(s.env.GetWorkflowResult(&report))
	return report
}

func (s *OrderWorkflowTestSuite) TestHappyPathCompletes() {
	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeCompleted, report.Status)
	s.Equal("ORD-TEST", report.OrderID)
	s.NotEmpty(report.TrackingNumber)

	final, err := s.snapshots.Get(context.Background(), "ORD-TEST")
	s.NoError(err)
	s.Equal(domain.PaymentStatusCompleted, final.PaymentStatus)
	s.Equal(domain.ShippingStatusShipped, final.ShippingStatus)
	s.Equal(report.TrackingNumber, final.TrackingNumber)

	// Side effects in the exact order the state machine issued them.
	s.Equal([]string{
		"Order validated successfully",
		"Payment processed successfully",
		"Order shipped successfully",
	}, s.sink.notifications)
	s.Equal([]string{"workflow_started", "order_completed"}, s.sink.events)
	s.Zero(s.cs.calls)
}

func (s *OrderWorkflowTestSuite) TestIntakeRejectCancelsOrder() {
	s.intake.decision = decision(domain.DecisionReject, "Customer email is invalid", false)

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeRejected, report.Status)
	s.Equal("Customer email is invalid", report.Reason)

	final, err := s.snapshots.Get(context.Background(), "ORD-TEST")
	s.NoError(err)
	s.Equal(domain.OrderStatusCancelled, final.Status)

	// No money moves and nothing ships on a rejected order.
	s.Zero(s.payment.calls())
	s.Zero(s.fulfillment.calls)
	s.Zero(s.cs.calls)
	s.Equal([]string{"Order rejected: Customer email is invalid"}, s.sink.notifications)
	s.Equal([]string{"workflow_started", "order_rejected"}, s.sink.events)
}

func (s *OrderWorkflowTestSuite) TestIntakeEscalationShortCircuits() {
	s.intake.decision = decision(domain.DecisionEscalate, "Suspicious order: high value transaction", true)

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeEscalated, report.Status)
	s.Equal("Suspicious order: high value transaction", report.Reason)

	s.Zero(s.payment.calls())
	s.Zero(s.fulfillment.calls)
	s.Equal(1, s.cs.calls)
	s.Equal(domain.IssueOrderIntake, s.cs.issueType)

	final, err := s.snapshots.Get(context.Background(), "ORD-TEST")
	s.NoError(err)
	s.Equal(domain.OrderStatusEscalated, final.Status)
	s.Contains(s.sink.events, "escalation_handled")
	s.Equal([]string{"Order requires human review: Needs review"}, s.sink.notifications)
}

func (s *OrderWorkflowTestSuite) TestPaymentRetriesThenApproves() {
	s.payment.script = []domain.Decision{
		decision(domain.DecisionRetry, "Card declined, try again", false),
		decision(domain.DecisionRetry, "Card declined, try again", false),
		approve("Payment approved on third attempt"),
	}

	// Backoff between attempts is 1s then 2s of durable timer: one call
	// before the first timer fires, two while the second one runs.
	s.env.RegisterDelayedCallback(func() { s.Equal(1, s.payment.calls()) }, 500*time.Millisecond)
	s.env.RegisterDelayedCallback(func() { s.Equal(2, s.payment.calls()) }, 2500*time.Millisecond)

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeCompleted, report.Status)
	s.Equal(3, s.payment.calls())
	s.Equal(1, s.fulfillment.calls)
}

func (s *OrderWorkflowTestSuite) TestPaymentRetryExhaustionEscalates() {
	retry := decision(domain.DecisionRetry, "Card declined, try again", false)
	s.payment.script = []domain.Decision{retry, retry, retry}

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeEscalated, report.Status)
	// The final RETRY comes back unchanged, not a synthesized ESCALATE.
	s.Equal("Card declined, try again", report.Reason)
	s.Equal(3, s.payment.calls())
	s.Zero(s.fulfillment.calls)
	s.Equal(1, s.cs.calls)
	s.Equal(domain.IssuePayment, s.cs.issueType)

	final, err := s.snapshots.Get(context.Background(), "ORD-TEST")
	s.NoError(err)
	s.Equal(domain.OrderStatusEscalated, final.Status)
	s.Equal(domain.PaymentStatusPending, final.PaymentStatus)
}

func (s *OrderWorkflowTestSuite) TestExpiredCardEscalatesAfterRetries() {
	s.payment.script = []domain.Decision{
		decision(domain.DecisionRetry, "Payment declined on attempt 1: payment method 1234 is expired", false),
		decision(domain.DecisionRetry, "Payment declined on attempt 2: payment method 1234 is expired", false),
		decision(domain.DecisionEscalate, "Payment failed after 3 attempts: payment method 1234 is expired", true),
	}

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeEscalated, report.Status)
	s.Contains(report.Reason, "3 attempts")
	s.Equal(3, s.payment.calls())
}

func (s *OrderWorkflowTestSuite) TestFulfillmentEscalation() {
	s.fulfillment.decision = decision(domain.DecisionEscalate, "Shipping to Remote_Island not available", true)

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeEscalated, report.Status)
	s.Equal(domain.IssueFulfillment, s.cs.issueType)

	// Payment completed before fulfillment failed; shipping untouched.
	final, err := s.snapshots.Get(context.Background(), "ORD-TEST")
	s.NoError(err)
	s.Equal(domain.PaymentStatusCompleted, final.PaymentStatus)
	s.Equal(domain.ShippingStatusPending, final.ShippingStatus)
	s.Empty(final.TrackingNumber)
}

func (s *OrderWorkflowTestSuite) TestEscalationCancelOrder() {
	s.intake.decision = decision(domain.DecisionEscalate, "Insufficient inventory", true)
	s.cs.decision = decision(domain.DecisionCancelOrder, "No stock within 30 days, cancelling", false)

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeEscalated, report.Status)

	final, err := s.snapshots.Get(context.Background(), "ORD-TEST")
	s.NoError(err)
	s.Equal(domain.OrderStatusCancelled, final.Status)
	s.Equal([]string{"Order cancelled: No stock within 30 days, cancelling"}, s.sink.notifications)
}

func (s *OrderWorkflowTestSuite) TestEscalationResolveStillTerminatesRun() {
	s.fulfillment.decision = decision(domain.DecisionEscalate, "Carrier outage", false)
	s.cs.decision = decision(domain.DecisionResolve, "Rerouted via secondary carrier", false)

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	// Conservative policy: even an internally resolved escalation ends
	// the run as escalated.
	report := s.result()
	s.Equal(domain.OutcomeEscalated, report.Status)
	s.Contains(s.sink.events, "escalation_handled")
	s.Equal(domain.OrderStatusEscalated, s.finalStatus())
}

func (s *OrderWorkflowTestSuite) TestHoldDecisionIsEscalationWorthy() {
	s.fulfillment.decision = decision(domain.DecisionHold, "Shipment exceeds carrier limit", false)

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	report := s.result()
	s.Equal(domain.OutcomeEscalated, report.Status)
	s.Equal(domain.IssueFulfillment, s.cs.issueType)
}

func (s *OrderWorkflowTestSuite) TestStageErrorEscalatesAndFails() {
	s.intake.err = errors.New("provider unavailable")

	s.env.ExecuteWorkflow(OrderProcessingWorkflow, s.testOrder())

	s.Require().True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)
	s.Contains(err.Error(), "provider unavailable")

	// The gateway retried the failing activity before giving up.
	s.Equal(3, s.intake.calls)
	// The failure was logged and routed through customer service before
	// the error reached the caller.
	s.Contains(s.sink.events, "workflow_error")
	s.Equal(1, s.cs.calls)
	s.Equal(domain.IssueWorkflowError, s.cs.issueType)
}

func (s *OrderWorkflowTestSuite) finalStatus() domain.OrderStatus {
	final, err := s.snapshots.Get(context.Background(), "ORD-TEST")
	s.Require().NoError(err)
	return final.Status
}
