package domain

import "context"

// Decision values returned by the stage providers. Each stage accepts a
// subset: intake {APPROVE, REJECT, ESCALATE}, payment {APPROVE, RETRY,
// ESCALATE}, fulfillment {SHIP, HOLD, ESCALATE}, customer service
// {RESOLVE, ESCALATE_TO_HUMAN, CANCEL_ORDER}.
const (
	DecisionApprove         = "APPROVE"
	DecisionReject          = "REJECT"
	DecisionEscalate        = "ESCALATE"
	DecisionRetry           = "RETRY"
	DecisionShip            = "SHIP"
	DecisionHold            = "HOLD"
	DecisionResolve         = "RESOLVE"
	DecisionEscalateToHuman = "ESCALATE_TO_HUMAN"
	DecisionCancelOrder     = "CANCEL_ORDER"
)

// Issue types passed to the customer service provider on escalation.
const (
	IssueOrderIntake   = "order_intake"
	IssuePayment       = "payment"
	IssueFulfillment   = "fulfillment"
	IssueWorkflowError = "workflow_error"
)

// Decision is the structured verdict of a stage provider. Confidence and
// next action are advisory and never drive control flow; the escalation
// handler is the only consumer of RequiresHumanIntervention.
type Decision struct {
	AgentName                 string  `json:"agent_name"`
	Decision                  string  `json:"decision"`
	Confidence                float64 `json:"confidence"`
	Reasoning                 string  `json:"reasoning"`
	NextAction                string  `json:"next_action"`
	RequiresHumanIntervention bool    `json:"requires_human_intervention"`
}

// IntakeProvider validates a new order before any money moves.
type IntakeProvider interface {
	ProcessIntake(ctx context.Context, order Order) (Decision, error)
}

// PaymentProvider attempts to collect payment. The attempt index starts
// at zero and is a hint only; providers may be more cautious on retries.
type PaymentProvider interface {
	ProcessPayment(ctx context.Context, order Order, attempt int) (Decision, error)
}

// FulfillmentProvider decides whether an order can ship.
type FulfillmentProvider interface {
	ProcessFulfillment(ctx context.Context, order Order) (Decision, error)
}

// CustomerServiceProvider handles escalated orders.
type CustomerServiceProvider interface {
	HandleIssue(ctx context.Context, order Order, issueType, reason string) (Decision, error)
}

// Outcome report statuses.
const (
	OutcomeRejected  = "rejected"
	OutcomeEscalated = "escalated"
	OutcomeCompleted = "completed"
)

// OutcomeReport is the terminal result of an order workflow run.
type OutcomeReport struct {
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}
