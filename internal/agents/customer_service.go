package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

// CustomerServiceAgent handles escalated orders: it decides between
// resolving, cancelling, or handing off to a human reviewer.
type CustomerServiceAgent struct {
	name string
}

func NewCustomerServiceAgent() *CustomerServiceAgent {
	return &CustomerServiceAgent{name: "Customer Service Agent"}
}

func (a *CustomerServiceAgent) HandleIssue(ctx context.Context, order domain.Order, issueType, reason string) (domain.Decision, error) {
	switch issueType {
	case domain.IssueWorkflowError:
		return newDecision(a.name, domain.DecisionEscalateToHuman, 0.9,
			fmt.Sprintf("Processing error for order %s needs manual triage: %s", order.ID, reason),
			"assign_to_human_agent", true), nil

	case domain.IssueOrderIntake:
		if suspicious(reason) {
			return newDecision(a.name, domain.DecisionEscalateToHuman, 0.9,
				"Possible fraud, requesting additional verification: "+reason,
				"assign_to_human_agent", true), nil
		}
		return newDecision(a.name, domain.DecisionCancelOrder, 0.7,
			"Order cannot be fulfilled as submitted: "+reason,
			"cancel_and_refund", false), nil

	case domain.IssuePayment:
		return newDecision(a.name, domain.DecisionCancelOrder, 0.7,
			fmt.Sprintf("Payment unrecoverable (%s); no charge was captured, cancelling order", reason),
			"cancel_and_refund", false), nil

	case domain.IssueFulfillment:
		return newDecision(a.name, domain.DecisionResolve, 0.8,
			"Suggest alternative shipping address or hold order for pickup: "+reason,
			"apply_resolution", false), nil
	}

	return newDecision(a.name, domain.DecisionResolve, 0.6,
		"Contact customer directly to resolve issue: "+reason,
		"apply_resolution", false), nil
}

func suspicious(reason string) bool {
	lower := strings.ToLower(reason)
	return strings.Contains(lower, "suspicious") || strings.Contains(lower, "fraud")
}
