package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

const (
	highValueThreshold    = 1000.0
	bulkQuantityThreshold = 50
	outOfStockSKU         = "OUT-OF-STOCK"
)

// IntakeAgent validates customer data, inventory and fraud signals
// before an order enters payment.
type IntakeAgent struct {
	name string
}

func NewIntakeAgent() *IntakeAgent {
	return &IntakeAgent{name: "Order Intake Agent"}
}

func (a *IntakeAgent) ProcessIntake(ctx context.Context, order domain.Order) (domain.Decision, error) {
	if len(order.Products) == 0 {
		return newDecision(a.name, domain.DecisionReject, 0.9,
			"Order contains no products", "reject_order", false), nil
	}
	if !validEmail(order.Customer.Email) {
		return newDecision(a.name, domain.DecisionReject, 0.7,
			fmt.Sprintf("Customer email %s is invalid", order.Customer.Email),
			"reject_order", false), nil
	}

	for _, p := range order.Products {
		if p.SKU == outOfStockSKU {
			return newDecision(a.name, domain.DecisionEscalate, 0.8,
				fmt.Sprintf("Insufficient inventory for %s (%s)", p.Name, p.SKU),
				"escalate_to_customer_service", true), nil
		}
	}

	if signals := fraudSignals(order); len(signals) > 0 {
		return newDecision(a.name, domain.DecisionEscalate, 0.8,
			"Suspicious order: "+strings.Join(signals, ", "),
			"escalate_to_customer_service", true), nil
	}

	return newDecision(a.name, domain.DecisionApprove, 0.9,
		"Order validated: customer data, inventory and pricing check out",
		"proceed_to_payment", false), nil
}

func fraudSignals(order domain.Order) []string {
	var signals []string
	if order.TotalAmount > highValueThreshold {
		signals = append(signals, "high value transaction")
	}
	if strings.Contains(strings.ToLower(order.Customer.Email), "test") {
		signals = append(signals, "suspicious email pattern")
	}
	for _, p := range order.Products {
		if p.Quantity > bulkQuantityThreshold {
			signals = append(signals, fmt.Sprintf("unusual quantity for %s", p.SKU))
			break
		}
	}
	return signals
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
