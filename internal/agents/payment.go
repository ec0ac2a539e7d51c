package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

// retryBeforeEscalate is the number of declines the agent tolerates
// before it stops asking for another attempt.
const retryBeforeEscalate = 2

// PaymentAgent validates the payment method and charges the order.
type PaymentAgent struct {
	name string
	now  func() time.Time
}

func NewPaymentAgent() *PaymentAgent {
	return &PaymentAgent{name: "Payment Agent", now: time.Now}
}

func (a *PaymentAgent) ProcessPayment(ctx context.Context, order domain.Order, attempt int) (domain.Decision, error) {
	if order.PaymentMethod == nil {
		return newDecision(a.name, domain.DecisionEscalate, 1.0,
			"No payment method provided", "escalate_to_customer_service", true), nil
	}

	if expired := a.cardExpired(*order.PaymentMethod); expired != "" {
		if attempt < retryBeforeEscalate {
			return newDecision(a.name, domain.DecisionRetry, 0.7,
				fmt.Sprintf("Payment declined on attempt %d: %s", attempt+1, expired),
				"retry_payment", false), nil
		}
		return newDecision(a.name, domain.DecisionEscalate, 0.8,
			fmt.Sprintf("Payment failed after %d attempts: %s", attempt+1, expired),
			"escalate_to_customer_service", true), nil
	}

	reasoning := fmt.Sprintf("Payment of $%.2f approved via %s ending in %s",
		order.TotalAmount, order.PaymentMethod.Type, order.PaymentMethod.Last4)
	if attempt > 0 {
		reasoning += fmt.Sprintf(" (attempt %d, extra verification passed)", attempt+1)
	}
	return newDecision(a.name, domain.DecisionApprove, 0.95, reasoning, "proceed_to_fulfillment", false), nil
}

func (a *PaymentAgent) cardExpired(pm domain.PaymentMethod) string {
	if pm.ExpiryMonth < 1 || pm.ExpiryMonth > 12 {
		return fmt.Sprintf("payment method %s has an invalid expiry month", pm.Last4)
	}
	now := a.now()
	if pm.ExpiryYear < now.Year() || (pm.ExpiryYear == now.Year() && time.Month(pm.ExpiryMonth) < now.Month()) {
		return fmt.Sprintf("payment method %s is expired", pm.Last4)
	}
	return ""
}
