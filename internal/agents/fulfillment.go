package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

const (
	unitWeightLbs    = 0.5
	heavyShipmentLbs = 50.0
)

var unavailableZones = []string{"remote_island", "war_zone"}

// FulfillmentAgent checks shipping availability and clears orders for
// dispatch.
type FulfillmentAgent struct {
	name string
}

func NewFulfillmentAgent() *FulfillmentAgent {
	return &FulfillmentAgent{name: "Fulfillment Agent"}
}

func (a *FulfillmentAgent) ProcessFulfillment(ctx context.Context, order domain.Order) (domain.Decision, error) {
	destination := strings.ToLower(order.Customer.Address.City + " " + order.Customer.Address.Country)
	for _, zone := range unavailableZones {
		if strings.Contains(destination, zone) {
			return newDecision(a.name, domain.DecisionEscalate, 0.8,
				fmt.Sprintf("Shipping to %s, %s not available",
					order.Customer.Address.City, order.Customer.Address.Country),
				"escalate_to_customer_service", true), nil
		}
	}

	var weight float64
	for _, p := range order.Products {
		weight += float64(p.Quantity) * unitWeightLbs
	}
	if weight > heavyShipmentLbs {
		return newDecision(a.name, domain.DecisionHold, 0.7,
			fmt.Sprintf("Shipment weight %.1f lbs exceeds standard carrier limit", weight),
			"hold_for_review", false), nil
	}

	return newDecision(a.name, domain.DecisionShip, 0.9,
		fmt.Sprintf("Shipping available to %s; estimated weight %.1f lbs",
			order.Customer.Address.City, weight),
		"create_shipment", false), nil
}
