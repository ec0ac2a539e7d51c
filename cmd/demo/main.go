// Demo client: submits the four canonical orders straight to Temporal
// and prints each outcome. Requires a running server and worker.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/stwomack/temporal-ecommerce-agent/internal/config"
	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
	"github.com/stwomack/temporal-ecommerce-agent/internal/workflows"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/logging"
)

func sampleOrder(id string) domain.Order {
	if id == "" {
		id = fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.New().String()[:8]))
	}
	order := domain.NewOrder(id, domain.Customer{
		ID:    fmt.Sprintf("CUST-%s", strings.ToUpper(uuid.New().String()[:6])),
		Name:  "John Doe",
		Email: "john.doe@example.com",
		Phone: "+1-555-0123",
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

func suspiciousOrder() domain.Order {
	order := sampleOrder("ORD-SUSPICIOUS")
	order.Customer.Email = "test@test.com"
	order.TotalAmount = 5000.00
	order.Products[0].Quantity = 100
	return order
}

func inventoryIssueOrder() domain.Order {
	order := sampleOrder("ORD-INVENTORY")
	order.Products[0].SKU = "OUT-OF-STOCK"
	return order
}

func paymentIssueOrder() domain.Order {
	order := sampleOrder("ORD-PAYMENT")
	order.PaymentMethod.ExpiryYear = 2020
	return order
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New()

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
		Logger:    logging.Temporal(logger),
	})
	if err != nil {
		log.Fatalf("failed to connect to Temporal: %v", err)
	}
	defer temporalClient.Close()

	scenarios := []struct {
		name  string
		order domain.Order
	}{
		{"Normal Order", sampleOrder("")},
		{"Suspicious Order", suspiciousOrder()},
		{"Inventory Issue Order", inventoryIssueOrder()},
		{"Payment Issue Order", paymentIssueOrder()},
	}

	ctx := context.Background()
	for _, sc := range scenarios {
		logger.Info("processing order",
			"scenario", sc.name, "orderID", sc.order.ID,
			"customer", sc.order.Customer.Name, "amount", sc.order.TotalAmount)

		run, err := temporalClient.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        workflows.WorkflowIDPrefix + sc.order.ID,
			TaskQueue: cfg.TaskQueue,
		}, workflows.OrderProcessingWorkflow, sc.order)
		if err != nil {
			logger.Error("failed to start workflow", "scenario", sc.name, "error", err)
			continue
		}

		var report domain.OutcomeReport
		if err := run.Get(ctx, &report); err != nil {
			logger.Error("workflow failed", "scenario", sc.name, "error", err)
			continue
		}

		logger.Info("scenario finished",
			"scenario", sc.name, "status", report.Status,
			"reason", report.Reason, "trackingNumber", report.TrackingNumber)

		time.Sleep(2 * time.Second)
	}

	logger.Info("demo completed, check the Temporal UI for workflow histories")
}
