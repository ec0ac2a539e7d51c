package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/tracing"
)

// OrderPublisher accepts an order for asynchronous processing.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, order domain.Order) error
}

type OrderHandler struct {
	publisher OrderPublisher
}

func NewOrderHandler(publisher OrderPublisher) *OrderHandler {
	return &OrderHandler{publisher: publisher}
}

// CreateOrder accepts an order payload and queues it for the workflow.
// Missing ids are assigned, a missing total is derived from the
// products; everything else is the intake provider's problem.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := tracing.StartApplication(c.Request.Context(), "CreateOrder")
	defer span.End()

	var order domain.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(order.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order has no products"})
		return
	}

	if order.ID == "" {
		order.ID = newOrderID()
	}
	if order.TotalAmount == 0 {
		for _, p := range order.Products {
			order.TotalAmount += p.Price * float64(p.Quantity)
		}
	}
	span.SetAttributes(tracing.OrderAttributes(order)...)

	if err := h.publisher.PublishOrder(ctx, order); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept order"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"order_id": order.ID})
}

func newOrderID() string {
	return fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.New().String()[:8]))
}
