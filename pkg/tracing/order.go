package tracing

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/stwomack/temporal-ecommerce-agent/internal/domain"
)

// OrderAttributes builds the standard span attributes for an order.
func OrderAttributes(order domain.Order) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
		attribute.String("order.payment_status", string(order.PaymentStatus)),
		attribute.String("order.shipping_status", string(order.ShippingStatus)),
		attribute.Float64("order.total_amount", order.TotalAmount),
		attribute.String("order.customer_id", order.Customer.ID),
	}
}
