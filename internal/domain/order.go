package domain

import "time"

// OrderStatus is the overall lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending               OrderStatus = "pending"
	OrderStatusValidated             OrderStatus = "validated"
	OrderStatusPaymentProcessing     OrderStatus = "payment_processing"
	OrderStatusPaymentCompleted      OrderStatus = "payment_completed"
	OrderStatusPaymentFailed         OrderStatus = "payment_failed"
	OrderStatusFulfillmentProcessing OrderStatus = "fulfillment_processing"
	OrderStatusShipped               OrderStatus = "shipped"
	OrderStatusDelivered             OrderStatus = "delivered"
	OrderStatusCancelled             OrderStatus = "cancelled"
	OrderStatusEscalated             OrderStatus = "escalated"
)

// PaymentStatus tracks the payment axis independently of the order status.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// ShippingStatus tracks the shipping axis.
type ShippingStatus string

const (
	ShippingStatusPending    ShippingStatus = "pending"
	ShippingStatusProcessing ShippingStatus = "processing"
	ShippingStatusShipped    ShippingStatus = "shipped"
	ShippingStatusInTransit  ShippingStatus = "in_transit"
	ShippingStatusDelivered  ShippingStatus = "delivered"
	ShippingStatusFailed     ShippingStatus = "failed"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type Customer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	SKU      string  `json:"sku"`
}

type PaymentMethod struct {
	Type        string `json:"type"`
	Last4       string `json:"last4"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}

// Order is the workflow's unit of work. It is never mutated in place:
// every status change produces a new snapshot via the With* helpers, and
// the order id doubles as the workflow instance identifier.
type Order struct {
	ID             string         `json:"id"`
	Customer       Customer       `json:"customer"`
	Products       []Product      `json:"products"`
	TotalAmount    float64        `json:"total_amount"`
	Status         OrderStatus    `json:"status"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
	ShippingStatus ShippingStatus `json:"shipping_status"`
	PaymentMethod  *PaymentMethod `json:"payment_method,omitempty"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewOrder builds a pending order with the total derived from its products.
func NewOrder(id string, customer Customer, products []Product) Order {
	var total float64
	for _, p := range products {
		total += p.Price * float64(p.Quantity)
	}
	now := time.Now().UTC()
	return Order{
		ID:             id,
		Customer:       customer,
		Products:       products,
		TotalAmount:    total,
		Status:         OrderStatusPending,
		PaymentStatus:  PaymentStatusPending,
		ShippingStatus: ShippingStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// WithStatus returns a copy of the order with the order status changed.
func (o Order) WithStatus(status OrderStatus, at time.Time) Order {
	o.Status = status
	o.UpdatedAt = at
	return o
}

func (o Order) WithPaymentStatus(status PaymentStatus, at time.Time) Order {
	o.PaymentStatus = status
	o.UpdatedAt = at
	return o
}

func (o Order) WithShippingStatus(status ShippingStatus, at time.Time) Order {
	o.ShippingStatus = status
	o.UpdatedAt = at
	return o
}

func (o Order) WithTrackingNumber(trackingNumber string, at time.Time) Order {
	o.TrackingNumber = trackingNumber
	o.UpdatedAt = at
	return o
}
