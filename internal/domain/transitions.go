package domain

import "github.com/looplab/fsm"

// orderTransitions encodes the legal order-status lifecycle. Events are
// named after the destination status so a transition check is a single
// Can() call on an FSM seeded with the current status.
var orderTransitions = fsm.Events{
	{Name: string(OrderStatusValidated), Src: []string{string(OrderStatusPending)}, Dst: string(OrderStatusValidated)},
	{Name: string(OrderStatusPaymentProcessing), Src: []string{string(OrderStatusValidated)}, Dst: string(OrderStatusPaymentProcessing)},
	{Name: string(OrderStatusPaymentCompleted), Src: []string{string(OrderStatusValidated), string(OrderStatusPaymentProcessing)}, Dst: string(OrderStatusPaymentCompleted)},
	{Name: string(OrderStatusPaymentFailed), Src: []string{string(OrderStatusValidated), string(OrderStatusPaymentProcessing)}, Dst: string(OrderStatusPaymentFailed)},
	{Name: string(OrderStatusFulfillmentProcessing), Src: []string{string(OrderStatusPaymentCompleted)}, Dst: string(OrderStatusFulfillmentProcessing)},
	{Name: string(OrderStatusShipped), Src: []string{string(OrderStatusPaymentCompleted), string(OrderStatusFulfillmentProcessing)}, Dst: string(OrderStatusShipped)},
	{Name: string(OrderStatusDelivered), Src: []string{string(OrderStatusShipped)}, Dst: string(OrderStatusDelivered)},
	{Name: string(OrderStatusCancelled), Src: []string{
		string(OrderStatusPending),
		string(OrderStatusValidated),
		string(OrderStatusPaymentProcessing),
		string(OrderStatusPaymentCompleted),
		string(OrderStatusFulfillmentProcessing),
		string(OrderStatusEscalated),
	}, Dst: string(OrderStatusCancelled)},
	{Name: string(OrderStatusEscalated), Src: []string{
		string(OrderStatusPending),
		string(OrderStatusValidated),
		string(OrderStatusPaymentProcessing),
		string(OrderStatusPaymentCompleted),
		string(OrderStatusFulfillmentProcessing),
	}, Dst: string(OrderStatusEscalated)},
}

// CanTransition reports whether an order may move from one status to
// another. Re-applying the current status is always allowed so that a
// replayed status update stays idempotent.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	return fsm.NewFSM(string(from), orderTransitions, nil).Can(string(to))
}
