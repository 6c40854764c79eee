// internal/domain/order/transitions.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusCancelled,
	},
	OrderStatusConfirmed: {
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusCancelled,
	},
	OrderStatusProcessing: {
		OrderStatusShipped,
		OrderStatusCancelled,
	},
	OrderStatusShipped: {
		OrderStatusDelivered,
	},
	OrderStatusDelivered: {
		OrderStatusRefunded,
	},
}

// CanTransition reports whether an order may move from one status to another.
// Cancelled and refunded orders are terminal.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func NextStatuses(s OrderStatus) []OrderStatus {
	next := validTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// Transition moves the order to status, stamping the shipped, delivered or
// cancelled time when entering those states.
func (o *Order) Transition(to OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return apperror.FailedPrecondition(
			"invalid_status_transition",
			fmt.Sprintf("cannot change order status from %s to %s", o.Status, to),
		)
	}

	o.Status = to
	switch to {
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
	}
	return nil
}
