package orders

import "github.com/mercaly/mercaly-backend/pkg/enums"

// transitions is the single source of truth for the order state machine.
// Cancellations are encoded as ordinary targets so every allowed move lives in
// one table.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingPayment: {
		enums.OrderStatusProcessing,
		enums.OrderStatusPaymentFailed,
		enums.OrderStatusCancelledByCustomer,
		enums.OrderStatusCancelledByMerchant,
		enums.OrderStatusCancelledByAdmin,
	},
	enums.OrderStatusPaymentFailed: {
		enums.OrderStatusProcessing,
		enums.OrderStatusCancelledByCustomer,
		enums.OrderStatusCancelledByMerchant,
		enums.OrderStatusCancelledByAdmin,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
		enums.OrderStatusCancelledByCustomer,
		enums.OrderStatusCancelledByMerchant,
		enums.OrderStatusCancelledByAdmin,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusReturnRequested,
	},
	enums.OrderStatusReturnRequested: {
		enums.OrderStatusReturnApproved,
		enums.OrderStatusReturnRejected,
	},
	enums.OrderStatusReturnApproved: {
		enums.OrderStatusReturnReceived,
	},
	enums.OrderStatusReturnReceived: {
		enums.OrderStatusReturnCompleted,
	},
}

// CanTransition reports whether the move from one status to another is allowed.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsCancellable reports whether an order in the given status may still be
// cancelled. Shipped and later statuses are past the point of no return.
func IsCancellable(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPendingPayment, enums.OrderStatusPaymentFailed, enums.OrderStatusProcessing:
		return true
	}
	return false
}
