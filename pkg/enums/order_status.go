package enums

import "fmt"

// OrderStatus tracks the lifecycle of a marketplace order.
type OrderStatus string

const (
	OrderStatusPendingPayment      OrderStatus = "pending_payment"
	OrderStatusPaymentFailed       OrderStatus = "payment_failed"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusCancelledByCustomer OrderStatus = "cancelled_by_customer"
	OrderStatusCancelledByMerchant OrderStatus = "cancelled_by_merchant"
	OrderStatusCancelledByAdmin    OrderStatus = "cancelled_by_admin"
	OrderStatusReturnRequested     OrderStatus = "return_requested"
	OrderStatusReturnApproved      OrderStatus = "return_approved"
	OrderStatusReturnRejected      OrderStatus = "return_rejected"
	OrderStatusReturnReceived      OrderStatus = "return_received"
	OrderStatusReturnCompleted     OrderStatus = "return_completed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaymentFailed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelledByCustomer,
	OrderStatusCancelledByMerchant,
	OrderStatusCancelledByAdmin,
	OrderStatusReturnRequested,
	OrderStatusReturnApproved,
	OrderStatusReturnRejected,
	OrderStatusReturnReceived,
	OrderStatusReturnCompleted,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsCancelled reports whether the status is one of the cancelled variants.
func (o OrderStatus) IsCancelled() bool {
	switch o {
	case OrderStatusCancelledByCustomer, OrderStatusCancelledByMerchant, OrderStatusCancelledByAdmin:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusReturnRejected, OrderStatusReturnCompleted:
		return true
	}
	return o.IsCancelled()
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
