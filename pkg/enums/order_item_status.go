package enums

import "fmt"

// OrderItemStatus tracks per-line fulfillment.
type OrderItemStatus string

const (
	OrderItemStatusPendingFulfillment OrderItemStatus = "pending_fulfillment"
	OrderItemStatusFulfilled          OrderItemStatus = "fulfilled"
	OrderItemStatusCancelled          OrderItemStatus = "cancelled"
	OrderItemStatusReturned           OrderItemStatus = "returned"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusPendingFulfillment,
	OrderItemStatusFulfilled,
	OrderItemStatusCancelled,
	OrderItemStatusReturned,
}

// String implements fmt.Stringer.
func (o OrderItemStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (o OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
