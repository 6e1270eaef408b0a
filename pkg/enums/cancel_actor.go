package enums

import "fmt"

// CancelActor identifies who requested an order cancellation. Each actor maps
// to its own cancelled status so history and reporting keep the distinction.
type CancelActor string

const (
	CancelActorCustomer CancelActor = "customer"
	CancelActorMerchant CancelActor = "merchant"
	CancelActorAdmin    CancelActor = "admin"
)

var validCancelActors = []CancelActor{
	CancelActorCustomer,
	CancelActorMerchant,
	CancelActorAdmin,
}

// String implements fmt.Stringer.
func (c CancelActor) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CancelActor.
func (c CancelActor) IsValid() bool {
	for _, candidate := range validCancelActors {
		if candidate == c {
			return true
		}
	}
	return false
}

// CancelledStatus returns the order status recorded when this actor cancels.
func (c CancelActor) CancelledStatus() OrderStatus {
	switch c {
	case CancelActorMerchant:
		return OrderStatusCancelledByMerchant
	case CancelActorAdmin:
		return OrderStatusCancelledByAdmin
	default:
		return OrderStatusCancelledByCustomer
	}
}

// ParseCancelActor converts raw input into a CancelActor.
func ParseCancelActor(value string) (CancelActor, error) {
	for _, candidate := range validCancelActors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancel actor %q", value)
}
