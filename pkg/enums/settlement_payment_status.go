package enums

import "fmt"

// SettlementPaymentStatus tracks whether a merchant payout has been released.
// The transition is one-way: pending to paid.
type SettlementPaymentStatus string

const (
	SettlementPaymentStatusPending SettlementPaymentStatus = "pending"
	SettlementPaymentStatusPaid    SettlementPaymentStatus = "paid"
)

var validSettlementPaymentStatuses = []SettlementPaymentStatus{
	SettlementPaymentStatusPending,
	SettlementPaymentStatusPaid,
}

// String implements fmt.Stringer.
func (s SettlementPaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SettlementPaymentStatus.
func (s SettlementPaymentStatus) IsValid() bool {
	for _, candidate := range validSettlementPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSettlementPaymentStatus converts raw input into a SettlementPaymentStatus.
func ParseSettlementPaymentStatus(value string) (SettlementPaymentStatus, error) {
	for _, candidate := range validSettlementPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement payment status %q", value)
}
