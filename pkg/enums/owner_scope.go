package enums

import "fmt"

// OwnerScope distinguishes marketplace-wide orders from orders placed against
// a single merchant storefront. Both share one table and one state machine.
type OwnerScope string

const (
	OwnerScopeMarketplace OwnerScope = "marketplace"
	OwnerScopeStorefront  OwnerScope = "storefront"
)

var validOwnerScopes = []OwnerScope{
	OwnerScopeMarketplace,
	OwnerScopeStorefront,
}

// String implements fmt.Stringer.
func (o OwnerScope) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OwnerScope.
func (o OwnerScope) IsValid() bool {
	for _, candidate := range validOwnerScopes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOwnerScope converts raw input into an OwnerScope.
func ParseOwnerScope(value string) (OwnerScope, error) {
	for _, candidate := range validOwnerScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid owner scope %q", value)
}
