package settlement

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
)

// Fee constants applied on top of the tiered commission.
var (
	gatewayFeePercent      = decimal.NewFromInt(2)
	taxOnCommissionPercent = decimal.NewFromInt(18)
	hundred                = decimal.NewFromInt(100)
)

// Tier is one commission bracket. UpperBound is inclusive; a nil bound marks
// the open-ended top bracket. The same table drives fee calculation and the
// statistics distribution labels, so the two can never drift apart.
type Tier struct {
	UpperBound *decimal.Decimal
	Percent    decimal.Decimal
	Label      string
}

var commissionTiers = []Tier{
	{UpperBound: dec("500"), Percent: decimal.NewFromInt(5), Label: "5%"},
	{UpperBound: dec("2000"), Percent: decimal.NewFromInt(4), Label: "4%"},
	{UpperBound: dec("10000"), Percent: decimal.NewFromInt(3), Label: "3%"},
	{UpperBound: nil, Percent: decimal.NewFromInt(2), Label: "2%"},
}

func dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

// TierFor returns the commission bracket for the given order amount.
func TierFor(orderAmount decimal.Decimal) Tier {
	for _, tier := range commissionTiers {
		if tier.UpperBound == nil || orderAmount.LessThanOrEqual(*tier.UpperBound) {
			return tier
		}
	}
	return commissionTiers[len(commissionTiers)-1]
}

// TierLabels returns the bracket labels in declaration order.
func TierLabels() []string {
	labels := make([]string, 0, len(commissionTiers))
	for _, tier := range commissionTiers {
		labels = append(labels, tier.Label)
	}
	return labels
}

// FeeBreakdown is the complete deduction set for one settlement amount.
// CommissionAmount + GatewayFee + TaxOnCommission + NetPayable always equals
// OrderAmount exactly: net is derived by subtraction, not rounded separately.
type FeeBreakdown struct {
	OrderAmount       decimal.Decimal `json:"order_amount"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
	GatewayFeePercent decimal.Decimal `json:"gateway_fee_percent"`
	GatewayFee        decimal.Decimal `json:"gateway_fee"`
	TaxPercent        decimal.Decimal `json:"tax_percent"`
	TaxOnCommission   decimal.Decimal `json:"tax_on_commission"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	NetPayable        decimal.Decimal `json:"net_payable"`
}

// CalculateFees computes the tiered commission, the flat 2% gateway fee and
// the 18% tax on the commission for the given amount.
func CalculateFees(orderAmount decimal.Decimal) (FeeBreakdown, error) {
	if !orderAmount.IsPositive() {
		return FeeBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}

	tier := TierFor(orderAmount)
	commission := orderAmount.Mul(tier.Percent).Div(hundred).Round(2)
	gatewayFee := orderAmount.Mul(gatewayFeePercent).Div(hundred).Round(2)
	tax := commission.Mul(taxOnCommissionPercent).Div(hundred).Round(2)
	deductions := commission.Add(gatewayFee).Add(tax)

	return FeeBreakdown{
		OrderAmount:       orderAmount,
		CommissionPercent: tier.Percent,
		CommissionAmount:  commission,
		GatewayFeePercent: gatewayFeePercent,
		GatewayFee:        gatewayFee,
		TaxPercent:        taxOnCommissionPercent,
		TaxOnCommission:   tax,
		TotalDeductions:   deductions,
		NetPayable:        orderAmount.Sub(deductions),
	}, nil
}
