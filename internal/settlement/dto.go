package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/enums"
)

// CreateInput asks for settlement rows to be generated for one order.
// SettlementDate defaults to today when nil.
type CreateInput struct {
	OrderID        string
	SettlementDate *time.Time
}

// TransactionFilters narrows settlement listings.
type TransactionFilters struct {
	Status     *enums.SettlementPaymentStatus
	MerchantID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

// TransactionView is the outward shape of one settlement row.
type TransactionView struct {
	ID                uuid.UUID                     `json:"id"`
	OrderID           string                        `json:"order_id"`
	MerchantID        uuid.UUID                     `json:"merchant_id"`
	OrderAmount       decimal.Decimal               `json:"order_amount"`
	CommissionPercent decimal.Decimal               `json:"commission_percent"`
	CommissionAmount  decimal.Decimal               `json:"commission_amount"`
	GatewayFee        decimal.Decimal               `json:"gateway_fee"`
	TaxOnCommission   decimal.Decimal               `json:"tax_on_commission"`
	NetPayable        decimal.Decimal               `json:"net_payable"`
	PaymentStatus     enums.SettlementPaymentStatus `json:"payment_status"`
	SettlementDate    time.Time                     `json:"settlement_date"`
	PaidAt            *time.Time                    `json:"paid_at,omitempty"`
	CreatedAt         time.Time                     `json:"created_at"`
}

func newTransactionView(txn models.MerchantTransaction) TransactionView {
	return TransactionView{
		ID:                txn.ID,
		OrderID:           txn.OrderID,
		MerchantID:        txn.MerchantID,
		OrderAmount:       txn.OrderAmount,
		CommissionPercent: txn.CommissionPercent,
		CommissionAmount:  txn.CommissionAmount,
		GatewayFee:        txn.GatewayFee,
		TaxOnCommission:   txn.TaxOnCommission,
		NetPayable:        txn.NetPayable,
		PaymentStatus:     txn.PaymentStatus,
		SettlementDate:    txn.SettlementDate,
		PaidAt:            txn.PaidAt,
		CreatedAt:         txn.CreatedAt,
	}
}

func newTransactionViews(txns []models.MerchantTransaction) []TransactionView {
	views := make([]TransactionView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, newTransactionView(txn))
	}
	return views
}

// MarkPaidResult reports the outcome of a single payout confirmation.
type MarkPaidResult struct {
	Transaction TransactionView `json:"transaction"`
	AlreadyPaid bool            `json:"already_paid"`
}

// BulkCreateFailure records one order that could not be settled in a batch.
type BulkCreateFailure struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// BulkCreateResult is the outcome of a batch settlement run. Created holds
// every row written; Failures lists orders skipped with the reason each one
// was rejected.
type BulkCreateResult struct {
	Created  []TransactionView   `json:"created"`
	Failures []BulkCreateFailure `json:"failures"`
}

// BulkMarkPaidResult counts the outcome of a batch payout confirmation.
type BulkMarkPaidResult struct {
	TotalTransactions int `json:"total_transactions"`
	UpdatedCount      int `json:"updated_count"`
	AlreadyPaidCount  int `json:"already_paid_count"`
}

// Summary aggregates settlement totals over a filter window.
type Summary struct {
	TransactionCount int             `json:"transaction_count"`
	TotalOrderAmount decimal.Decimal `json:"total_order_amount"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	TotalGatewayFees decimal.Decimal `json:"total_gateway_fees"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	TotalNetPayable  decimal.Decimal `json:"total_net_payable"`
}

// TierBucket is the statistics slice for one commission bracket.
type TierBucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// StatusBucket is the statistics slice for one payout status.
type StatusBucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Statistics is the settlement reporting shape: overall totals plus
// distributions by commission bracket and by payout status. Every bracket
// and status key is always present, zero-valued when empty.
type Statistics struct {
	Summary            Summary                 `json:"summary"`
	FeeDistribution    map[string]TierBucket   `json:"fee_distribution"`
	StatusDistribution map[string]StatusBucket `json:"status_distribution"`
}

// PendingPayments lists a merchant's unpaid settlements oldest first.
type PendingPayments struct {
	MerchantID         uuid.UUID         `json:"merchant_id"`
	Transactions       []TransactionView `json:"transactions"`
	TotalPendingAmount decimal.Decimal   `json:"total_pending_amount"`
	TransactionCount   int               `json:"transaction_count"`
}
