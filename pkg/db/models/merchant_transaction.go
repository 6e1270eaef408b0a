package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaly/mercaly-backend/pkg/enums"
)

// MerchantTransaction is one merchant's settlement row for one order. The
// (order_id, merchant_id) pair is unique so settlement cannot double-book.
type MerchantTransaction struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    string    `gorm:"column:order_id;type:varchar(50);not null;uniqueIndex:ux_merchant_transactions_order_merchant"`
	MerchantID uuid.UUID `gorm:"column:merchant_id;type:uuid;not null;uniqueIndex:ux_merchant_transactions_order_merchant;index"`

	OrderAmount       decimal.Decimal `gorm:"column:order_amount;type:numeric(12,2);not null"`
	CommissionPercent decimal.Decimal `gorm:"column:commission_percent;type:numeric(5,2);not null"`
	CommissionAmount  decimal.Decimal `gorm:"column:commission_amount;type:numeric(12,2);not null"`
	TaxOnCommission   decimal.Decimal `gorm:"column:tax_on_commission;type:numeric(12,2);not null"`
	GatewayFee        decimal.Decimal `gorm:"column:gateway_fee;type:numeric(12,2);not null"`
	NetPayable        decimal.Decimal `gorm:"column:net_payable;type:numeric(12,2);not null"`

	PaymentStatus  enums.SettlementPaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending';index"`
	SettlementDate time.Time                     `gorm:"column:settlement_date;type:date;not null"`
	PaidAt         *time.Time                    `gorm:"column:paid_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
