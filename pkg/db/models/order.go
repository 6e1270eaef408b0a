package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaly/mercaly-backend/pkg/enums"
)

// Order is the customer-facing order aggregate root. Items and status history
// hang off it with cascade deletes; history is append-only.
type Order struct {
	OrderID    string           `gorm:"column:order_id;type:varchar(50);primaryKey"`
	CustomerID *uuid.UUID       `gorm:"column:customer_id;type:uuid;index"`
	OwnerScope enums.OwnerScope `gorm:"column:owner_scope;type:text;not null;default:'marketplace'"`

	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending_payment';index"`
	OrderDate time.Time         `gorm:"column:order_date;not null"`

	SubtotalAmount decimal.Decimal `gorm:"column:subtotal_amount;type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0.00"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0.00"`
	ShippingAmount decimal.Decimal `gorm:"column:shipping_amount;type:numeric(12,2);not null;default:0.00"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency       enums.Currency  `gorm:"column:currency;type:varchar(3);not null;default:'USD'"`

	PaymentMethod               *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	PaymentStatus               enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'pending';index"`
	PaymentGatewayTransactionID *string              `gorm:"column:payment_gateway_transaction_id;type:varchar(255);uniqueIndex"`
	PaymentGatewayName          *string              `gorm:"column:payment_gateway_name;type:varchar(50)"`

	ShippingAddressID *uuid.UUID `gorm:"column:shipping_address_id;type:uuid"`
	BillingAddressID  *uuid.UUID `gorm:"column:billing_address_id;type:uuid"`

	ShippingMethodName *string `gorm:"column:shipping_method_name;type:varchar(100)"`
	CustomerNotes      *string `gorm:"column:customer_notes"`
	InternalNotes      *string `gorm:"column:internal_notes"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
