package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaly/mercaly-backend/pkg/enums"
)

// OrderItem is a purchased line. Product name and SKU are snapshots taken at
// purchase time; MerchantID is required because settlement splits per merchant.
type OrderItem struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    string     `gorm:"column:order_id;type:varchar(50);not null;index"`
	ProductID  *uuid.UUID `gorm:"column:product_id;type:uuid;index"`
	MerchantID uuid.UUID  `gorm:"column:merchant_id;type:uuid;not null;index"`

	ProductNameAtPurchase string `gorm:"column:product_name_at_purchase;type:varchar(255);not null"`
	SKUAtPurchase         string `gorm:"column:sku_at_purchase;type:varchar(100);not null"`

	Quantity             int             `gorm:"column:quantity;not null"`
	UnitPriceInclusiveGST decimal.Decimal `gorm:"column:unit_price_inclusive_gst;type:numeric(12,2);not null"`
	GSTAmountPerUnit     decimal.Decimal `gorm:"column:gst_amount_per_unit;type:numeric(12,2);not null;default:0.00"`
	LineItemTotal        decimal.Decimal `gorm:"column:line_item_total;type:numeric(12,2);not null"`

	ItemStatus enums.OrderItemStatus `gorm:"column:item_status;type:text;not null;default:'pending_fulfillment'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
