package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductStock tracks available units per product. AvailableQty never goes
// negative; reservations are guarded updates inside the caller's transaction.
type ProductStock struct {
	ProductID         uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	AvailableQty      int       `gorm:"column:available_qty;not null;default:0"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold;not null;default:0"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductStock) TableName() string {
	return "product_stock"
}
