package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaly/mercaly-backend/pkg/enums"
)

// OrderStatusHistory is an append-only audit row. A nil ChangedByUserID means
// the system recorded the transition.
type OrderStatusHistory struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         string            `gorm:"column:order_id;type:varchar(50);not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null"`
	ChangedAt       time.Time         `gorm:"column:changed_at;not null"`
	ChangedByUserID *uuid.UUID        `gorm:"column:changed_by_user_id;type:uuid"`
	Notes           *string           `gorm:"column:notes"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}
