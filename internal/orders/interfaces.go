package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/enums"
	"github.com/mercaly/mercaly-backend/pkg/pagination"
)

// Repository defines persistence operations for the order aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindOrder(ctx context.Context, orderID string) (*models.Order, error)
	FindOrderWithHistory(ctx context.Context, orderID string) (*models.Order, error)
	FindStatusHistory(ctx context.Context, orderID string, limit int) ([]models.OrderStatusHistory, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, orderID string, fromStatus enums.OrderStatus, updates map[string]any) (int64, error)
}
