package settlement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/pagination"
)

// Repository is the persistence surface for settlement rows. Implementations
// must return gorm errors unwrapped so the service can map them to API codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTransactions(ctx context.Context, txns []models.MerchantTransaction) error
	FindTransaction(ctx context.Context, id uuid.UUID) (*models.MerchantTransaction, error)
	FindByOrder(ctx context.Context, orderID string) ([]models.MerchantTransaction, error)
	ListTransactions(ctx context.Context, params pagination.Params, filters TransactionFilters) ([]models.MerchantTransaction, int64, error)
	FindAllTransactions(ctx context.Context, filters TransactionFilters) ([]models.MerchantTransaction, error)
	FindPendingByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantTransaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error

	FindOrderWithItems(ctx context.Context, orderID string) (*models.Order, error)
	ListUnsettledOrderIDs(ctx context.Context, limit int) ([]string, error)
}
