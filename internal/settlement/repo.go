package settlement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/enums"
	"github.com/mercaly/mercaly-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settlement repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransactions(ctx context.Context, txns []models.MerchantTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&txns).Error
}

func (r *repository) FindTransaction(ctx context.Context, id uuid.UUID) (*models.MerchantTransaction, error) {
	var txn models.MerchantTransaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID string) ([]models.MerchantTransaction, error) {
	var txns []models.MerchantTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("merchant_id").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) applyFilters(query *gorm.DB, filters TransactionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("payment_status = ?", *filters.Status)
	}
	if filters.MerchantID != nil {
		query = query.Where("merchant_id = ?", *filters.MerchantID)
	}
	if filters.DateFrom != nil {
		query = query.Where("settlement_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("settlement_date <= ?", *filters.DateTo)
	}
	return query
}

func (r *repository) ListTransactions(ctx context.Context, params pagination.Params, filters TransactionFilters) ([]models.MerchantTransaction, int64, error) {
	params = params.Normalize()

	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.MerchantTransaction{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.MerchantTransaction
	err := query.
		Order("settlement_date DESC, created_at DESC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) FindAllTransactions(ctx context.Context, filters TransactionFilters) ([]models.MerchantTransaction, error) {
	var rows []models.MerchantTransaction
	err := r.applyFilters(r.db.WithContext(ctx).Model(&models.MerchantTransaction{}), filters).
		Order("settlement_date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindPendingByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantTransaction, error) {
	var rows []models.MerchantTransaction
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND payment_status = ?", merchantID, enums.SettlementPaymentStatusPending).
		Order("settlement_date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.MerchantTransaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindOrderWithItems(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListUnsettledOrderIDs returns orders that have been paid but have no
// settlement rows yet, oldest first, capped at limit.
func (r *repository) ListUnsettledOrderIDs(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.order_id").
		Where("orders.payment_status = ?", enums.PaymentStatusSuccessful).
		Where("orders.order_id NOT IN (?)",
			r.db.Model(&models.MerchantTransaction{}).Select("order_id"),
		).
		Order("orders.order_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("orders.order_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
