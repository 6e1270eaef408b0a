package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mercaly/mercaly-backend/pkg/db"
	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/enums"
	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
	"github.com/mercaly/mercaly-backend/pkg/logger"
	"github.com/mercaly/mercaly-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the settlement operations: generating per-merchant payout
// rows from orders, confirming payouts and reporting on the ledger.
type Service interface {
	Preview(ctx context.Context, orderAmount decimal.Decimal) (*FeeBreakdown, error)
	CreateFromOrder(ctx context.Context, input CreateInput) ([]TransactionView, error)
	BulkCreateFromOrders(ctx context.Context, orderIDs []string, settlementDate *time.Time) (*BulkCreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*TransactionView, error)
	GetByOrder(ctx context.Context, orderID string) ([]TransactionView, error)
	List(ctx context.Context, params pagination.Params, filters TransactionFilters) (*pagination.Page[TransactionView], error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*MarkPaidResult, error)
	BulkMarkPaid(ctx context.Context, ids []uuid.UUID) (*BulkMarkPaidResult, error)
	Summary(ctx context.Context, filters TransactionFilters) (*Summary, error)
	Statistics(ctx context.Context, filters TransactionFilters) (*Statistics, error)
	PendingPayments(ctx context.Context, merchantID uuid.UUID) (*PendingPayments, error)
	SettleUnprocessedOrders(ctx context.Context, batchSize int) (*BulkCreateResult, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService wires the settlement service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement service requires a repository")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement service requires a transaction runner")
	}
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "settlement"})
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Preview(ctx context.Context, orderAmount decimal.Decimal) (*FeeBreakdown, error) {
	fees, err := CalculateFees(orderAmount)
	if err != nil {
		return nil, err
	}
	return &fees, nil
}

func (s *service) CreateFromOrder(ctx context.Context, input CreateInput) ([]TransactionView, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	settlementDate := time.Now().UTC().Truncate(24 * time.Hour)
	if input.SettlementDate != nil {
		settlementDate = input.SettlementDate.UTC().Truncate(24 * time.Hour)
	}

	order, err := s.repo.FindOrderWithItems(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, wrapDependency("find order", err)
	}
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items to settle")
	}

	rows, err := buildTransactionRows(order, settlementDate)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateTransactions(ctx, rows); err != nil {
			if db.IsUniqueViolation(err, "ux_merchant_transactions_order_merchant") {
				return pkgerrors.New(pkgerrors.CodeConflict, "settlement already exists for this order")
			}
			return wrapDependency("create settlement transactions", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, order.OrderID), "settlement transactions created")
	return newTransactionViews(rows), nil
}

// buildTransactionRows groups the order's items by merchant and prices one
// settlement row per merchant from the summed line totals.
func buildTransactionRows(order *models.Order, settlementDate time.Time) ([]models.MerchantTransaction, error) {
	amounts := make(map[uuid.UUID]decimal.Decimal)
	merchantIDs := make([]uuid.UUID, 0)
	for _, item := range order.Items {
		if _, seen := amounts[item.MerchantID]; !seen {
			merchantIDs = append(merchantIDs, item.MerchantID)
		}
		amounts[item.MerchantID] = amounts[item.MerchantID].Add(item.LineItemTotal)
	}

	rows := make([]models.MerchantTransaction, 0, len(merchantIDs))
	for _, merchantID := range merchantIDs {
		fees, err := CalculateFees(amounts[merchantID])
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.MerchantTransaction{
			ID:                uuid.New(),
			OrderID:           order.OrderID,
			MerchantID:        merchantID,
			OrderAmount:       fees.OrderAmount,
			CommissionPercent: fees.CommissionPercent,
			CommissionAmount:  fees.CommissionAmount,
			GatewayFee:        fees.GatewayFee,
			TaxOnCommission:   fees.TaxOnCommission,
			NetPayable:        fees.NetPayable,
			PaymentStatus:     enums.SettlementPaymentStatusPending,
			SettlementDate:    settlementDate,
		})
	}
	return rows, nil
}

func (s *service) BulkCreateFromOrders(ctx context.Context, orderIDs []string, settlementDate *time.Time) (*BulkCreateResult, error) {
	if len(orderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order id is required")
	}

	result := &BulkCreateResult{
		Created:  make([]TransactionView, 0),
		Failures: make([]BulkCreateFailure, 0),
	}
	var failed error
	for _, orderID := range orderIDs {
		views, err := s.CreateFromOrder(ctx, CreateInput{OrderID: orderID, SettlementDate: settlementDate})
		if err != nil {
			result.Failures = append(result.Failures, BulkCreateFailure{
				OrderID: orderID,
				Reason:  pkgerrors.PublicMessage(err),
			})
			failed = multierr.Append(failed, err)
			continue
		}
		result.Created = append(result.Created, views...)
	}
	if failed != nil {
		s.logg.Error(ctx, "bulk settlement completed with failures", failed)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TransactionView, error) {
	txn, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	view := newTransactionView(*txn)
	return &view, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID string) ([]TransactionView, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	txns, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, wrapDependency("find settlements by order", err)
	}
	if len(txns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no settlement transactions for order")
	}
	return newTransactionViews(txns), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters TransactionFilters) (*pagination.Page[TransactionView], error) {
	rows, total, err := s.repo.ListTransactions(ctx, params, filters)
	if err != nil {
		return nil, wrapDependency("list settlement transactions", err)
	}
	page := pagination.NewPage(newTransactionViews(rows), total, params)
	return &page, nil
}

func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*MarkPaidResult, error) {
	txn, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.PaymentStatus == enums.SettlementPaymentStatusPaid {
		return &MarkPaidResult{Transaction: newTransactionView(*txn), AlreadyPaid: true}, nil
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"payment_status": enums.SettlementPaymentStatusPaid,
		"paid_at":        now,
	}
	if err := s.repo.UpdateTransaction(ctx, id, updates); err != nil {
		return nil, wrapDependency("mark settlement paid", err)
	}

	txn.PaymentStatus = enums.SettlementPaymentStatusPaid
	txn.PaidAt = &now
	s.logg.Info(s.logg.WithOrderID(ctx, txn.OrderID), "settlement marked paid")
	return &MarkPaidResult{Transaction: newTransactionView(*txn)}, nil
}

func (s *service) BulkMarkPaid(ctx context.Context, ids []uuid.UUID) (*BulkMarkPaidResult, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one transaction id is required")
	}

	result := &BulkMarkPaidResult{}
	var failed error
	for _, id := range ids {
		outcome, err := s.MarkPaid(ctx, id)
		if err != nil {
			failed = multierr.Append(failed, err)
			continue
		}
		result.TotalTransactions++
		if outcome.AlreadyPaid {
			result.AlreadyPaidCount++
		} else {
			result.UpdatedCount++
		}
	}
	if failed != nil {
		s.logg.Error(ctx, "bulk mark paid completed with failures", failed)
	}
	return result, nil
}

func (s *service) Summary(ctx context.Context, filters TransactionFilters) (*Summary, error) {
	rows, err := s.repo.FindAllTransactions(ctx, filters)
	if err != nil {
		return nil, wrapDependency("load settlement summary", err)
	}
	summary := summarize(rows)
	return &summary, nil
}

func summarize(rows []models.MerchantTransaction) Summary {
	summary := Summary{TransactionCount: len(rows)}
	for _, row := range rows {
		summary.TotalOrderAmount = summary.TotalOrderAmount.Add(row.OrderAmount)
		summary.TotalCommission = summary.TotalCommission.Add(row.CommissionAmount)
		summary.TotalGatewayFees = summary.TotalGatewayFees.Add(row.GatewayFee)
		summary.TotalTax = summary.TotalTax.Add(row.TaxOnCommission)
		summary.TotalNetPayable = summary.TotalNetPayable.Add(row.NetPayable)
	}
	return summary
}

func (s *service) Statistics(ctx context.Context, filters TransactionFilters) (*Statistics, error) {
	rows, err := s.repo.FindAllTransactions(ctx, filters)
	if err != nil {
		return nil, wrapDependency("load settlement statistics", err)
	}

	stats := &Statistics{
		Summary:            summarize(rows),
		FeeDistribution:    make(map[string]TierBucket, len(commissionTiers)),
		StatusDistribution: make(map[string]StatusBucket, 2),
	}
	for _, label := range TierLabels() {
		stats.FeeDistribution[label] = TierBucket{}
	}
	for _, status := range []enums.SettlementPaymentStatus{
		enums.SettlementPaymentStatusPending,
		enums.SettlementPaymentStatusPaid,
	} {
		stats.StatusDistribution[status.String()] = StatusBucket{}
	}

	for _, row := range rows {
		label := TierFor(row.OrderAmount).Label
		tierBucket := stats.FeeDistribution[label]
		tierBucket.Count++
		tierBucket.Amount = tierBucket.Amount.Add(row.OrderAmount)
		stats.FeeDistribution[label] = tierBucket

		statusBucket := stats.StatusDistribution[row.PaymentStatus.String()]
		statusBucket.Count++
		statusBucket.Amount = statusBucket.Amount.Add(row.NetPayable)
		stats.StatusDistribution[row.PaymentStatus.String()] = statusBucket
	}
	return stats, nil
}

func (s *service) PendingPayments(ctx context.Context, merchantID uuid.UUID) (*PendingPayments, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	rows, err := s.repo.FindPendingByMerchant(ctx, merchantID)
	if err != nil {
		return nil, wrapDependency("load pending payments", err)
	}

	result := &PendingPayments{
		MerchantID:       merchantID,
		Transactions:     newTransactionViews(rows),
		TransactionCount: len(rows),
	}
	for _, row := range rows {
		result.TotalPendingAmount = result.TotalPendingAmount.Add(row.NetPayable)
	}
	return result, nil
}

// SettleUnprocessedOrders generates settlement rows for paid orders that have
// none yet. Used by the background worker; safe to run concurrently because
// duplicate orders fail on the unique index and are reported, not retried.
func (s *service) SettleUnprocessedOrders(ctx context.Context, batchSize int) (*BulkCreateResult, error) {
	orderIDs, err := s.repo.ListUnsettledOrderIDs(ctx, batchSize)
	if err != nil {
		return nil, wrapDependency("list unsettled orders", err)
	}
	if len(orderIDs) == 0 {
		return &BulkCreateResult{
			Created:  make([]TransactionView, 0),
			Failures: make([]BulkCreateFailure, 0),
		}, nil
	}
	return s.BulkCreateFromOrders(ctx, orderIDs, nil)
}

func (s *service) loadTransaction(ctx context.Context, id uuid.UUID) (*models.MerchantTransaction, error) {
	txn, err := s.repo.FindTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "settlement transaction not found")
		}
		return nil, wrapDependency("find settlement transaction", err)
	}
	return txn, nil
}

func wrapDependency(action string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to "+action)
}
