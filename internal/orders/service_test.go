package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mercaly/mercaly-backend/internal/inventory"
	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/enums"
	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
	"github.com/mercaly/mercaly-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ordersDDL := `
CREATE TABLE IF NOT EXISTS orders (
  order_id TEXT PRIMARY KEY,
  customer_id TEXT,
  owner_scope TEXT NOT NULL DEFAULT 'marketplace',
  status TEXT NOT NULL DEFAULT 'pending_payment',
  order_date DATETIME NOT NULL,
  subtotal_amount NUMERIC NOT NULL,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  shipping_amount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  payment_method TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_gateway_transaction_id TEXT UNIQUE,
  payment_gateway_name TEXT,
  shipping_address_id TEXT,
  billing_address_id TEXT,
  shipping_method_name TEXT,
  customer_notes TEXT,
  internal_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsDDL := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  merchant_id TEXT NOT NULL,
  product_name_at_purchase TEXT NOT NULL,
  sku_at_purchase TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_inclusive_gst NUMERIC NOT NULL,
  gst_amount_per_unit NUMERIC NOT NULL DEFAULT 0,
  line_item_total NUMERIC NOT NULL,
  item_status TEXT NOT NULL DEFAULT 'pending_fulfillment',
  created_at DATETIME,
  updated_at DATETIME
);`
	historyDDL := `
CREATE TABLE IF NOT EXISTS order_status_history (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  changed_at DATETIME NOT NULL,
  changed_by_user_id TEXT,
  notes TEXT
);`
	stockDDL := `
CREATE TABLE IF NOT EXISTS product_stock (
  product_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	for _, ddl := range []string{ordersDDL, itemsDDL, historyDDL, stockDDL} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := setupOrdersTestDB(t)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, inventory.NewLedger())
	require.NoError(t, err)
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, qty int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&models.ProductStock{ProductID: id, AvailableQty: qty}).Error)
	return id
}

func stockQty(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var stock models.ProductStock
	require.NoError(t, db.First(&stock, "product_id = ?", productID).Error)
	return stock.AvailableQty
}

func createInput(productID, merchantID uuid.UUID, qty int, unitPrice string) CreateOrderInput {
	return CreateOrderInput{
		Items: []CreateOrderItemInput{{
			ProductID:   productID,
			MerchantID:  merchantID,
			ProductName: "Walnut Desk",
			SKU:         "DSK-100",
			Quantity:    qty,
			UnitPrice:   decimal.RequireFromString(unitPrice),
		}},
	}
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	merchant := uuid.New()

	input := createInput(product, merchant, 3, "120.00")
	input.TaxAmount = decimal.RequireFromString("10.00")
	input.ShippingAmount = decimal.RequireFromString("5.00")
	input.DiscountAmount = decimal.RequireFromString("15.00")

	detail, err := svc.Create(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPendingPayment, detail.Status)
	assert.Equal(t, enums.PaymentStatusPending, detail.PaymentStatus)
	assert.True(t, detail.SubtotalAmount.Equal(decimal.RequireFromString("360.00")), "subtotal %s", detail.SubtotalAmount)
	assert.True(t, detail.TotalAmount.Equal(decimal.RequireFromString("360.00")), "total %s", detail.TotalAmount)
	require.Len(t, detail.Items, 1)
	assert.True(t, detail.Items[0].LineTotal.Equal(decimal.RequireFromString("360.00")))

	require.Len(t, detail.StatusHistory, 1)
	assert.Equal(t, enums.OrderStatusPendingPayment, detail.StatusHistory[0].Status)
	require.NotNil(t, detail.StatusHistory[0].Notes)
	assert.Equal(t, "Order created", *detail.StatusHistory[0].Notes)

	assert.Equal(t, 7, stockQty(t, db, product))
}

func TestCreateOrderShortageRollsBackEverything(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	plentiful := seedProduct(t, db, 10)
	scarce := seedProduct(t, db, 1)
	merchant := uuid.New()

	input := CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: plentiful, MerchantID: merchant, ProductName: "Desk", SKU: "DSK-1", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
			{ProductID: scarce, MerchantID: merchant, ProductName: "Lamp", SKU: "LMP-1", Quantity: 3, UnitPrice: decimal.RequireFromString("20.00")},
		},
	}

	_, err := svc.Create(ctx, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	// the first reservation must have been rolled back with the order
	assert.Equal(t, 10, stockQty(t, db, plentiful))
	assert.Equal(t, 1, stockQty(t, db, scarce))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateOrderInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	input := createInput(uuid.New(), uuid.New(), 0, "10.00")
	_, err = svc.Create(ctx, input)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateStatusTransitionMatrix(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 1, "99.00"))
	require.NoError(t, err)

	// pending_payment cannot jump straight to shipped
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: enums.OrderStatusShipped})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// cancelled statuses are rejected here entirely
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: enums.OrderStatusCancelledByAdmin})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// walk the happy path
	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: enums.OrderStatusShipped})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)

	// same-status update is a no-op and appends no history
	before := len(updated.StatusHistory)
	again, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: enums.OrderStatusShipped})
	require.NoError(t, err)
	assert.Len(t, again.StatusHistory, before)

	// shipped cannot go backwards
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: enums.OrderStatusProcessing})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestReturnFlow(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 1, "45.00"))
	require.NoError(t, err)

	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusReturnRequested,
		enums.OrderStatusReturnApproved,
		enums.OrderStatusReturnReceived,
		enums.OrderStatusReturnCompleted,
	} {
		updated, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: status})
		require.NoError(t, err, "transition to %s", status)
		assert.Equal(t, status, updated.Status)
	}

	// return_completed is terminal
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: enums.OrderStatusReturnRequested})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestApplyPaymentSuccessAutoAdvances(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 2, "30.00"))
	require.NoError(t, err)

	method := enums.PaymentMethodCreditCard
	txnID := "gw-" + uuid.NewString()
	gateway := "razorstripe"
	updated, err := svc.ApplyPaymentResult(ctx, PaymentResultInput{
		OrderID:              detail.OrderID,
		Status:               enums.PaymentStatusSuccessful,
		Method:               &method,
		GatewayTransactionID: &txnID,
		GatewayName:          &gateway,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	assert.Equal(t, enums.PaymentStatusSuccessful, updated.PaymentStatus)
	require.NotNil(t, updated.GatewayTransactionID)
	assert.Equal(t, txnID, *updated.GatewayTransactionID)

	// auto-advance writes a system history row (no actor)
	require.Len(t, updated.StatusHistory, 2)
	newest := updated.StatusHistory[0]
	assert.Equal(t, enums.OrderStatusProcessing, newest.Status)
	assert.Nil(t, newest.ChangedByUserID)
	require.NotNil(t, newest.Notes)
	assert.Equal(t, "Payment received, order moved to processing", *newest.Notes)
}

func TestApplyPaymentFailureReleasesStockOnce(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 4, "25.00"))
	require.NoError(t, err)
	assert.Equal(t, 6, stockQty(t, db, product))

	updated, err := svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaymentFailed, updated.Status)
	assert.Equal(t, 10, stockQty(t, db, product))

	// a retried failure records the attempt but must not release again
	updated, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaymentFailed, updated.Status)
	assert.Equal(t, 10, stockQty(t, db, product))

	// a retry can still succeed afterwards
	updated, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
}

func TestApplyPaymentPastPaymentStage(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 1, "10.00"))
	require.NoError(t, err)

	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)

	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusFailed})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestCancelRestoresStockPerActor(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	actors := []struct {
		actor enums.CancelActor
		want  enums.OrderStatus
	}{
		{enums.CancelActorCustomer, enums.OrderStatusCancelledByCustomer},
		{enums.CancelActorMerchant, enums.OrderStatusCancelledByMerchant},
		{enums.CancelActorAdmin, enums.OrderStatusCancelledByAdmin},
	}

	for _, tc := range actors {
		product := seedProduct(t, db, 8)
		detail, err := svc.Create(ctx, createInput(product, uuid.New(), 3, "12.00"))
		require.NoError(t, err)
		assert.Equal(t, 5, stockQty(t, db, product))

		cancelled, err := svc.Cancel(ctx, CancelInput{OrderID: detail.OrderID, Actor: tc.actor})
		require.NoError(t, err)
		assert.Equal(t, tc.want, cancelled.Status)
		assert.Equal(t, 8, stockQty(t, db, product))
	}
}

func TestCancelAfterPaymentFailureSkipsRelease(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 4, "25.00"))
	require.NoError(t, err)

	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, 10, stockQty(t, db, product))

	cancelled, err := svc.Cancel(ctx, CancelInput{OrderID: detail.OrderID, Actor: enums.CancelActorCustomer})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelledByCustomer, cancelled.Status)
	assert.Equal(t, 10, stockQty(t, db, product), "cancel after payment failure must not double-release")
}

func TestCancelRejections(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 1, "50.00"))
	require.NoError(t, err)

	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: detail.OrderID, Status: enums.OrderStatusShipped})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, CancelInput{OrderID: detail.OrderID, Actor: enums.CancelActorCustomer})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// cancelling twice is also a conflict
	product2 := seedProduct(t, db, 5)
	detail2, err := svc.Create(ctx, createInput(product2, uuid.New(), 1, "50.00"))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, CancelInput{OrderID: detail2.OrderID, Actor: enums.CancelActorAdmin})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, CancelInput{OrderID: detail2.OrderID, Actor: enums.CancelActorAdmin})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestListOrdersFilters(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	merchantA := uuid.New()
	merchantB := uuid.New()

	for i := 0; i < 3; i++ {
		product := seedProduct(t, db, 10)
		_, err := svc.Create(ctx, createInput(product, merchantA, 1, "10.00"))
		require.NoError(t, err)
	}
	product := seedProduct(t, db, 10)
	detail, err := svc.Create(ctx, createInput(product, merchantB, 1, "10.00"))
	require.NoError(t, err)
	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)

	all, err := svc.List(ctx, pagination.Params{}, OrderFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Total)

	status := enums.OrderStatusProcessing
	processing, err := svc.List(ctx, pagination.Params{}, OrderFilters{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, processing.Total)

	byMerchant, err := svc.List(ctx, pagination.Params{}, OrderFilters{MerchantID: &merchantA})
	require.NoError(t, err)
	assert.EqualValues(t, 3, byMerchant.Total)

	paged, err := svc.List(ctx, pagination.Params{Page: 1, PerPage: 2}, OrderFilters{})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 2)
	assert.Equal(t, 2, paged.TotalPages)
	assert.True(t, paged.HasNext)
}

func TestTrack(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 1, "20.00"))
	require.NoError(t, err)
	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)

	view, err := svc.Track(ctx, detail.OrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, view.Status)
	require.Len(t, view.History, 2)
	assert.Equal(t, enums.OrderStatusProcessing, view.History[0].Status)

	_, err = svc.Track(ctx, "ORD-00000000000000-ZZZZZZ")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 3, "100.00"))
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendingPayment, detail.Status)
	assert.Equal(t, 7, stockQty(t, db, product))

	paid, err := svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, paid.Status)

	cancelled, err := svc.Cancel(ctx, CancelInput{OrderID: detail.OrderID, Actor: enums.CancelActorCustomer})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelledByCustomer, cancelled.Status)
	assert.Equal(t, 10, stockQty(t, db, product))

	// full audit trail in reverse chronological order
	require.Len(t, cancelled.StatusHistory, 3)
	assert.Equal(t, enums.OrderStatusCancelledByCustomer, cancelled.StatusHistory[0].Status)
}

// staleReadRepository serves a snapshot from before a concurrent writer
// committed, reproducing the read-then-write race window.
type staleReadRepository struct {
	Repository
	stale *models.Order
}

func (r *staleReadRepository) WithTx(tx *gorm.DB) Repository {
	return &staleReadRepository{Repository: r.Repository.WithTx(tx), stale: r.stale}
}

func (r *staleReadRepository) FindOrder(context.Context, string) (*models.Order, error) {
	return r.stale, nil
}

func TestCancelLosingConcurrentWriteFailsWithoutReleasingStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	detail, err := svc.Create(ctx, createInput(product, uuid.New(), 3, "100.00"))
	require.NoError(t, err)

	_, err = svc.ApplyPaymentResult(ctx, PaymentResultInput{OrderID: detail.OrderID, Status: enums.PaymentStatusSuccessful})
	require.NoError(t, err)
	assert.Equal(t, 7, stockQty(t, db, product))

	// Snapshot the processing order the way a slower cancel would have read
	// it, then let the faster cancel commit.
	repo := NewRepository(db)
	stale, err := repo.FindOrder(ctx, detail.OrderID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, CancelInput{OrderID: detail.OrderID, Actor: enums.CancelActorCustomer})
	require.NoError(t, err)
	assert.Equal(t, 10, stockQty(t, db, product))

	// The slower cancel re-applies its decision against the stale snapshot:
	// the guarded UPDATE matches zero rows and the whole transaction, stock
	// release included, rolls back.
	staleSvc, err := NewService(&staleReadRepository{Repository: repo, stale: stale}, gormTxRunner{db: db}, inventory.NewLedger())
	require.NoError(t, err)

	_, err = staleSvc.Cancel(ctx, CancelInput{OrderID: detail.OrderID, Actor: enums.CancelActorAdmin})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	assert.Equal(t, 10, stockQty(t, db, product), "losing writer must not release stock again")

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "order_id = ?", detail.OrderID).Error)
	assert.Equal(t, enums.OrderStatusCancelledByCustomer, reloaded.Status, "first cancel must stand")
}
