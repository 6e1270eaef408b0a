package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercaly/mercaly-backend/pkg/db"
	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/enums"
	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
	"github.com/mercaly/mercaly-backend/pkg/pagination"
)

const trackingHistoryLimit = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockLedger reserves and releases available stock inside the order
// transaction.
type StockLedger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDetail, error)
	Get(ctx context.Context, orderID string) (*OrderDetail, error)
	List(ctx context.Context, params pagination.Params, filters OrderFilters) (*pagination.Page[OrderSummary], error)
	Track(ctx context.Context, orderID string) (*TrackingView, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDetail, error)
	ApplyPaymentResult(ctx context.Context, input PaymentResultInput) (*OrderDetail, error)
	Cancel(ctx context.Context, input CancelInput) (*OrderDetail, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	stock StockLedger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, stock StockLedger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	return &service{repo: repo, tx: tx, stock: stock}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDetail, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range input.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total := subtotal.Add(input.TaxAmount).Add(input.ShippingAmount).Sub(input.DiscountAmount)
	if total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
	}

	now := time.Now().UTC()
	order := &models.Order{
		OrderID:            GenerateOrderID(),
		CustomerID:         input.CustomerID,
		OwnerScope:         input.OwnerScope,
		Status:             enums.OrderStatusPendingPayment,
		OrderDate:          now,
		SubtotalAmount:     subtotal,
		DiscountAmount:     input.DiscountAmount,
		TaxAmount:          input.TaxAmount,
		ShippingAmount:     input.ShippingAmount,
		TotalAmount:        total,
		Currency:           input.Currency,
		PaymentMethod:      input.PaymentMethod,
		PaymentStatus:      enums.PaymentStatusPending,
		ShippingAddressID:  input.ShippingAddressID,
		BillingAddressID:   input.BillingAddressID,
		ShippingMethodName: input.ShippingMethodName,
		CustomerNotes:      input.CustomerNotes,
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Reserve first: an unavailable line aborts the whole order before
		// anything is written.
		for _, item := range input.Items {
			if err := s.stock.Reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			productID := item.ProductID
			items = append(items, models.OrderItem{
				ID:                    uuid.New(),
				OrderID:               order.OrderID,
				ProductID:             &productID,
				MerchantID:            item.MerchantID,
				ProductNameAtPurchase: item.ProductName,
				SKUAtPurchase:         item.SKU,
				Quantity:              item.Quantity,
				UnitPriceInclusiveGST: item.UnitPrice,
				GSTAmountPerUnit:      item.GSTPerUnit,
				LineItemTotal:         item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
				ItemStatus:            enums.OrderItemStatusPendingFulfillment,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		note := "Order created"
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			ID:        uuid.New(),
			OrderID:   order.OrderID,
			Status:    enums.OrderStatusPendingPayment,
			ChangedAt: now,
			Notes:     &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		loaded, err := repo.FindOrderWithHistory(ctx, order.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		detail = newOrderDetail(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) Get(ctx context.Context, orderID string) (*OrderDetail, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderWithHistory(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return newOrderDetail(order), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters OrderFilters) (*pagination.Page[OrderSummary], error) {
	rows, total, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, newOrderSummary(row))
	}
	page := pagination.NewPage(summaries, total, params)
	return &page, nil
}

func (s *service) Track(ctx context.Context, orderID string) (*TrackingView, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	entries, err := s.repo.FindStatusHistory(ctx, orderID, trackingHistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	view := &TrackingView{
		OrderID:            order.OrderID,
		Status:             order.Status,
		OrderDate:          order.OrderDate,
		ShippingMethodName: order.ShippingMethodName,
		History:            make([]HistoryEntryView, 0, len(entries)),
	}
	for _, entry := range entries {
		view.History = append(view.History, newHistoryEntryView(entry))
	}
	return view, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDetail, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.Status.IsCancelled() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellations must go through the cancel operation")
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrderForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		if order.Status == input.Status {
			// same-status update is a no-op, not an error
			loaded, err := repo.FindOrderWithHistory(ctx, order.OrderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			detail = newOrderDetail(loaded)
			return nil
		}
		if !CanTransition(order.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition disallowed").
				WithDetails(map[string]any{"from": order.Status, "to": input.Status})
		}

		if err := s.applyTransition(ctx, repo, order, input.Status, input.ActorUserID, input.Notes); err != nil {
			return err
		}

		loaded, err := repo.FindOrderWithHistory(ctx, order.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		detail = newOrderDetail(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) ApplyPaymentResult(ctx context.Context, input PaymentResultInput) (*OrderDetail, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Status != enums.PaymentStatusSuccessful && input.Status != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment result must be successful or failed")
	}
	if input.Method != nil && !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrderForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		if order.Status != enums.OrderStatusPendingPayment && order.Status != enums.OrderStatusPaymentFailed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is past the payment stage").
				WithDetails(map[string]any{"status": order.Status})
		}

		updates := map[string]any{"payment_status": input.Status}
		if input.Method != nil {
			updates["payment_method"] = *input.Method
		}
		if input.GatewayTransactionID != nil {
			updates["payment_gateway_transaction_id"] = *input.GatewayTransactionID
		}
		if input.GatewayName != nil {
			updates["payment_gateway_name"] = *input.GatewayName
		}

		now := time.Now().UTC()
		switch input.Status {
		case enums.PaymentStatusSuccessful:
			// payment confirmation auto-advances the order
			updates["status"] = enums.OrderStatusProcessing
			if err := applyOrderUpdates(ctx, repo, order.OrderID, order.Status, updates); err != nil {
				return err
			}
			note := "Payment received, order moved to processing"
			if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
				ID:        uuid.New(),
				OrderID:   order.OrderID,
				Status:    enums.OrderStatusProcessing,
				ChangedAt: now,
				Notes:     &note,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
			}

		case enums.PaymentStatusFailed:
			if order.Status == enums.OrderStatusPendingPayment {
				// first failure returns the reserved units
				for _, item := range order.Items {
					if item.ProductID == nil || item.Quantity <= 0 {
						continue
					}
					if err := s.stock.Release(ctx, tx, *item.ProductID, item.Quantity); err != nil {
						return err
					}
				}
				updates["status"] = enums.OrderStatusPaymentFailed
				if err := applyOrderUpdates(ctx, repo, order.OrderID, order.Status, updates); err != nil {
					return err
				}
				note := "Payment failed; stock released"
				if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
					ID:        uuid.New(),
					OrderID:   order.OrderID,
					Status:    enums.OrderStatusPaymentFailed,
					ChangedAt: now,
					Notes:     &note,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
				}
			} else {
				// repeat failure: record the attempt, stock was already returned
				if err := applyOrderUpdates(ctx, repo, order.OrderID, order.Status, updates); err != nil {
					return err
				}
			}
		}

		loaded, err := repo.FindOrderWithHistory(ctx, order.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		detail = newOrderDetail(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*OrderDetail, error) {
	if input.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Actor.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cancel actor")
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrderForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		if order.Status.IsCancelled() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}
		if !IsCancellable(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		// A payment failure already returned the stock; releasing again would
		// inflate availability.
		if order.Status != enums.OrderStatusPaymentFailed {
			for _, item := range order.Items {
				if item.ProductID == nil || item.Quantity <= 0 {
					continue
				}
				if err := s.stock.Release(ctx, tx, *item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		target := input.Actor.CancelledStatus()
		note := fmt.Sprintf("Order cancelled by %s", input.Actor)
		if input.Reason != nil && *input.Reason != "" {
			note = *input.Reason
		}
		if err := s.applyTransition(ctx, repo, order, target, input.ActorUserID, &note); err != nil {
			return err
		}

		loaded, err := repo.FindOrderWithHistory(ctx, order.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		detail = newOrderDetail(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) applyTransition(ctx context.Context, repo Repository, order *models.Order, target enums.OrderStatus, actorUserID *uuid.UUID, notes *string) error {
	if err := applyOrderUpdates(ctx, repo, order.OrderID, order.Status, map[string]any{"status": target}); err != nil {
		return err
	}
	return wrapDependency(repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
		ID:              uuid.New(),
		OrderID:         order.OrderID,
		Status:          target,
		ChangedAt:       time.Now().UTC(),
		ChangedByUserID: actorUserID,
		Notes:           notes,
	}), "append status history")
}

func loadOrderForUpdate(ctx context.Context, repo Repository, orderID string) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// applyOrderUpdates writes through the status-guarded UPDATE. Zero matched
// rows means another writer moved the order after we read it; the transaction
// aborts so any stock release in it rolls back too.
func applyOrderUpdates(ctx context.Context, repo Repository, orderID string, fromStatus enums.OrderStatus, updates map[string]any) error {
	rows, err := repo.UpdateOrder(ctx, orderID, fromStatus, updates)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "gateway transaction already recorded")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order was modified concurrently").
			WithDetails(map[string]any{"expected_status": fromStatus})
	}
	return nil
}

func wrapDependency(err error, message string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func validateCreateInput(input *CreateOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: product id required", i))
		}
		if item.MerchantID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: merchant id required", i))
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit price cannot be negative", i))
		}
		if item.GSTPerUnit.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: gst per unit cannot be negative", i))
		}
	}
	if input.DiscountAmount.IsNegative() || input.TaxAmount.IsNegative() || input.ShippingAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amounts cannot be negative")
	}
	if input.OwnerScope == "" {
		input.OwnerScope = enums.OwnerScopeMarketplace
	}
	if !input.OwnerScope.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid owner scope")
	}
	if input.Currency == "" {
		input.Currency = enums.CurrencyUSD
	}
	if !input.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	return nil
}
