package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaly/mercaly-backend/pkg/db/models"
	"github.com/mercaly/mercaly-backend/pkg/enums"
)

// GenerateOrderID builds a human-readable order identifier:
//
//	ORD-YYYYMMDDHHMMSS-XXXXXX
func GenerateOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102150405"), suffix)
}

// CreateOrderItemInput is one requested line. Name and SKU are snapshotted
// onto the item row as provided.
type CreateOrderItemInput struct {
	ProductID     uuid.UUID
	MerchantID    uuid.UUID
	ProductName   string
	SKU           string
	Quantity      int
	UnitPrice     decimal.Decimal
	GSTPerUnit    decimal.Decimal
}

// CreateOrderInput captures everything needed to place an order.
type CreateOrderInput struct {
	CustomerID         *uuid.UUID
	OwnerScope         enums.OwnerScope
	Currency           enums.Currency
	PaymentMethod      *enums.PaymentMethod
	Items              []CreateOrderItemInput
	DiscountAmount     decimal.Decimal
	TaxAmount          decimal.Decimal
	ShippingAmount     decimal.Decimal
	ShippingAddressID  *uuid.UUID
	BillingAddressID   *uuid.UUID
	ShippingMethodName *string
	CustomerNotes      *string
}

// OrderFilters describe the inputs supported by the orders list.
type OrderFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CustomerID    *uuid.UUID
	MerchantID    *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
}

// UpdateStatusInput carries an explicit status change request.
type UpdateStatusInput struct {
	OrderID     string
	Status      enums.OrderStatus
	ActorUserID *uuid.UUID
	Notes       *string
}

// PaymentResultInput records the gateway outcome for an order.
type PaymentResultInput struct {
	OrderID              string
	Status               enums.PaymentStatus
	Method               *enums.PaymentMethod
	GatewayTransactionID *string
	GatewayName          *string
}

// CancelInput captures a cancellation request from any of the three actors.
type CancelInput struct {
	OrderID     string
	Actor       enums.CancelActor
	ActorUserID *uuid.UUID
	Reason      *string
}

// OrderItemView is the serialized order line.
type OrderItemView struct {
	ID          uuid.UUID             `json:"id"`
	ProductID   *uuid.UUID            `json:"product_id,omitempty"`
	MerchantID  uuid.UUID             `json:"merchant_id"`
	ProductName string                `json:"product_name"`
	SKU         string                `json:"sku"`
	Quantity    int                   `json:"quantity"`
	UnitPrice   decimal.Decimal       `json:"unit_price"`
	GSTPerUnit  decimal.Decimal       `json:"gst_per_unit"`
	LineTotal   decimal.Decimal       `json:"line_total"`
	ItemStatus  enums.OrderItemStatus `json:"item_status"`
}

// HistoryEntryView is the serialized audit row.
type HistoryEntryView struct {
	Status          enums.OrderStatus `json:"status"`
	ChangedAt       time.Time         `json:"changed_at"`
	ChangedByUserID *uuid.UUID        `json:"changed_by_user_id,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
}

// OrderDetail is the full aggregate view returned by detail endpoints.
type OrderDetail struct {
	OrderID              string               `json:"order_id"`
	CustomerID           *uuid.UUID           `json:"customer_id,omitempty"`
	OwnerScope           enums.OwnerScope     `json:"owner_scope"`
	Status               enums.OrderStatus    `json:"status"`
	OrderDate            time.Time            `json:"order_date"`
	SubtotalAmount       decimal.Decimal      `json:"subtotal_amount"`
	DiscountAmount       decimal.Decimal      `json:"discount_amount"`
	TaxAmount            decimal.Decimal      `json:"tax_amount"`
	ShippingAmount       decimal.Decimal      `json:"shipping_amount"`
	TotalAmount          decimal.Decimal      `json:"total_amount"`
	Currency             enums.Currency       `json:"currency"`
	PaymentMethod        *enums.PaymentMethod `json:"payment_method,omitempty"`
	PaymentStatus        enums.PaymentStatus  `json:"payment_status"`
	GatewayTransactionID *string              `json:"payment_gateway_transaction_id,omitempty"`
	GatewayName          *string              `json:"payment_gateway_name,omitempty"`
	ShippingMethodName   *string              `json:"shipping_method_name,omitempty"`
	CustomerNotes        *string              `json:"customer_notes,omitempty"`
	Items                []OrderItemView      `json:"items"`
	StatusHistory        []HistoryEntryView   `json:"status_history"`
}

// OrderSummary is the condensed row returned by list endpoints.
type OrderSummary struct {
	OrderID       string              `json:"order_id"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Currency      enums.Currency      `json:"currency"`
	TotalItems    int                 `json:"total_items"`
	OrderDate     time.Time           `json:"order_date"`
}

// TrackingView is the condensed shipment-facing projection.
type TrackingView struct {
	OrderID            string             `json:"order_id"`
	Status             enums.OrderStatus  `json:"status"`
	OrderDate          time.Time          `json:"order_date"`
	ShippingMethodName *string            `json:"shipping_method_name,omitempty"`
	History            []HistoryEntryView `json:"history"`
}

func newOrderDetail(order *models.Order) *OrderDetail {
	detail := &OrderDetail{
		OrderID:              order.OrderID,
		CustomerID:           order.CustomerID,
		OwnerScope:           order.OwnerScope,
		Status:               order.Status,
		OrderDate:            order.OrderDate,
		SubtotalAmount:       order.SubtotalAmount,
		DiscountAmount:       order.DiscountAmount,
		TaxAmount:            order.TaxAmount,
		ShippingAmount:       order.ShippingAmount,
		TotalAmount:          order.TotalAmount,
		Currency:             order.Currency,
		PaymentMethod:        order.PaymentMethod,
		PaymentStatus:        order.PaymentStatus,
		GatewayTransactionID: order.PaymentGatewayTransactionID,
		GatewayName:          order.PaymentGatewayName,
		ShippingMethodName:   order.ShippingMethodName,
		CustomerNotes:        order.CustomerNotes,
		Items:                make([]OrderItemView, 0, len(order.Items)),
		StatusHistory:        make([]HistoryEntryView, 0, len(order.StatusHistory)),
	}
	for _, item := range order.Items {
		detail.Items = append(detail.Items, OrderItemView{
			ID:          item.ID,
			ProductID:   item.ProductID,
			MerchantID:  item.MerchantID,
			ProductName: item.ProductNameAtPurchase,
			SKU:         item.SKUAtPurchase,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPriceInclusiveGST,
			GSTPerUnit:  item.GSTAmountPerUnit,
			LineTotal:   item.LineItemTotal,
			ItemStatus:  item.ItemStatus,
		})
	}
	for _, entry := range order.StatusHistory {
		detail.StatusHistory = append(detail.StatusHistory, newHistoryEntryView(entry))
	}
	return detail
}

func newHistoryEntryView(entry models.OrderStatusHistory) HistoryEntryView {
	return HistoryEntryView{
		Status:          entry.Status,
		ChangedAt:       entry.ChangedAt,
		ChangedByUserID: entry.ChangedByUserID,
		Notes:           entry.Notes,
	}
}

func newOrderSummary(order models.Order) OrderSummary {
	totalItems := 0
	for _, item := range order.Items {
		totalItems += item.Quantity
	}
	return OrderSummary{
		OrderID:       order.OrderID,
		CustomerID:    order.CustomerID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		TotalItems:    totalItems,
		OrderDate:     order.OrderDate,
	}
}
