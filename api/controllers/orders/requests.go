package orders

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaly/mercaly-backend/api/validators"
	internalorders "github.com/mercaly/mercaly-backend/internal/orders"
	"github.com/mercaly/mercaly-backend/pkg/enums"
	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
)

type createOrderItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	MerchantID  string          `json:"merchant_id" validate:"required,uuid"`
	ProductName string          `json:"product_name" validate:"required,max=255"`
	SKU         string          `json:"sku" validate:"required,max=100"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	GSTPerUnit  decimal.Decimal `json:"gst_per_unit"`
}

type createOrderRequest struct {
	CustomerID         *string                  `json:"customer_id" validate:"omitempty,uuid"`
	OwnerScope         string                   `json:"owner_scope" validate:"omitempty,oneof=marketplace storefront"`
	Currency           string                   `json:"currency" validate:"omitempty,len=3"`
	PaymentMethod      *string                  `json:"payment_method"`
	Items              []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountAmount     decimal.Decimal          `json:"discount_amount"`
	TaxAmount          decimal.Decimal          `json:"tax_amount"`
	ShippingAmount     decimal.Decimal          `json:"shipping_amount"`
	ShippingAddressID  *string                  `json:"shipping_address_id" validate:"omitempty,uuid"`
	BillingAddressID   *string                  `json:"billing_address_id" validate:"omitempty,uuid"`
	ShippingMethodName *string                  `json:"shipping_method_name" validate:"omitempty,max=100"`
	CustomerNotes      *string                  `json:"customer_notes"`
}

func (req *createOrderRequest) toInput() (internalorders.CreateOrderInput, error) {
	input := internalorders.CreateOrderInput{
		DiscountAmount:     req.DiscountAmount,
		TaxAmount:          req.TaxAmount,
		ShippingAmount:     req.ShippingAmount,
		ShippingMethodName: req.ShippingMethodName,
		CustomerNotes:      req.CustomerNotes,
	}

	var err error
	if input.CustomerID, err = parseOptionalUUID(req.CustomerID, "customer_id"); err != nil {
		return input, err
	}
	if input.ShippingAddressID, err = parseOptionalUUID(req.ShippingAddressID, "shipping_address_id"); err != nil {
		return input, err
	}
	if input.BillingAddressID, err = parseOptionalUUID(req.BillingAddressID, "billing_address_id"); err != nil {
		return input, err
	}

	if req.OwnerScope != "" {
		scope, err := enums.ParseOwnerScope(req.OwnerScope)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner scope")
		}
		input.OwnerScope = scope
	}
	if req.Currency != "" {
		currency, err := enums.ParseCurrency(strings.ToUpper(req.Currency))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		input.Currency = currency
	}
	if req.PaymentMethod != nil {
		method, err := enums.ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		input.PaymentMethod = &method
	}

	input.Items = make([]internalorders.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		merchantID, err := uuid.Parse(item.MerchantID)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid merchant id")
		}
		input.Items = append(input.Items, internalorders.CreateOrderItemInput{
			ProductID:   productID,
			MerchantID:  merchantID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			GSTPerUnit:  item.GSTPerUnit,
		})
	}
	return input, nil
}

type updateStatusRequest struct {
	Status      string  `json:"status" validate:"required"`
	ActorUserID *string `json:"actor_user_id" validate:"omitempty,uuid"`
	Notes       *string `json:"notes"`
}

type paymentResultRequest struct {
	Status               string  `json:"status" validate:"required,oneof=successful failed"`
	Method               *string `json:"method"`
	GatewayTransactionID *string `json:"gateway_transaction_id" validate:"omitempty,max=255"`
	GatewayName          *string `json:"gateway_name" validate:"omitempty,max=50"`
}

type cancelOrderRequest struct {
	Actor       string  `json:"actor" validate:"required,oneof=customer merchant admin"`
	ActorUserID *string `json:"actor_user_id" validate:"omitempty,uuid"`
	Reason      *string `json:"reason"`
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field)
	}
	return &value, nil
}

func buildOrderFilters(r *http.Request) (internalorders.OrderFilters, error) {
	var filters internalorders.OrderFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}

	var err error
	if filters.CustomerID, err = validators.ParseQueryUUID(r, "customer_id"); err != nil {
		return filters, err
	}
	if filters.MerchantID, err = validators.ParseQueryUUID(r, "merchant_id"); err != nil {
		return filters, err
	}
	if filters.DateFrom, err = validators.ParseQueryDate(r, "date_from"); err != nil {
		return filters, err
	}
	if filters.DateTo, err = validators.ParseQueryDate(r, "date_to"); err != nil {
		return filters, err
	}
	return filters, nil
}
