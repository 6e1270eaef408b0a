package settlements

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mercaly/mercaly-backend/api/validators"
	"github.com/mercaly/mercaly-backend/internal/settlement"
	"github.com/mercaly/mercaly-backend/pkg/enums"
	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
)

type createSettlementRequest struct {
	OrderID        string  `json:"order_id" validate:"required,max=50"`
	SettlementDate *string `json:"settlement_date" validate:"omitempty"`
}

type bulkCreateSettlementRequest struct {
	OrderIDs       []string `json:"order_ids" validate:"required,min=1,max=500,dive,required"`
	SettlementDate *string  `json:"settlement_date" validate:"omitempty"`
}

type bulkMarkPaidRequest struct {
	TransactionIDs []string `json:"transaction_ids" validate:"required,min=1,max=500,dive,uuid"`
}

type feePreviewRequest struct {
	OrderAmount decimal.Decimal `json:"order_amount" validate:"required"`
}

func parseSettlementDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement_date must be formatted YYYY-MM-DD")
	}
	return &value, nil
}

func buildTransactionFilters(r *http.Request) (settlement.TransactionFilters, error) {
	var filters settlement.TransactionFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseSettlementPaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}

	var err error
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
