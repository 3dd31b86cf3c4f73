package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/api/responses"
	"github.com/priceworks/discount-engine/api/validators"
	pricingsvc "github.com/priceworks/discount-engine/internal/pricing"
	"github.com/priceworks/discount-engine/pkg/enums"
	pkgerrors "github.com/priceworks/discount-engine/pkg/errors"
	"github.com/priceworks/discount-engine/pkg/logger"
)

type cartItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	LineTotal decimal.Decimal `json:"line_total" validate:"required"`
}

type cartQuoteRequest struct {
	Items []cartItemRequest `json:"items" validate:"required,min=1,dive"`
}

type cartDiscountResponse struct {
	RuleID         uuid.UUID          `json:"rule_id"`
	RuleTitle      string             `json:"rule_title"`
	DiscountType   enums.DiscountType `json:"discount_type"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
}

type cartQuoteResponse struct {
	Discounts     []cartDiscountResponse `json:"discounts"`
	TotalDiscount decimal.Decimal        `json:"total_discount"`
}

// CartQuote evaluates the active rules against the posted cart and returns
// the effective discounts under the configured resolution method.
func CartQuote(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload cartQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]pricingsvc.CartItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			if item.LineTotal.IsNegative() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line_total must not be negative"))
				return
			}
			items = append(items, pricingsvc.CartItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				LineTotal: item.LineTotal,
			})
		}

		results := svc.CartDiscounts(r.Context(), items, time.Now())

		out := cartQuoteResponse{
			Discounts:     make([]cartDiscountResponse, 0, len(results)),
			TotalDiscount: decimal.Zero,
		}
		for _, result := range results {
			out.Discounts = append(out.Discounts, cartDiscountResponse{
				RuleID:         result.RuleID,
				RuleTitle:      result.RuleTitle,
				DiscountType:   result.DiscountType,
				DiscountAmount: result.DiscountAmount,
			})
			out.TotalDiscount = out.TotalDiscount.Add(result.DiscountAmount)
		}

		responses.WriteSuccess(w, out)
	}
}
