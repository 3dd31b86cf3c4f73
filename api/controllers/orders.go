package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/api/responses"
	"github.com/priceworks/discount-engine/api/validators"
	usagesvc "github.com/priceworks/discount-engine/internal/usage"
	pkgerrors "github.com/priceworks/discount-engine/pkg/errors"
	"github.com/priceworks/discount-engine/pkg/logger"
)

type appliedDiscountRequest struct {
	RuleID uuid.UUID       `json:"rule_id" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type orderCompletedRequest struct {
	Applied []appliedDiscountRequest `json:"applied" validate:"required,min=1,dive"`
}

// OrderCompleted records usage for every discount applied to a completed
// order. Recording is best-effort and idempotent per (order, rule) pair, so
// re-delivered completion signals do not double-count.
func OrderCompleted(svc usagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "usage service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload orderCompletedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied := make([]usagesvc.AppliedDiscount, 0, len(payload.Applied))
		for _, discount := range payload.Applied {
			applied = append(applied, usagesvc.AppliedDiscount{
				RuleID: discount.RuleID,
				Amount: discount.Amount,
			})
		}

		svc.RecordOrderCompletion(r.Context(), orderID, applied)

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "recorded"})
	}
}
