package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/api/responses"
	"github.com/priceworks/discount-engine/api/validators"
	rulesvc "github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
	pkgerrors "github.com/priceworks/discount-engine/pkg/errors"
	"github.com/priceworks/discount-engine/pkg/logger"
	"github.com/priceworks/discount-engine/pkg/pagination"
	"github.com/priceworks/discount-engine/pkg/types"
)

// ListRules returns a cursor-paginated page of rules, newest first.
func ListRules(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rule service unavailable"))
			return
		}

		params := pagination.Params{
			Cursor: r.URL.Query().Get("cursor"),
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
			params.Limit = limit
		}

		result, err := svc.ListRules(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRuleListResponse(result))
	}
}

// GetRule returns a single rule by id.
func GetRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rule service unavailable"))
			return
		}

		id, err := ruleIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.GetRule(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRuleResponse(*rule))
	}
}

// CreateRule persists a new discount rule.
func CreateRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rule service unavailable"))
			return
		}

		var payload createRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.CreateRule(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newRuleResponse(*rule))
	}
}

// UpdateRule applies a partial mutation to an existing rule.
func UpdateRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rule service unavailable"))
			return
		}

		id, err := ruleIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.UpdateRule(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRuleResponse(*rule))
	}
}

// DeleteRule removes a rule and its usage history.
func DeleteRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rule service unavailable"))
			return
		}

		id, err := ruleIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRule(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListRuleUsage returns the usage audit entries recorded for a rule. The
// history remains available after the rule is deleted.
func ListRuleUsage(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rule service unavailable"))
			return
		}

		id, err := ruleIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListRuleUsage(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := ruleUsageListResponse{
			RuleID:  id,
			Entries: make([]ruleUsageResponse, 0, len(entries)),
		}
		for _, entry := range entries {
			out.Entries = append(out.Entries, ruleUsageResponse{
				ID:             entry.ID,
				OrderID:        entry.OrderID,
				DiscountAmount: entry.DiscountAmount,
				CreatedAt:      entry.CreatedAt,
			})
		}

		responses.WriteSuccess(w, out)
	}
}

func ruleIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "ruleId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule id")
	}
	return id, nil
}

type createRuleRequest struct {
	Title         string                `json:"title" validate:"required"`
	Description   *string               `json:"description,omitempty"`
	DiscountType  string                `json:"discount_type" validate:"required"`
	DiscountValue decimal.Decimal       `json:"discount_value" validate:"required"`
	Conditions    *types.RuleConditions `json:"conditions,omitempty"`
	Filters       *types.RuleFilters    `json:"filters,omitempty"`
	UsageLimit    *int                  `json:"usage_limit,omitempty" validate:"omitempty,min=0"`
	Priority      *int                  `json:"priority,omitempty" validate:"omitempty,min=0"`
	Status        *string               `json:"status,omitempty"`
}

func (r createRuleRequest) toCreateInput() (rulesvc.CreateRuleInput, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(r.DiscountType))
	if err != nil {
		return rulesvc.CreateRuleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_type")
	}

	input := rulesvc.CreateRuleInput{
		Title:         strings.TrimSpace(r.Title),
		Description:   r.Description,
		DiscountType:  discountType,
		DiscountValue: r.DiscountValue,
		UsageLimit:    r.UsageLimit,
		Priority:      r.Priority,
	}
	if r.Conditions != nil {
		input.Conditions = *r.Conditions
	}
	if r.Filters != nil {
		input.Filters = *r.Filters
	}
	if r.Status != nil {
		status, err := enums.ParseRuleStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return rulesvc.CreateRuleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = status
	}
	return input, nil
}

type updateRuleRequest struct {
	Title         *string               `json:"title,omitempty"`
	Description   *string               `json:"description,omitempty"`
	DiscountType  *string               `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal      `json:"discount_value,omitempty"`
	Conditions    *types.RuleConditions `json:"conditions,omitempty"`
	Filters       *types.RuleFilters    `json:"filters,omitempty"`
	UsageLimit    *int                  `json:"usage_limit,omitempty" validate:"omitempty,min=0"`
	Priority      *int                  `json:"priority,omitempty" validate:"omitempty,min=0"`
	Status        *string               `json:"status,omitempty"`
}

func (r updateRuleRequest) toUpdateInput() (rulesvc.UpdateRuleInput, error) {
	input := rulesvc.UpdateRuleInput{
		Title:         r.Title,
		Description:   r.Description,
		DiscountValue: r.DiscountValue,
		Conditions:    r.Conditions,
		Filters:       r.Filters,
		UsageLimit:    r.UsageLimit,
		Priority:      r.Priority,
	}
	if r.DiscountType != nil {
		discountType, err := enums.ParseDiscountType(strings.TrimSpace(*r.DiscountType))
		if err != nil {
			return rulesvc.UpdateRuleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_type")
		}
		input.DiscountType = &discountType
	}
	if r.Status != nil {
		status, err := enums.ParseRuleStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return rulesvc.UpdateRuleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

type ruleResponse struct {
	ID            uuid.UUID            `json:"id"`
	Title         string               `json:"title"`
	Description   *string              `json:"description,omitempty"`
	DiscountType  enums.DiscountType   `json:"discount_type"`
	DiscountValue decimal.Decimal      `json:"discount_value"`
	Conditions    types.RuleConditions `json:"conditions"`
	Filters       types.RuleFilters    `json:"filters"`
	UsageLimit    *int                 `json:"usage_limit,omitempty"`
	UsageCount    int                  `json:"usage_count"`
	Priority      int                  `json:"priority"`
	Status        enums.RuleStatus     `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type ruleUsageResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ruleUsageListResponse struct {
	RuleID  uuid.UUID           `json:"rule_id"`
	Entries []ruleUsageResponse `json:"entries"`
}

type ruleListResponse struct {
	Rules      []ruleResponse `json:"rules"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func newRuleResponse(rule rulesvc.Rule) ruleResponse {
	return ruleResponse{
		ID:            rule.ID,
		Title:         rule.Title,
		Description:   rule.Description,
		DiscountType:  rule.DiscountType,
		DiscountValue: rule.DiscountValue,
		Conditions:    rule.Conditions,
		Filters:       rule.Filters,
		UsageLimit:    rule.UsageLimit,
		UsageCount:    rule.UsageCount,
		Priority:      rule.Priority,
		Status:        rule.Status,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}
}

func newRuleListResponse(result *rulesvc.RuleListResult) ruleListResponse {
	out := ruleListResponse{
		Rules:      make([]ruleResponse, 0, len(result.Rules)),
		NextCursor: result.NextCursor,
	}
	for _, rule := range result.Rules {
		out.Rules = append(out.Rules, newRuleResponse(rule))
	}
	return out
}
