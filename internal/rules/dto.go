package rules

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/pkg/db/models"
	"github.com/priceworks/discount-engine/pkg/enums"
	"github.com/priceworks/discount-engine/pkg/types"
)

// Rule is the decoded discount rule used by calculation paths. Conditions and
// filters are parsed exactly once when the row is loaded; malformed payloads
// decode to their zero values instead of erroring.
type Rule struct {
	ID            uuid.UUID
	Title         string
	Description   *string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	Conditions    types.RuleConditions
	Filters       types.RuleFilters
	UsageLimit    *int
	UsageCount    int
	Priority      int
	Status        enums.RuleStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the rule is enabled.
func (r Rule) IsActive() bool {
	return r.Status == enums.RuleStatusActive
}

// UsageExhausted reports whether a usage limit exists and has been reached.
func (r Rule) UsageExhausted() bool {
	return r.UsageLimit != nil && *r.UsageLimit > 0 && r.UsageCount >= *r.UsageLimit
}

// RuleUsage is one audit entry of a discount applied to a completed order.
type RuleUsage struct {
	ID             uuid.UUID
	RuleID         uuid.UUID
	OrderID        uuid.UUID
	DiscountAmount decimal.Decimal
	CreatedAt      time.Time
}

// FromUsageModels maps persisted audit rows, preserving order.
func FromUsageModels(rows []models.RuleUsage) []RuleUsage {
	out := make([]RuleUsage, 0, len(rows))
	for _, row := range rows {
		out = append(out, RuleUsage{
			ID:             row.ID,
			RuleID:         row.RuleID,
			OrderID:        row.OrderID,
			DiscountAmount: row.DiscountAmount,
			CreatedAt:      row.CreatedAt,
		})
	}
	return out
}

// FromModel decodes a persisted rule row into the calculation DTO.
func FromModel(row *models.Rule) Rule {
	return Rule{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		DiscountType:  row.DiscountType,
		DiscountValue: row.DiscountValue,
		Conditions:    types.DecodeRuleConditions(row.Conditions),
		Filters:       types.DecodeRuleFilters(row.Filters),
		UsageLimit:    row.UsageLimit,
		UsageCount:    row.UsageCount,
		Priority:      row.Priority,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// FromModels decodes rule rows preserving their order.
func FromModels(rows []models.Rule) []Rule {
	decoded := make([]Rule, 0, len(rows))
	for i := range rows {
		decoded = append(decoded, FromModel(&rows[i]))
	}
	return decoded
}

// RuleListResult is a page of rules plus the cursor for the next page.
type RuleListResult struct {
	Rules      []Rule
	NextCursor string
}
