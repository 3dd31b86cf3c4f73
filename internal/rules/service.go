package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/priceworks/discount-engine/pkg/db/models"
	"github.com/priceworks/discount-engine/pkg/enums"
	pkgerrors "github.com/priceworks/discount-engine/pkg/errors"
	"github.com/priceworks/discount-engine/pkg/pagination"
	"github.com/priceworks/discount-engine/pkg/types"
)

const defaultPriority = 10

var maxPercent = decimal.NewFromInt(100)

// Service exposes discount rule management operations.
type Service interface {
	ListRules(ctx context.Context, params pagination.Params) (*RuleListResult, error)
	GetRule(ctx context.Context, id uuid.UUID) (*Rule, error)
	CreateRule(ctx context.Context, input CreateRuleInput) (*Rule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*Rule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ActiveRules(ctx context.Context) ([]Rule, error)
	ListRuleUsage(ctx context.Context, id uuid.UUID) ([]RuleUsage, error)
}

// CreateRuleInput holds the validated payload to create a rule.
type CreateRuleInput struct {
	Title         string
	Description   *string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	Conditions    types.RuleConditions
	Filters       types.RuleFilters
	UsageLimit    *int
	Priority      *int
	Status        enums.RuleStatus
}

// UpdateRuleInput holds optional mutation values for a rule.
type UpdateRuleInput struct {
	Title         *string
	Description   *string
	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	Conditions    *types.RuleConditions
	Filters       *types.RuleFilters
	UsageLimit    *int
	Priority      *int
	Status        *enums.RuleStatus
}

type service struct {
	repo *Repository
}

// NewService constructs a rule service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	return &service{repo: repo}, nil
}

// ListRules returns a page of rules.
func (s *service) ListRules(ctx context.Context, params pagination.Params) (*RuleListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list rules")
	}
	return &RuleListResult{
		Rules:      FromModels(rows),
		NextCursor: nextCursor,
	}, nil
}

// GetRule loads a single rule.
func (s *service) GetRule(ctx context.Context, id uuid.UUID) (*Rule, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rule")
	}
	rule := FromModel(row)
	return &rule, nil
}

// CreateRule validates and persists a new rule.
func (s *service) CreateRule(ctx context.Context, input CreateRuleInput) (*Rule, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount_type")
	}
	if err := validateDiscountValue(input.DiscountType, input.DiscountValue); err != nil {
		return nil, err
	}
	if input.UsageLimit != nil && *input.UsageLimit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage_limit cannot be negative")
	}

	status := input.Status
	if status == "" {
		status = enums.RuleStatusActive
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	priority := defaultPriority
	if input.Priority != nil {
		priority = *input.Priority
	}

	row := &models.Rule{
		Title:         input.Title,
		Description:   input.Description,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		Conditions:    input.Conditions.Encode(),
		Filters:       input.Filters.Encode(),
		UsageLimit:    input.UsageLimit,
		Priority:      priority,
		Status:        status,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert rule")
	}

	rule := FromModel(created)
	return &rule, nil
}

// UpdateRule applies the provided changes to an existing rule.
func (s *service) UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*Rule, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rule")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		row.Title = *input.Title
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.DiscountType != nil {
		if !input.DiscountType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount_type")
		}
		row.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		row.DiscountValue = *input.DiscountValue
	}
	if err := validateDiscountValue(row.DiscountType, row.DiscountValue); err != nil {
		return nil, err
	}
	if input.Conditions != nil {
		row.Conditions = input.Conditions.Encode()
	}
	if input.Filters != nil {
		row.Filters = input.Filters.Encode()
	}
	if input.UsageLimit != nil {
		if *input.UsageLimit < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage_limit cannot be negative")
		}
		row.UsageLimit = input.UsageLimit
	}
	if input.Priority != nil {
		row.Priority = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		row.Status = *input.Status
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update rule")
	}

	rule := FromModel(updated)
	return &rule, nil
}

// DeleteRule removes a rule.
func (s *service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete rule")
	}
	return nil
}

// ListRuleUsage returns the audit entries recorded for a rule, newest first.
// The rule itself may already be deleted; its history remains listable.
func (s *service) ListRuleUsage(ctx context.Context, id uuid.UUID) ([]RuleUsage, error) {
	rows, err := s.repo.ListUsageByRule(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list rule usage")
	}
	return FromUsageModels(rows), nil
}

// ActiveRules returns decoded active rules in evaluation order.
func (s *service) ActiveRules(ctx context.Context) ([]Rule, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active rules")
	}
	return FromModels(rows), nil
}

func validateDiscountValue(discountType enums.DiscountType, value decimal.Decimal) error {
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_value cannot be negative")
	}
	switch discountType {
	case enums.DiscountTypePercentage, enums.DiscountTypeCartPercentage:
		if value.GreaterThan(maxPercent) {
			return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
		}
	}
	return nil
}
