package usage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/pkg/db/models"
	"github.com/priceworks/discount-engine/pkg/logger"
)

// AppliedDiscount names a rule that contributed a discount to an order.
type AppliedDiscount struct {
	RuleID uuid.UUID
	Amount decimal.Decimal
}

// RuleStore is the usage-facing slice of the rule repository. RecordUsage
// must apply the counter increment and the audit row atomically: a partial
// write would leave the counter ahead of the audit trail.
type RuleStore interface {
	RecordUsage(ctx context.Context, usage *models.RuleUsage) error
}

// Service records rule usage when orders complete. Recording is best-effort:
// failures are logged and never propagate, so order completion is never
// blocked by usage accounting.
type Service interface {
	RecordOrderCompletion(ctx context.Context, orderID uuid.UUID, applied []AppliedDiscount)
}

type service struct {
	store RuleStore
	guard *Guard
	logg  *logger.Logger
}

// NewService constructs the usage accounting service.
func NewService(store RuleStore, guard *Guard, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("rule store required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store: store,
		guard: guard,
		logg:  logg,
	}, nil
}

// RecordOrderCompletion increments usage_count once per applied rule for the
// order and writes the audit rows. Re-delivered completion signals are
// detected via the guard and skipped.
func (s *service) RecordOrderCompletion(ctx context.Context, orderID uuid.UUID, applied []AppliedDiscount) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	for _, discount := range applied {
		ruleCtx := s.logg.WithRuleID(ctx, discount.RuleID.String())

		seen, err := s.guard.CheckAndMark(ctx, orderID, discount.RuleID)
		if err != nil {
			// guard unavailable: record anyway, duplicates beat lost counts
			s.logg.Error(ruleCtx, "usage idempotency guard unavailable, recording without it", err)
		} else if seen {
			s.logg.Info(ruleCtx, "usage already recorded for order, skipping")
			continue
		}

		// the store write is a single transaction, so a failure here left
		// nothing behind and releasing the guard lets a retry record cleanly
		if err := s.record(ctx, orderID, discount); err != nil {
			s.logg.Error(ruleCtx, "recording rule usage failed", err)
			if releaseErr := s.guard.Release(ctx, orderID, discount.RuleID); releaseErr != nil {
				s.logg.Error(ruleCtx, "releasing usage guard failed", releaseErr)
			}
		}
	}
}

func (s *service) record(ctx context.Context, orderID uuid.UUID, discount AppliedDiscount) error {
	if err := s.store.RecordUsage(ctx, &models.RuleUsage{
		RuleID:         discount.RuleID,
		OrderID:        orderID,
		DiscountAmount: discount.Amount,
	}); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}
