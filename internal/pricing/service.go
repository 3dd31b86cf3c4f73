package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
	"github.com/priceworks/discount-engine/pkg/logger"
	"github.com/priceworks/discount-engine/pkg/metrics"
)

// RuleSource supplies decoded active rules in ascending priority order.
type RuleSource interface {
	ActiveRules(ctx context.Context) ([]rules.Rule, error)
}

// SettingsSource supplies the calculation settings with defaults applied.
type SettingsSource interface {
	CalculateFrom(ctx context.Context) enums.PriceBasis
	ApplyProductDiscountTo(ctx context.Context) enums.ApplyMethod
	ShowBulkTable(ctx context.Context) bool
}

// Service is the calculation surface exposed to transport and display
// collaborators. Calculations never fail: store errors degrade to "no
// applicable rules" so checkout is never blocked by the discount engine.
type Service interface {
	CartDiscounts(ctx context.Context, items []CartItem, now time.Time) []DiscountResult
	ProductPrice(ctx context.Context, input ProductPriceInput, now time.Time) decimal.Decimal
	ProductOnSale(ctx context.Context, productID uuid.UUID, now time.Time) bool
	BulkTable(ctx context.Context, productID uuid.UUID, price decimal.Decimal, now time.Time) []BulkTableRow
}

type service struct {
	ruleSource RuleSource
	settings   SettingsSource
	matcher    *Matcher
	engine     *Engine
	logg       *logger.Logger
	calc       *metrics.CalculationMetrics
}

// Options tunes calculation behavior.
type Options struct {
	// EnforceUsageLimits excludes rules whose usage limit is exhausted.
	EnforceUsageLimits bool
	// Metrics may be nil; recording becomes a no-op.
	Metrics *metrics.CalculationMetrics
}

// NewService constructs the pricing service.
func NewService(ruleSource RuleSource, settings SettingsSource, logg *logger.Logger, opts Options) (Service, error) {
	if ruleSource == nil {
		return nil, fmt.Errorf("rule source required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		ruleSource: ruleSource,
		settings:   settings,
		matcher:    NewMatcher(opts.EnforceUsageLimits),
		engine:     NewEngine(),
		logg:       logg,
		calc:       opts.Metrics,
	}, nil
}

// CartDiscounts evaluates every active rule against the cart and reduces the
// applicable ones to the effective discount list.
func (s *service) CartDiscounts(ctx context.Context, items []CartItem, now time.Time) []DiscountResult {
	started := time.Now()
	defer func() { s.calc.ObserveDuration("cart", time.Since(started)) }()

	activeRules := s.loadRules(ctx)
	if len(activeRules) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(activeRules))
	for _, rule := range activeRules {
		if !s.matcher.AppliesToCart(rule, items, now) {
			s.calc.IncSkipped("not_applicable")
			continue
		}
		amount := s.engine.CartDiscount(rule, items)
		if !amount.IsPositive() {
			s.calc.IncSkipped("zero_amount")
			continue
		}
		candidates = append(candidates, Candidate{Rule: rule, Amount: amount})
	}

	effective := Reduce(s.settings.ApplyProductDiscountTo(ctx), candidates)
	results := make([]DiscountResult, 0, len(effective))
	for _, candidate := range effective {
		s.calc.IncApplied(candidate.Rule.DiscountType.String())
		results = append(results, DiscountResult{
			RuleID:         candidate.Rule.ID,
			RuleTitle:      candidate.Rule.Title,
			DiscountType:   candidate.Rule.DiscountType,
			DiscountAmount: candidate.Amount,
		})
	}
	return results
}

// ProductPrice computes the displayed price for a single product and
// quantity. A fixed rule returns its price directly, bypassing resolution;
// otherwise the best discount per the configured method is subtracted from
// the original price, floored at zero.
func (s *service) ProductPrice(ctx context.Context, input ProductPriceInput, now time.Time) decimal.Decimal {
	if !input.OriginalPrice.IsPositive() {
		return input.OriginalPrice
	}

	started := time.Now()
	defer func() { s.calc.ObserveDuration("product", time.Since(started)) }()

	activeRules := s.loadRules(ctx)
	if len(activeRules) == 0 {
		return input.OriginalPrice
	}

	basePrice := ResolveBasePrice(s.settings.CalculateFrom(ctx), input)

	candidates := make([]Candidate, 0, len(activeRules))
	for _, rule := range activeRules {
		if !s.matcher.AppliesToProduct(rule, input.ProductID, now) {
			s.calc.IncSkipped("not_applicable")
			continue
		}

		amount, finalPrice := s.engine.ProductDiscount(rule, input.OriginalPrice, basePrice, input.Quantity)
		if finalPrice != nil {
			s.calc.IncApplied(rule.DiscountType.String())
			return *finalPrice
		}
		if !amount.IsPositive() {
			s.calc.IncSkipped("zero_amount")
			continue
		}
		candidates = append(candidates, Candidate{Rule: rule, Amount: amount})
	}

	effective := Reduce(s.settings.ApplyProductDiscountTo(ctx), candidates)
	if len(effective) == 0 {
		return input.OriginalPrice
	}
	// a multi-result method still yields a single display price: the first
	// effective candidate decides it
	best := effective[0]
	s.calc.IncApplied(best.Rule.DiscountType.String())
	return decimal.Max(decimal.Zero, input.OriginalPrice.Sub(best.Amount))
}

// ProductOnSale reports whether any active rule currently targets the
// product, for badge and table visibility decisions.
func (s *service) ProductOnSale(ctx context.Context, productID uuid.UUID, now time.Time) bool {
	for _, rule := range s.loadRules(ctx) {
		if s.matcher.AppliesToProduct(rule, productID, now) {
			return true
		}
	}
	return false
}

// BulkTable returns the tier rows to display for a product, or nil when the
// table is disabled or no bulk rule targets the product.
func (s *service) BulkTable(ctx context.Context, productID uuid.UUID, price decimal.Decimal, now time.Time) []BulkTableRow {
	if !s.settings.ShowBulkTable(ctx) {
		return nil
	}

	var tableRows []BulkTableRow
	for _, rule := range s.loadRules(ctx) {
		if rule.DiscountType != enums.DiscountTypeBulk {
			continue
		}
		if !s.matcher.AppliesToProduct(rule, productID, now) {
			continue
		}
		for _, tier := range rule.Conditions.BulkRanges {
			discount := price.Mul(tier.Discount).Div(hundred)
			tableRows = append(tableRows, BulkTableRow{
				MinQuantity:     tier.Min,
				MaxQuantity:     tier.Max,
				DiscountPercent: tier.Discount,
				Price:           price.Sub(discount),
			})
		}
	}
	return tableRows
}

// loadRules fetches active rules; a store failure degrades to an empty list
// so price computation proceeds without discounts.
func (s *service) loadRules(ctx context.Context) []rules.Rule {
	activeRules, err := s.ruleSource.ActiveRules(ctx)
	if err != nil {
		s.logg.Error(ctx, "loading active rules failed, computing without discounts", err)
		return nil
	}
	return activeRules
}
