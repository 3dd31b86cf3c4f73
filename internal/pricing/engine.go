package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
	"github.com/priceworks/discount-engine/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Engine computes the discount magnitude for a rule already known to apply.
type Engine struct{}

// NewEngine constructs an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CartDiscount computes the discount a rule contributes against a cart.
// Percentage and bulk rules discount only the filter-matching share of the
// cart; the cart-wide kinds ignore filters entirely.
func (e *Engine) CartDiscount(rule rules.Rule, items []CartItem) decimal.Decimal {
	spec := SpecFor(rule)

	switch spec.Kind {
	case enums.DiscountTypePercentage:
		return matchingSubtotal(rule.Filters, items).Mul(spec.Value).Div(hundred)
	case enums.DiscountTypeFixed:
		// flat deduction, once per cart
		return spec.Value
	case enums.DiscountTypeBulk:
		tier, ok := spec.TierFor(matchingQuantity(rule.Filters, items))
		if !ok || !tier.Discount.IsPositive() {
			return decimal.Zero
		}
		return matchingSubtotal(rule.Filters, items).Mul(tier.Discount).Div(hundred)
	case enums.DiscountTypeCartPercentage:
		return cartSubtotal(items).Mul(spec.Value).Div(hundred)
	case enums.DiscountTypeCartFixed:
		return spec.Value
	default:
		return decimal.Zero
	}
}

// ProductDiscount computes the discount a rule contributes against a single
// product. Discounts are computed against basePrice but expressed as a delta
// from originalPrice; when the two differ the delta absorbs the difference.
//
// Fixed rules do not return a discount: they short-circuit with the final
// price directly (max(0, base - value)), bypassing resolution entirely. The
// second return is non-nil in that case.
func (e *Engine) ProductDiscount(rule rules.Rule, originalPrice, basePrice decimal.Decimal, quantity int) (decimal.Decimal, *decimal.Decimal) {
	spec := SpecFor(rule)

	switch spec.Kind {
	case enums.DiscountTypePercentage:
		discounted := basePrice.Sub(basePrice.Mul(spec.Value).Div(hundred))
		return originalPrice.Sub(discounted), nil
	case enums.DiscountTypeFixed:
		final := decimal.Max(decimal.Zero, basePrice.Sub(spec.Value))
		return decimal.Zero, &final
	case enums.DiscountTypeBulk:
		tier, ok := spec.TierFor(quantity)
		if !ok || !tier.Discount.IsPositive() {
			return decimal.Zero, nil
		}
		tierDiscount := basePrice.Mul(tier.Discount).Div(hundred)
		return originalPrice.Sub(basePrice.Sub(tierDiscount)), nil
	default:
		// cart-wide kinds carry no per-product meaning
		return decimal.Zero, nil
	}
}

// ResolveBasePrice picks the price discounts are computed against, per the
// calculate_from setting. Sale price only wins when selected and present;
// missing prices fall through to the caller-supplied original.
func ResolveBasePrice(basis enums.PriceBasis, input ProductPriceInput) decimal.Decimal {
	if basis == enums.PriceBasisSale && input.SalePrice != nil && input.SalePrice.IsPositive() {
		return *input.SalePrice
	}
	if input.RegularPrice != nil && input.RegularPrice.IsPositive() {
		return *input.RegularPrice
	}
	return input.OriginalPrice
}

func matchingSubtotal(filters types.RuleFilters, items []CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		if filters.IsEmpty() || ItemMatchesFilter(item.ProductID, filters) {
			subtotal = subtotal.Add(item.LineTotal)
		}
	}
	return subtotal
}

func matchingQuantity(filters types.RuleFilters, items []CartItem) int {
	quantity := 0
	for _, item := range items {
		if filters.IsEmpty() || ItemMatchesFilter(item.ProductID, filters) {
			quantity += item.Quantity
		}
	}
	return quantity
}
