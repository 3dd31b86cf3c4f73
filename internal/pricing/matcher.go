package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
	"github.com/priceworks/discount-engine/pkg/types"
)

// Matcher decides whether a rule applies to a cart or a single product.
type Matcher struct {
	// enforceUsageLimits excludes rules whose usage_limit is exhausted.
	// The reference behavior never checked this, so it defaults off.
	enforceUsageLimits bool
}

// NewMatcher constructs a Matcher.
func NewMatcher(enforceUsageLimits bool) *Matcher {
	return &Matcher{enforceUsageLimits: enforceUsageLimits}
}

// AppliesToCart reports whether the rule's date window, cart thresholds, and
// product filters are all satisfied by the cart.
func (m *Matcher) AppliesToCart(rule rules.Rule, items []CartItem, now time.Time) bool {
	if !rule.IsActive() {
		return false
	}
	if m.enforceUsageLimits && rule.UsageExhausted() {
		return false
	}
	if !withinDateWindow(rule.Conditions, now) {
		return false
	}
	if !meetsCartThresholds(rule.Conditions, items) {
		return false
	}
	return cartMatchesFilter(rule.Filters, items)
}

// AppliesToProduct reports whether the rule applies to a single product.
// Cart thresholds are not evaluated: there is no cart to test against.
func (m *Matcher) AppliesToProduct(rule rules.Rule, productID uuid.UUID, now time.Time) bool {
	if !rule.IsActive() {
		return false
	}
	if m.enforceUsageLimits && rule.UsageExhausted() {
		return false
	}
	if !withinDateWindow(rule.Conditions, now) {
		return false
	}
	if rule.Filters.IsEmpty() {
		return true
	}
	return ItemMatchesFilter(productID, rule.Filters)
}

// ItemMatchesFilter applies the per-product filter test. A present but
// unknown apply_to never matches; the permissive empty-filters default is
// the caller's responsibility (checked via IsEmpty before this call).
func ItemMatchesFilter(productID uuid.UUID, filters types.RuleFilters) bool {
	switch filters.ApplyTo {
	case enums.FilterScopeAllProducts:
		return true
	case enums.FilterScopeSpecificProducts:
		inList := filters.HasProduct(productID)
		if filters.FilterMethod == enums.FilterMethodExclude {
			return !inList
		}
		return inList
	default:
		return false
	}
}

func withinDateWindow(conditions types.RuleConditions, now time.Time) bool {
	if from := conditions.DateFrom; from != nil && !from.IsZero() && now.Before(from.Time) {
		return false
	}
	if to := conditions.DateTo; to != nil && !to.IsZero() && now.After(to.Time) {
		return false
	}
	return true
}

func meetsCartThresholds(conditions types.RuleConditions, items []CartItem) bool {
	if min := conditions.MinSubtotal; min != nil && min.IsPositive() {
		if cartSubtotal(items).LessThan(*min) {
			return false
		}
	}
	if min := conditions.MinQuantity; min != nil && *min > 0 {
		if cartQuantity(items) < *min {
			return false
		}
	}
	return true
}

// cartMatchesFilter is existential: one matching item is enough.
func cartMatchesFilter(filters types.RuleFilters, items []CartItem) bool {
	if filters.IsEmpty() {
		return true
	}
	if filters.ApplyTo == enums.FilterScopeAllProducts {
		return true
	}
	for _, item := range items {
		if ItemMatchesFilter(item.ProductID, filters) {
			return true
		}
	}
	return false
}

func cartSubtotal(items []CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	return subtotal
}

func cartQuantity(items []CartItem) int {
	quantity := 0
	for _, item := range items {
		quantity += item.Quantity
	}
	return quantity
}
