package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
	"github.com/priceworks/discount-engine/pkg/types"
)

// DiscountSpec is the algorithm selector of a rule, resolved once per rule
// instead of re-branching on the raw type string at every calculation.
type DiscountSpec struct {
	Kind   enums.DiscountType
	Value  decimal.Decimal
	Ranges []types.BulkRange
}

// SpecFor builds the calculation spec for a rule. Bulk rules carry their
// tier list in declaration order; the other kinds carry the flat value.
func SpecFor(rule rules.Rule) DiscountSpec {
	spec := DiscountSpec{
		Kind:  rule.DiscountType,
		Value: rule.DiscountValue,
	}
	if rule.DiscountType == enums.DiscountTypeBulk {
		spec.Ranges = rule.Conditions.BulkRanges
	}
	return spec
}

// TierFor scans the ranges in order and returns the first tier containing
// the quantity. The second return is false when no tier matches.
func (s DiscountSpec) TierFor(quantity int) (types.BulkRange, bool) {
	for _, tier := range s.Ranges {
		if tier.Contains(quantity) {
			return tier, true
		}
	}
	return types.BulkRange{}, false
}
