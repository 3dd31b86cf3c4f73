package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
)

// Candidate pairs an applicable rule with its computed discount.
type Candidate struct {
	Rule   rules.Rule
	Amount decimal.Decimal
}

// Reduce selects the effective discount(s) from candidates already ordered
// by ascending rule priority. Ties keep the first candidate encountered, so
// equal amounts resolve to the higher-priority rule deterministically.
func Reduce(method enums.ApplyMethod, candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	switch method {
	case enums.ApplyMethodLowestDiscount:
		best := candidates[0]
		for _, candidate := range candidates[1:] {
			if candidate.Amount.LessThan(best.Amount) {
				best = candidate
			}
		}
		return []Candidate{best}
	case enums.ApplyMethodFirst:
		return candidates[:1]
	case enums.ApplyMethodAll:
		return candidates
	default:
		// biggest_discount, also the fallback for unknown methods
		best := candidates[0]
		for _, candidate := range candidates[1:] {
			if candidate.Amount.GreaterThan(best.Amount) {
				best = candidate
			}
		}
		return []Candidate{best}
	}
}
