package types

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/priceworks/discount-engine/pkg/enums"
)

// RuleFilters describes which products a rule targets. An empty value is
// treated as apply-to-all by callers; a present but unknown apply_to is not.
type RuleFilters struct {
	ApplyTo          enums.FilterScope  `json:"apply_to,omitempty"`
	SelectedProducts []uuid.UUID        `json:"selected_products,omitempty"`
	FilterMethod     enums.FilterMethod `json:"filter_method,omitempty"`
}

// IsEmpty reports whether no filter data is present at all.
func (f RuleFilters) IsEmpty() bool {
	return f.ApplyTo == "" && len(f.SelectedProducts) == 0 && f.FilterMethod == ""
}

// HasProduct reports whether the product id is in the selected set.
func (f RuleFilters) HasProduct(productID uuid.UUID) bool {
	for _, candidate := range f.SelectedProducts {
		if candidate == productID {
			return true
		}
	}
	return false
}

// DecodeRuleFilters parses serialized filters. Malformed input degrades to
// the empty (maximally permissive) value instead of erroring.
func DecodeRuleFilters(raw string) RuleFilters {
	if strings.TrimSpace(raw) == "" {
		return RuleFilters{}
	}
	var filters RuleFilters
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return RuleFilters{}
	}
	return filters
}

// Encode serializes the filters for storage.
func (f RuleFilters) Encode() string {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}"
	}
	return string(data)
}
