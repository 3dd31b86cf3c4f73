package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BulkRange is a single quantity tier of a bulk rule. Tier order is
// significant: the first matching tier wins, so ranges must round-trip
// through JSON without reordering. Max nil or zero means unbounded.
type BulkRange struct {
	Min      int             `json:"min"`
	Max      *int            `json:"max"`
	Discount decimal.Decimal `json:"discount"`
}

// Contains reports whether the quantity falls inside the tier.
func (r BulkRange) Contains(qty int) bool {
	if qty < r.Min {
		return false
	}
	return r.Max == nil || *r.Max == 0 || qty <= *r.Max
}

// RuleTime is a timestamp parsed leniently from rule condition JSON.
// Unparseable or non-string values decode as unset rather than erroring.
type RuleTime struct {
	time.Time
}

var ruleTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *RuleTime) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range ruleTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t RuleTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// RuleConditions holds the optional gating thresholds of a rule plus the
// bulk tiers for bulk-type rules.
type RuleConditions struct {
	DateFrom    *RuleTime        `json:"date_from,omitempty"`
	DateTo      *RuleTime        `json:"date_to,omitempty"`
	MinSubtotal *decimal.Decimal `json:"min_subtotal,omitempty"`
	MinQuantity *int             `json:"min_quantity,omitempty"`
	BulkRanges  []BulkRange      `json:"bulk_ranges,omitempty"`
}

// DecodeRuleConditions parses serialized conditions. Malformed input degrades
// to the empty (maximally permissive) value instead of erroring.
func DecodeRuleConditions(raw string) RuleConditions {
	if strings.TrimSpace(raw) == "" {
		return RuleConditions{}
	}
	var conditions RuleConditions
	if err := json.Unmarshal([]byte(raw), &conditions); err != nil {
		return RuleConditions{}
	}
	return conditions
}

// Encode serializes the conditions for storage.
func (c RuleConditions) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(data)
}
