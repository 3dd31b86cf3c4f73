package enums

import "fmt"

// RuleStatus tracks whether a rule participates in evaluation.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)

var validRuleStatuses = []RuleStatus{
	RuleStatusActive,
	RuleStatusInactive,
}

// String implements fmt.Stringer.
func (r RuleStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RuleStatus.
func (r RuleStatus) IsValid() bool {
	for _, candidate := range validRuleStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRuleStatus converts raw input into a RuleStatus.
func ParseRuleStatus(value string) (RuleStatus, error) {
	for _, candidate := range validRuleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rule status %q", value)
}
