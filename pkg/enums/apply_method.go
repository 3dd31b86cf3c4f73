package enums

import "fmt"

// ApplyMethod decides how to reduce multiple applicable rules to the
// effective discount(s).
type ApplyMethod string

const (
	ApplyMethodBiggestDiscount ApplyMethod = "biggest_discount"
	ApplyMethodLowestDiscount  ApplyMethod = "lowest_discount"
	ApplyMethodFirst           ApplyMethod = "first"
	ApplyMethodAll             ApplyMethod = "all"
)

var validApplyMethods = []ApplyMethod{
	ApplyMethodBiggestDiscount,
	ApplyMethodLowestDiscount,
	ApplyMethodFirst,
	ApplyMethodAll,
}

// String implements fmt.Stringer.
func (a ApplyMethod) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ApplyMethod.
func (a ApplyMethod) IsValid() bool {
	for _, candidate := range validApplyMethods {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApplyMethod converts raw input into an ApplyMethod.
func ParseApplyMethod(value string) (ApplyMethod, error) {
	for _, candidate := range validApplyMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid apply method %q", value)
}
