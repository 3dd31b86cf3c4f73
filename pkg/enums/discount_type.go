package enums

import "fmt"

// DiscountType selects the pricing algorithm a rule uses.
type DiscountType string

const (
	DiscountTypePercentage     DiscountType = "percentage"
	DiscountTypeFixed          DiscountType = "fixed"
	DiscountTypeBulk           DiscountType = "bulk"
	DiscountTypeCartPercentage DiscountType = "cart_percentage"
	DiscountTypeCartFixed      DiscountType = "cart_fixed"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFixed,
	DiscountTypeBulk,
	DiscountTypeCartPercentage,
	DiscountTypeCartFixed,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsCartWide reports whether the discount applies to the whole cart subtotal,
// ignoring product filters.
func (d DiscountType) IsCartWide() bool {
	return d == DiscountTypeCartPercentage || d == DiscountTypeCartFixed
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
