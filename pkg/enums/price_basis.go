package enums

import "fmt"

// PriceBasis selects which catalog price a discount is computed against.
type PriceBasis string

const (
	PriceBasisRegular PriceBasis = "regular_price"
	PriceBasisSale    PriceBasis = "sale_price"
)

var validPriceBases = []PriceBasis{
	PriceBasisRegular,
	PriceBasisSale,
}

// String implements fmt.Stringer.
func (p PriceBasis) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceBasis.
func (p PriceBasis) IsValid() bool {
	for _, candidate := range validPriceBases {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceBasis converts raw input into a PriceBasis.
func ParsePriceBasis(value string) (PriceBasis, error) {
	for _, candidate := range validPriceBases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price basis %q", value)
}
