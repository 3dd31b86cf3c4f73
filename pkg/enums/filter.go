package enums

import "fmt"

// FilterScope controls which products a rule targets.
type FilterScope string

const (
	FilterScopeAllProducts      FilterScope = "all_products"
	FilterScopeSpecificProducts FilterScope = "specific_products"
)

var validFilterScopes = []FilterScope{
	FilterScopeAllProducts,
	FilterScopeSpecificProducts,
}

// String implements fmt.Stringer.
func (f FilterScope) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FilterScope.
func (f FilterScope) IsValid() bool {
	for _, candidate := range validFilterScopes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFilterScope converts raw input into a FilterScope.
func ParseFilterScope(value string) (FilterScope, error) {
	for _, candidate := range validFilterScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid filter scope %q", value)
}

// FilterMethod flips product selection between an allow list and a deny list.
type FilterMethod string

const (
	FilterMethodInclude FilterMethod = "include"
	FilterMethodExclude FilterMethod = "exclude"
)

var validFilterMethods = []FilterMethod{
	FilterMethodInclude,
	FilterMethodExclude,
}

// String implements fmt.Stringer.
func (f FilterMethod) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FilterMethod.
func (f FilterMethod) IsValid() bool {
	for _, candidate := range validFilterMethods {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFilterMethod converts raw input into a FilterMethod.
func ParseFilterMethod(value string) (FilterMethod, error) {
	for _, candidate := range validFilterMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid filter method %q", value)
}
