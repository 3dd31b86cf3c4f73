package types

import (
	"testing"

	"github.com/google/uuid"

	"github.com/priceworks/discount-engine/pkg/enums"
)

func TestDecodeRuleFilters(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	raw := `{"apply_to":"specific_products","selected_products":["` + productID.String() + `"],"filter_method":"include"}`
	filters := DecodeRuleFilters(raw)
	if filters.ApplyTo != enums.FilterScopeSpecificProducts {
		t.Fatalf("unexpected apply_to: %s", filters.ApplyTo)
	}
	if !filters.HasProduct(productID) {
		t.Fatalf("expected product in selected set")
	}
	if filters.HasProduct(uuid.New()) {
		t.Fatalf("unexpected product match")
	}
}

func TestDecodeRuleFiltersMalformedDegradesToEmpty(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "garbage", `{"selected_products":["not-a-uuid"]}`} {
		filters := DecodeRuleFilters(raw)
		if !filters.IsEmpty() {
			t.Fatalf("expected empty filters for %q, got %+v", raw, filters)
		}
	}
}

func TestRuleFiltersIsEmpty(t *testing.T) {
	t.Parallel()

	if !(RuleFilters{}).IsEmpty() {
		t.Fatalf("zero value should be empty")
	}
	if (RuleFilters{ApplyTo: enums.FilterScopeAllProducts}).IsEmpty() {
		t.Fatalf("apply_to set should not be empty")
	}
}
