package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/pkg/enums"
)

// CartItem is the cart line consumed by calculation. LineTotal is quantity
// times unit price at evaluation time; the engine never recomputes it.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
	LineTotal decimal.Decimal
}

// DiscountResult is one effective discount produced by a cart calculation.
// Amounts are always non-negative.
type DiscountResult struct {
	RuleID         uuid.UUID
	RuleTitle      string
	DiscountType   enums.DiscountType
	DiscountAmount decimal.Decimal
}

// ProductPriceInput carries the price context for a single-product
// calculation. Sale and regular prices are optional; the base price
// resolution falls back to OriginalPrice when both are absent.
type ProductPriceInput struct {
	ProductID     uuid.UUID
	OriginalPrice decimal.Decimal
	SalePrice     *decimal.Decimal
	RegularPrice  *decimal.Decimal
	Quantity      int
}

// BulkTableRow is one quantity tier rendered on product pages.
type BulkTableRow struct {
	MinQuantity     int
	MaxQuantity     *int
	DiscountPercent decimal.Decimal
	Price           decimal.Decimal
}
