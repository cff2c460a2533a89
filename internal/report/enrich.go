package report

import (
	"fmt"

	"posreports/backend/internal/domain"
)

// Enrich computes the derived per-line metrics from the raw columns. It is a
// pure function: missing numeric inputs are already zero (the store COALESCEs
// nullable columns), so the arithmetic never sees a null.
//
// unit_discount = list - unit; discount_amount = unit_discount * qty, floored
// at zero under the "floor" policy; tax = incl - excl.
func Enrich(row domain.OrderLineRow, locale string, discountPolicy string) domain.OrderLineRow {
	row.UnitDiscount = row.ListPrice - row.UnitPrice

	discount := row.UnitDiscount * row.Quantity
	if discountPolicy != domain.DiscountPolicySigned && discount < 0 {
		discount = 0
	}
	row.DiscountAmount = discount

	row.TaxAmount = row.SubtotalIncl - row.SubtotalExcl

	name := row.ProductName.Resolve(locale)
	if name == "" {
		row.ProductDisplay = ""
	} else {
		row.ProductDisplay = fmt.Sprintf("%s (%.2f->%.2f x %.2f)", name, row.ListPrice, row.UnitPrice, row.Quantity)
	}
	row.PricelistDisplay = row.PricelistName.Resolve(locale)

	return row
}

// EnrichAll enriches a full row sequence in place order.
func EnrichAll(rows []domain.OrderLineRow, locale string, discountPolicy string) []domain.OrderLineRow {
	out := make([]domain.OrderLineRow, len(rows))
	for i, row := range rows {
		out[i] = Enrich(row, locale, discountPolicy)
	}
	return out
}
