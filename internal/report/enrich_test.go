package report

import (
	"math"
	"testing"

	"posreports/backend/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEnrichDerivesDiscountAndTax(t *testing.T) {
	row := Enrich(domain.OrderLineRow{
		Quantity:     3,
		ListPrice:    100,
		UnitPrice:    90,
		SubtotalExcl: 270,
		SubtotalIncl: 297,
	}, "en_US", domain.DiscountPolicyFloor)

	if !almostEqual(row.UnitDiscount, 10) {
		t.Fatalf("expected unit discount 10, got %v", row.UnitDiscount)
	}
	if !almostEqual(row.DiscountAmount, 30) {
		t.Fatalf("expected discount amount 30, got %v", row.DiscountAmount)
	}
	if !almostEqual(row.TaxAmount, 27) {
		t.Fatalf("expected tax 27, got %v", row.TaxAmount)
	}
}

func TestEnrichFloorsNegativeDiscountByDefault(t *testing.T) {
	base := domain.OrderLineRow{Quantity: 2, ListPrice: 50, UnitPrice: 55}

	floored := Enrich(base, "en_US", domain.DiscountPolicyFloor)
	if floored.DiscountAmount != 0 {
		t.Fatalf("expected floored discount 0, got %v", floored.DiscountAmount)
	}
	if !almostEqual(floored.UnitDiscount, -5) {
		t.Fatalf("unit discount should stay signed, got %v", floored.UnitDiscount)
	}

	signed := Enrich(base, "en_US", domain.DiscountPolicySigned)
	if !almostEqual(signed.DiscountAmount, -10) {
		t.Fatalf("expected signed discount -10, got %v", signed.DiscountAmount)
	}
}

func TestEnrichResolvesLocalizedNames(t *testing.T) {
	row := Enrich(domain.OrderLineRow{
		Quantity:  1,
		ListPrice: 40,
		UnitPrice: 40,
		ProductName: domain.LocalizedText{
			"en_US": "Jasmine Tea",
			"id_ID": "Teh Melati",
		},
		PricelistName: domain.LocalizedText{"en_US": "Retail"},
	}, "id_ID", domain.DiscountPolicyFloor)

	want := "Teh Melati (40.00->40.00 x 1.00)"
	if row.ProductDisplay != want {
		t.Fatalf("expected %q, got %q", want, row.ProductDisplay)
	}
	// id_ID missing on the pricelist: falls back to the first non-empty locale.
	if row.PricelistDisplay != "Retail" {
		t.Fatalf("expected pricelist fallback Retail, got %q", row.PricelistDisplay)
	}
}

func TestEnrichMissingProductNameLeavesDisplayEmpty(t *testing.T) {
	row := Enrich(domain.OrderLineRow{Quantity: 1}, "en_US", domain.DiscountPolicyFloor)
	if row.ProductDisplay != "" {
		t.Fatalf("expected empty product display, got %q", row.ProductDisplay)
	}
}
