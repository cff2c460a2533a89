// Package render turns a generated report result into its presentation
// surfaces: an HTML table fragment and a CSV export. Both surfaces are driven
// by the same per-shape column descriptors so they cannot drift apart.
package render

import (
	"fmt"
	"strconv"

	"posreports/backend/internal/domain"
)

// WalkInCustomer is the display label for orders without an attached customer.
// Substitution happens here, at presentation time, so the aggregator still
// sees the empty name and excludes it from the distinct-customer count.
const WalkInCustomer = "Walk-in Customer"

type SummaryPair struct {
	Label string
	Value string
}

// LineColumn describes one column of a line-level shape. Total is nil for
// columns that stay blank on the TOTALS row; Link is nil for plain text cells.
type LineColumn struct {
	Header string
	Value  func(domain.OrderLineRow) string
	Total  func(domain.ReportTotals) string
	Link   func(domain.OrderLineRow) string
}

// RollupColumn describes one column of the per-employee commission summary.
type RollupColumn struct {
	Header string
	Value  func(domain.EmployeeRollup) string
	Total  func(domain.ReportTotals) string
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Quantities format like money: two decimals in every surface.
func quantity(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func customerDisplay(row domain.OrderLineRow) string {
	if row.CustomerName == "" {
		return WalkInCustomer
	}
	return row.CustomerName
}

func orderLink(row domain.OrderLineRow) string {
	return fmt.Sprintf("/orders/%d", row.OrderID)
}

// SalesColumns is the full per-line sales shape.
var SalesColumns = []LineColumn{
	{
		Header: "Order Ref",
		Value:  func(r domain.OrderLineRow) string { return r.OrderReference },
		Link:   orderLink,
	},
	{
		Header: "Order Date",
		Value:  func(r domain.OrderLineRow) string { return r.OrderDate.Format(domain.DateLayout) },
	},
	{Header: "Customer", Value: customerDisplay},
	{Header: "Contact", Value: func(r domain.OrderLineRow) string { return r.Contact }},
	{Header: "Branch", Value: func(r domain.OrderLineRow) string { return r.BranchName }},
	{Header: "Session", Value: func(r domain.OrderLineRow) string { return r.SessionName }},
	{Header: "Cashier", Value: func(r domain.OrderLineRow) string { return r.CashierLogin }},
	{Header: "Employee", Value: func(r domain.OrderLineRow) string { return r.EmployeeName }},
	{Header: "Category", Value: func(r domain.OrderLineRow) string { return r.CategoryName }},
	{Header: "Product", Value: func(r domain.OrderLineRow) string { return r.ProductDisplay }},
	{Header: "Product Code", Value: func(r domain.OrderLineRow) string { return r.ProductCode }},
	{Header: "Pricelist", Value: func(r domain.OrderLineRow) string { return r.PricelistDisplay }},
	{
		Header: "Quantity",
		Value:  func(r domain.OrderLineRow) string { return quantity(r.Quantity) },
		Total:  func(t domain.ReportTotals) string { return quantity(t.Quantity) },
	},
	{Header: "Unit Price", Value: func(r domain.OrderLineRow) string { return money(r.UnitPrice) }},
	{Header: "List Price", Value: func(r domain.OrderLineRow) string { return money(r.ListPrice) }},
	{
		Header: "Discount",
		Value:  func(r domain.OrderLineRow) string { return money(r.DiscountAmount) },
		Total:  func(t domain.ReportTotals) string { return money(t.Discount) },
	},
	{Header: "Discount %", Value: func(r domain.OrderLineRow) string { return percent(r.DiscountPercent) }},
	{
		Header: "Subtotal (Excl. Tax)",
		Value:  func(r domain.OrderLineRow) string { return money(r.SubtotalExcl) },
		Total:  func(t domain.ReportTotals) string { return money(t.Subtotal) },
	},
	{
		Header: "Tax",
		Value:  func(r domain.OrderLineRow) string { return money(r.TaxAmount) },
		Total:  func(t domain.ReportTotals) string { return money(t.Tax) },
	},
	{
		Header: "Subtotal (Incl. Tax)",
		Value:  func(r domain.OrderLineRow) string { return money(r.SubtotalIncl) },
		Total:  func(t domain.ReportTotals) string { return money(t.Sales) },
	},
	{Header: "Order Total", Value: func(r domain.OrderLineRow) string { return money(r.OrderTotal) }},
}

// EmployeeDetailColumns is the commission drill-down: the employee is fixed,
// so the shape drops staff columns and keeps the sale economics.
var EmployeeDetailColumns = []LineColumn{
	{
		Header: "Order Ref",
		Value:  func(r domain.OrderLineRow) string { return r.OrderReference },
		Link:   orderLink,
	},
	{
		Header: "Order Date",
		Value:  func(r domain.OrderLineRow) string { return r.OrderDate.Format(domain.DateLayout) },
	},
	{Header: "Customer", Value: customerDisplay},
	{Header: "Product", Value: func(r domain.OrderLineRow) string { return r.ProductDisplay }},
	{
		Header: "Quantity",
		Value:  func(r domain.OrderLineRow) string { return quantity(r.Quantity) },
		Total:  func(t domain.ReportTotals) string { return quantity(t.Quantity) },
	},
	{Header: "Unit Price", Value: func(r domain.OrderLineRow) string { return money(r.UnitPrice) }},
	{
		Header: "Discount",
		Value:  func(r domain.OrderLineRow) string { return money(r.DiscountAmount) },
		Total:  func(t domain.ReportTotals) string { return money(t.Discount) },
	},
	{
		Header: "Tax",
		Value:  func(r domain.OrderLineRow) string { return money(r.TaxAmount) },
		Total:  func(t domain.ReportTotals) string { return money(t.Tax) },
	},
	{
		Header: "Subtotal (Incl. Tax)",
		Value:  func(r domain.OrderLineRow) string { return money(r.SubtotalIncl) },
		Total:  func(t domain.ReportTotals) string { return money(t.Sales) },
	},
}

// CommissionColumns is the per-employee rollup shape.
var CommissionColumns = []RollupColumn{
	{Header: "Employee", Value: func(r domain.EmployeeRollup) string { return r.EmployeeName }},
	{Header: "Barcode", Value: func(r domain.EmployeeRollup) string { return r.Barcode }},
	{Header: "Sale Target", Value: func(r domain.EmployeeRollup) string { return money(r.TargetAmount) }},
	{Header: "Commission Rate", Value: func(r domain.EmployeeRollup) string { return percent(r.CommissionRate) }},
	{
		Header: "Total Sales",
		Value:  func(r domain.EmployeeRollup) string { return money(r.TotalSales) },
		Total:  func(t domain.ReportTotals) string { return money(t.Sales) },
	},
	{
		Header: "Earned Commission",
		Value:  func(r domain.EmployeeRollup) string { return money(r.EarnedCommission) },
		Total:  func(t domain.ReportTotals) string { return money(t.Commission) },
	},
	{Header: "Achievement", Value: func(r domain.EmployeeRollup) string { return percent(r.AchievementRate) }},
}

// SalesSummary is the label/value block shown above the sales table and
// appended after the CSV detail rows.
func SalesSummary(t domain.ReportTotals) []SummaryPair {
	return []SummaryPair{
		{Label: "Total Orders", Value: strconv.Itoa(t.Orders)},
		{Label: "Total Customers", Value: strconv.Itoa(t.Customers)},
		{Label: "Total Quantity", Value: quantity(t.Quantity)},
		{Label: "Total Discount", Value: money(t.Discount)},
		{Label: "Subtotal (Excl. Tax)", Value: money(t.Subtotal)},
		{Label: "Total Tax", Value: money(t.Tax)},
		{Label: "Total Sales", Value: money(t.Sales)},
	}
}

func CommissionSummary(t domain.ReportTotals) []SummaryPair {
	return []SummaryPair{
		{Label: "Employees", Value: strconv.Itoa(t.Employees)},
		{Label: "Total Sales", Value: money(t.Sales)},
		{Label: "Total Commission", Value: money(t.Commission)},
	}
}

func EmployeeDetailSummary(t domain.ReportTotals) []SummaryPair {
	return []SummaryPair{
		{Label: "Total Orders", Value: strconv.Itoa(t.Orders)},
		{Label: "Total Quantity", Value: quantity(t.Quantity)},
		{Label: "Total Discount", Value: money(t.Discount)},
		{Label: "Total Tax", Value: money(t.Tax)},
		{Label: "Total Sales", Value: money(t.Sales)},
	}
}
