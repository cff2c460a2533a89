package render

import (
	"strings"
	"testing"
	"time"

	"posreports/backend/internal/domain"
)

func sampleSalesSession() *domain.ReportSession {
	date, _ := time.Parse(domain.DateLayout, "2024-01-10")
	return &domain.ReportSession{
		ID:    "rpt-test",
		Name:  "Sales Report 2024-01-01 to 2024-01-31",
		Shape: domain.ShapeSales,
		State: domain.SessionStateGenerated,
		Result: &domain.ReportResult{
			Lines: []domain.OrderLineRow{
				{
					OrderID: 101, OrderReference: "POS/0101", OrderDate: date,
					CustomerName: "Dewi Lestari", Quantity: 1, ListPrice: 100, UnitPrice: 90,
					DiscountAmount: 10, SubtotalExcl: 90, TaxAmount: 9, SubtotalIncl: 99,
					OrderTotal: 209, ProductDisplay: "Espresso (100.00->90.00 x 1.00)",
				},
				{
					OrderID: 103, OrderReference: "POS/0103", OrderDate: date,
					Quantity: 1, ListPrice: 50, UnitPrice: 55,
					SubtotalExcl: 55, TaxAmount: 5.5, SubtotalIncl: 60.5, OrderTotal: 60.5,
				},
			},
			Totals: domain.ReportTotals{
				Orders: 2, Customers: 1, Quantity: 2, Discount: 10,
				Subtotal: 145, Tax: 14.5, Sales: 159.5,
			},
		},
	}
}

func TestReportHTMLContainsTotalsRowFirst(t *testing.T) {
	html, err := ReportHTML(sampleSalesSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	totalsAt := strings.Index(html, "TOTALS")
	detailAt := strings.Index(html, "POS/0101")
	if totalsAt < 0 || detailAt < 0 {
		t.Fatalf("expected both TOTALS and detail rows, got:\n%s", html)
	}
	if totalsAt > detailAt {
		t.Fatal("TOTALS row must precede the detail rows")
	}
	if !strings.Contains(html, "font-weight:bold") {
		t.Fatal("TOTALS row must be bold")
	}
	if !strings.Contains(html, `<a href="/orders/101">POS/0101</a>`) {
		t.Fatal("order reference must link to the order")
	}
	if !strings.Contains(html, "<strong>Total Sales:</strong> 159.50") {
		t.Fatalf("summary must carry two-decimal totals, got:\n%s", html)
	}
}

func TestReportHTMLSubstitutesWalkInCustomer(t *testing.T) {
	html, err := ReportHTML(sampleSalesSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, WalkInCustomer) {
		t.Fatal("missing walk-in placeholder for the anonymous order")
	}
}

func TestReportHTMLEmptyResultShowsMessage(t *testing.T) {
	session := sampleSalesSession()
	session.Result = &domain.ReportResult{}

	html, err := ReportHTML(session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "No records found") {
		t.Fatalf("expected informational message, got:\n%s", html)
	}
	if strings.Contains(html, "<table") {
		t.Fatal("empty results must not render a table")
	}
}

func TestReportCSVLayout(t *testing.T) {
	payload, err := ReportCSV(sampleSalesSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(payload)
	lines := strings.Split(text, "\n")

	if !strings.HasPrefix(lines[0], "Order Ref,Order Date,Customer") {
		t.Fatalf("unexpected header row: %q", lines[0])
	}
	if !strings.Contains(lines[1], "POS/0101") {
		t.Fatalf("expected first detail row, got %q", lines[1])
	}
	// Blank separator record between the table and the summary block.
	if !strings.Contains(text, "\n\n") {
		t.Fatal("expected a blank line before the summary block")
	}
	if !strings.Contains(text, "Total Sales,159.50") {
		t.Fatalf("expected summary pair with two decimals, got:\n%s", text)
	}
	if !strings.Contains(text, "Total Orders,2") {
		t.Fatalf("expected order count in summary, got:\n%s", text)
	}
}

func TestQuantitiesFormatLikeMoney(t *testing.T) {
	session := sampleSalesSession()

	payload, err := ReportCSV(session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(payload)

	// Quantity cells and the quantity summary carry two decimals, same as
	// every monetary column.
	if !strings.Contains(text, "POS/0101,2024-01-10,Dewi Lestari,,,,,,,Espresso (100.00->90.00 x 1.00),,,1.00,90.00,100.00") {
		t.Fatalf("expected two-decimal quantity cell, got:\n%s", text)
	}
	if !strings.Contains(text, "Total Quantity,2.00") {
		t.Fatalf("expected two-decimal quantity summary, got:\n%s", text)
	}

	html, err := ReportHTML(session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<strong>Total Quantity:</strong> 2.00") {
		t.Fatalf("expected two-decimal quantity in html summary, got:\n%s", html)
	}
	if !strings.Contains(html, "<td>1.00</td>") {
		t.Fatal("expected two-decimal quantity cells in html rows")
	}
}

func TestCommissionCSVUsesRollupColumns(t *testing.T) {
	session := &domain.ReportSession{
		Name:  "Commission Report 2024-01-01 to 2024-01-31",
		Shape: domain.ShapeCommission,
		Result: &domain.ReportResult{
			Rollups: []domain.EmployeeRollup{
				{EmployeeName: "Amira Rahma", Barcode: "EMP-0001", TargetAmount: 300, CommissionRate: 5, TotalSales: 269.5, AchievementRate: 89.83},
			},
			Totals: domain.ReportTotals{Sales: 269.5, Commission: 0, Employees: 1},
		},
	}

	payload, err := ReportCSV(session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(payload)

	if !strings.HasPrefix(text, "Employee,Barcode,Sale Target,Commission Rate,Total Sales,Earned Commission,Achievement") {
		t.Fatalf("unexpected header: %q", strings.SplitN(text, "\n", 2)[0])
	}
	if !strings.Contains(text, "Amira Rahma,EMP-0001,300.00,5.00%,269.50,0.00,89.83%") {
		t.Fatalf("unexpected rollup row:\n%s", text)
	}
	if !strings.Contains(text, "Total Commission,0.00") {
		t.Fatalf("missing commission summary:\n%s", text)
	}
}

func TestEmployeeDetailHTMLEmpty(t *testing.T) {
	html, err := EmployeeDetailHTML(&domain.EmployeeDetail{
		Employee: domain.Employee{ID: 3, Name: "Citra Ayu"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "Citra Ayu") {
		t.Fatal("title must name the employee")
	}
	if !strings.Contains(html, "No sales recorded") {
		t.Fatalf("expected empty message, got:\n%s", html)
	}
}
