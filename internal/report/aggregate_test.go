package report

import (
	"testing"

	"posreports/backend/internal/domain"
)

func TestSummarizeDeduplicatesOrdersAndCustomers(t *testing.T) {
	rows := []domain.OrderLineRow{
		{OrderID: 1, CustomerName: "Dewi", Quantity: 1, DiscountAmount: 10, SubtotalExcl: 90, TaxAmount: 9, SubtotalIncl: 99},
		{OrderID: 1, CustomerName: "Dewi", Quantity: 2, SubtotalExcl: 100, TaxAmount: 10, SubtotalIncl: 110},
		{OrderID: 2, Quantity: 1, SubtotalExcl: 55, TaxAmount: 5.5, SubtotalIncl: 60.5},
	}

	totals := Summarize(rows)

	if totals.Orders != 2 {
		t.Fatalf("expected 2 distinct orders, got %d", totals.Orders)
	}
	// The walk-in line has no customer name and must not be counted.
	if totals.Customers != 1 {
		t.Fatalf("expected 1 distinct customer, got %d", totals.Customers)
	}
	if !almostEqual(totals.Quantity, 4) {
		t.Fatalf("expected quantity 4, got %v", totals.Quantity)
	}
	if !almostEqual(totals.Discount, 10) {
		t.Fatalf("expected discount 10, got %v", totals.Discount)
	}
	if !almostEqual(totals.Sales, 269.5) {
		t.Fatalf("expected sales 269.5, got %v", totals.Sales)
	}
}

func TestApplyCommissionGatesOnTarget(t *testing.T) {
	rollups, totals := ApplyCommission([]domain.EmployeeRollup{
		{EmployeeID: 1, EmployeeName: "Amira", TargetAmount: 300, CommissionRate: 5, TotalSales: 299.99},
		{EmployeeID: 2, EmployeeName: "Budi", TargetAmount: 300, CommissionRate: 5, TotalSales: 300},
		{EmployeeID: 3, EmployeeName: "Citra", TargetAmount: 0, CommissionRate: 3, TotalSales: 100},
	})

	byID := map[int64]domain.EmployeeRollup{}
	for _, r := range rollups {
		byID[r.EmployeeID] = r
	}

	if byID[1].EarnedCommission != 0 {
		t.Fatalf("below-target sales must earn nothing, got %v", byID[1].EarnedCommission)
	}
	// Meeting the target exactly earns the commission.
	if !almostEqual(byID[2].EarnedCommission, 15) {
		t.Fatalf("expected commission 15 at exact target, got %v", byID[2].EarnedCommission)
	}
	if !almostEqual(byID[3].EarnedCommission, 3) {
		t.Fatalf("zero target always earns, got %v", byID[3].EarnedCommission)
	}
	if byID[3].AchievementRate != 0 {
		t.Fatalf("zero target must yield achievement 0, got %v", byID[3].AchievementRate)
	}
	if !almostEqual(byID[2].AchievementRate, 100) {
		t.Fatalf("expected achievement 100, got %v", byID[2].AchievementRate)
	}

	if !almostEqual(totals.Sales, 699.99) {
		t.Fatalf("expected total sales 699.99, got %v", totals.Sales)
	}
	if !almostEqual(totals.Commission, 18) {
		t.Fatalf("expected total commission 18, got %v", totals.Commission)
	}
	if totals.Employees != 3 {
		t.Fatalf("expected 3 employees, got %d", totals.Employees)
	}
}

func TestApplyCommissionSortsBySalesDescending(t *testing.T) {
	rollups, _ := ApplyCommission([]domain.EmployeeRollup{
		{EmployeeName: "Citra", TotalSales: 100},
		{EmployeeName: "Budi", TotalSales: 250},
		{EmployeeName: "Amira", TotalSales: 100},
	})

	got := []string{rollups[0].EmployeeName, rollups[1].EmployeeName, rollups[2].EmployeeName}
	want := []string{"Budi", "Amira", "Citra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}
