package report

import (
	"sort"

	"posreports/backend/internal/domain"
)

// Summarize reduces enriched rows into scalar totals. Order and customer
// counts deduplicate on order ID and customer name; a customer appearing on
// five lines counts once, and lines without a customer are not counted.
func Summarize(rows []domain.OrderLineRow) domain.ReportTotals {
	var totals domain.ReportTotals
	orders := make(map[int64]struct{}, len(rows))
	customers := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		orders[row.OrderID] = struct{}{}
		if row.CustomerName != "" {
			customers[row.CustomerName] = struct{}{}
		}
		totals.Quantity += row.Quantity
		totals.Discount += row.DiscountAmount
		totals.Subtotal += row.SubtotalExcl
		totals.Tax += row.TaxAmount
		totals.Sales += row.SubtotalIncl
	}

	totals.Orders = len(orders)
	totals.Customers = len(customers)
	return totals
}

// ApplyCommission fills the gated commission fields of each rollup and
// returns the rollups sorted by total sales descending (name as tie-break)
// together with the overall totals.
//
// Commission is all-or-nothing: meeting the target exactly earns it, anything
// below earns zero. A zero or unset target yields achievement 0, not a
// division error.
func ApplyCommission(rollups []domain.EmployeeRollup) ([]domain.EmployeeRollup, domain.ReportTotals) {
	out := make([]domain.EmployeeRollup, len(rollups))
	var totals domain.ReportTotals

	for i, r := range rollups {
		if r.TotalSales >= r.TargetAmount {
			r.EarnedCommission = r.TotalSales * r.CommissionRate / 100
		} else {
			r.EarnedCommission = 0
		}
		if r.TargetAmount > 0 {
			r.AchievementRate = r.TotalSales / r.TargetAmount * 100
		} else {
			r.AchievementRate = 0
		}
		out[i] = r

		totals.Sales += r.TotalSales
		totals.Commission += r.EarnedCommission
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalSales != out[j].TotalSales {
			return out[i].TotalSales > out[j].TotalSales
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})

	totals.Employees = len(out)
	return out, totals
}
