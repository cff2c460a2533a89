// Package report holds the pure pipeline stages of the POS reporting
// backend: filter building, row enrichment and aggregation. Nothing in this
// package touches I/O.
package report

import (
	"fmt"
	"strings"

	"posreports/backend/internal/domain"
)

// Predicate is an AND-joined WHERE fragment plus its positional arguments.
// Argument binding order always matches clause emission order.
type Predicate struct {
	clauses []string
	args    []any
}

// Add appends one clause. Every %d verb in the clause is replaced with the
// next unused positional placeholder index, in order, one per argument.
func (p *Predicate) Add(clause string, args ...any) {
	indexes := make([]any, len(args))
	for i := range args {
		indexes[i] = len(p.args) + i + 1
	}
	p.clauses = append(p.clauses, fmt.Sprintf(clause, indexes...))
	p.args = append(p.args, args...)
}

// SQL returns the WHERE body (without the WHERE keyword).
func (p Predicate) SQL() string {
	return strings.Join(p.clauses, " AND ")
}

func (p Predicate) Args() []any {
	return p.args
}

func (p Predicate) ClauseCount() int {
	return len(p.clauses)
}

// BuildFilter translates a report request into a conjunctive predicate over
// the flattened order-line join (aliases: o = pos_orders, l = pos_order_lines,
// p = products). The date bounds are always present, inclusive on both ends
// and compared at day granularity. Each optional ID set appends one
// set-membership clause only when non-empty. No OR grouping.
func BuildFilter(req domain.ReportRequest) (Predicate, error) {
	start, end, err := req.Dates()
	if err != nil {
		return Predicate{}, fmt.Errorf("parse report dates: %w", err)
	}

	var p Predicate
	p.Add("o.ordered_at::date >= $%d", start)
	p.Add("o.ordered_at::date <= $%d", end)

	if len(req.BranchIDs) > 0 {
		p.Add("o.branch_id = ANY($%d)", req.BranchIDs)
	}
	if len(req.SessionIDs) > 0 {
		p.Add("o.session_id = ANY($%d)", req.SessionIDs)
	}
	if len(req.CashierIDs) > 0 {
		p.Add("o.cashier_id = ANY($%d)", req.CashierIDs)
	}
	if req.OrderState != "" {
		p.Add("o.state = $%d", req.OrderState)
	}
	if len(req.ProductIDs) > 0 {
		p.Add("l.product_id = ANY($%d)", req.ProductIDs)
	}
	if len(req.CategoryIDs) > 0 {
		p.Add("p.category_id = ANY($%d)", req.CategoryIDs)
	}
	if len(req.PricelistIDs) > 0 {
		p.Add("o.pricelist_id = ANY($%d)", req.PricelistIDs)
	}
	if len(req.EmployeeIDs) > 0 {
		p.Add("o.employee_id = ANY($%d)", req.EmployeeIDs)
	}

	return p, nil
}
