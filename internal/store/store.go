package store

import (
	"context"
	"errors"

	"posreports/backend/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Repository is the read-only relational query capability the report core
// runs against. One generation issues exactly one of the Query* calls; the
// drill-down issues one follow-up QueryEmployeeLines scoped to an employee.
//
// Implementations must return rows in a deterministic order: order date
// descending, then order ID.
type Repository interface {
	// QueryOrderLines returns the flattened sale lines matching the filter.
	QueryOrderLines(ctx context.Context, req domain.ReportRequest) ([]domain.OrderLineRow, error)

	// QueryEmployeeRollups returns one row per active employee (including
	// employees with no sales in the period) with TotalSales aggregated over
	// settled orders matching the filter. Ordered by employee name.
	QueryEmployeeRollups(ctx context.Context, req domain.ReportRequest) ([]domain.EmployeeRollup, error)

	// QueryEmployeeLines returns the settled sale lines of one employee
	// within the filter scope.
	QueryEmployeeLines(ctx context.Context, req domain.ReportRequest, employeeID int64) ([]domain.OrderLineRow, error)

	GetEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
}
