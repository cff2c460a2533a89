// Package postgres implements the report Repository over the POS relational
// schema (pos_orders -> pos_order_lines -> products -> product_categories,
// employees, pricelists, pos_sessions, branches).
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"posreports/backend/internal/domain"
	"posreports/backend/internal/report"
	"posreports/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// lineSelect is the flattened order-line join shared by the line-level report
// shapes. Aliases match the filter builder: o, l, p.
const lineSelect = `
	SELECT
		o.id,
		COALESCE(o.reference, ''),
		o.ordered_at,
		o.state,
		COALESCE(cu.name, ''),
		COALESCE(cu.mobile, cu.phone, ''),
		COALESCE(o.branch_id, 0),
		COALESCE(b.name, ''),
		COALESCE(o.session_id, 0),
		COALESCE(ps.name, ''),
		COALESCE(o.cashier_id, 0),
		COALESCE(u.login, ''),
		COALESCE(o.employee_id, 0),
		COALESCE(e.name, ''),
		COALESCE(l.product_id, 0),
		COALESCE(p.name, '{}'::jsonb),
		COALESCE(p.code, ''),
		COALESCE(p.category_id, 0),
		COALESCE(c.name, ''),
		COALESCE(o.pricelist_id, 0),
		COALESCE(pl.name, '{}'::jsonb),
		COALESCE(l.qty, 0),
		COALESCE(p.list_price, 0),
		COALESCE(l.unit_price, 0),
		COALESCE(l.subtotal_excl, 0),
		COALESCE(l.subtotal_incl, 0),
		COALESCE(o.amount_total, 0),
		COALESCE(l.discount_percent, 0)
	FROM pos_order_lines l
	JOIN pos_orders o ON o.id = l.order_id
	LEFT JOIN products p ON p.id = l.product_id
	LEFT JOIN product_categories c ON c.id = p.category_id
	LEFT JOIN customers cu ON cu.id = o.customer_id
	LEFT JOIN branches b ON b.id = o.branch_id
	LEFT JOIN pos_sessions ps ON ps.id = o.session_id
	LEFT JOIN users u ON u.id = o.cashier_id
	LEFT JOIN employees e ON e.id = o.employee_id
	LEFT JOIN pricelists pl ON pl.id = o.pricelist_id
`

// lineOrder keeps exports deterministic across repeated runs with identical
// filters.
const lineOrder = " ORDER BY o.ordered_at DESC, o.id"

func (s *Store) QueryOrderLines(ctx context.Context, req domain.ReportRequest) ([]domain.OrderLineRow, error) {
	pred, err := report.BuildFilter(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidRequest, err)
	}

	query := lineSelect + " WHERE " + pred.SQL() + lineOrder
	return s.queryLines(ctx, query, pred.Args())
}

func (s *Store) QueryEmployeeLines(ctx context.Context, req domain.ReportRequest, employeeID int64) ([]domain.OrderLineRow, error) {
	scoped := req
	scoped.EmployeeIDs = nil
	pred, err := report.BuildFilter(scoped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidRequest, err)
	}
	pred.Add("o.employee_id = $%d", employeeID)

	query := lineSelect +
		" WHERE " + pred.SQL() +
		" AND o.state IN ('paid', 'done', 'invoiced')" +
		lineOrder
	return s.queryLines(ctx, query, pred.Args())
}

func (s *Store) queryLines(ctx context.Context, query string, args []any) ([]domain.OrderLineRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLineRow, 0, 256)
	for rows.Next() {
		var line domain.OrderLineRow
		var productName, pricelistName []byte
		if err := rows.Scan(
			&line.OrderID,
			&line.OrderReference,
			&line.OrderDate,
			&line.OrderState,
			&line.CustomerName,
			&line.Contact,
			&line.BranchID,
			&line.BranchName,
			&line.SessionID,
			&line.SessionName,
			&line.CashierID,
			&line.CashierLogin,
			&line.EmployeeID,
			&line.EmployeeName,
			&line.ProductID,
			&productName,
			&line.ProductCode,
			&line.CategoryID,
			&line.CategoryName,
			&line.PricelistID,
			&pricelistName,
			&line.Quantity,
			&line.ListPrice,
			&line.UnitPrice,
			&line.SubtotalExcl,
			&line.SubtotalIncl,
			&line.OrderTotal,
			&line.DiscountPercent,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if line.ProductName, err = decodeLocalized(productName); err != nil {
			return nil, fmt.Errorf("decode product name: %w", err)
		}
		if line.PricelistName, err = decodeLocalized(pricelistName); err != nil {
			return nil, fmt.Errorf("decode pricelist name: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// QueryEmployeeRollups follows the original two-query shape: all active
// employees first, then the period's sales grouped by employee, merged in Go
// so employees without sales still appear with a zero total.
func (s *Store) QueryEmployeeRollups(ctx context.Context, req domain.ReportRequest) ([]domain.EmployeeRollup, error) {
	employeeQuery := `
		SELECT id, name, COALESCE(barcode, ''), COALESCE(sale_target, 0), COALESCE(commission_rate, 0)
		FROM employees
		WHERE active
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, employeeQuery)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	rollups := make([]domain.EmployeeRollup, 0, 32)
	for rows.Next() {
		var r domain.EmployeeRollup
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeName, &r.Barcode, &r.TargetAmount, &r.CommissionRate); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		if len(req.EmployeeIDs) > 0 && !containsID(req.EmployeeIDs, r.EmployeeID) {
			continue
		}
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	scoped := req
	scoped.EmployeeIDs = nil
	pred, err := report.BuildFilter(scoped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidRequest, err)
	}

	salesQuery := `
		SELECT o.employee_id, COALESCE(SUM(l.subtotal_incl), 0)
		FROM pos_order_lines l
		JOIN pos_orders o ON o.id = l.order_id
		LEFT JOIN products p ON p.id = l.product_id
		WHERE ` + pred.SQL() + `
			AND o.state IN ('paid', 'done', 'invoiced')
			AND o.employee_id IS NOT NULL
		GROUP BY o.employee_id
	`

	salesRows, err := s.db.QueryContext(ctx, salesQuery, pred.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query employee sales: %w", err)
	}
	defer salesRows.Close()

	salesByEmployee := make(map[int64]float64, len(rollups))
	for salesRows.Next() {
		var employeeID int64
		var total float64
		if err := salesRows.Scan(&employeeID, &total); err != nil {
			return nil, fmt.Errorf("scan employee sales: %w", err)
		}
		salesByEmployee[employeeID] = total
	}
	if err := salesRows.Err(); err != nil {
		return nil, err
	}

	for i := range rollups {
		rollups[i].TotalSales = salesByEmployee[rollups[i].EmployeeID]
	}
	return rollups, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	var emp domain.Employee
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(barcode, ''), COALESCE(sale_target, 0), COALESCE(commission_rate, 0)
		FROM employees
		WHERE id = $1 AND active
	`, employeeID).Scan(&emp.ID, &emp.Name, &emp.Barcode, &emp.TargetAmount, &emp.CommissionRate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidRequest
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, now())
	`, user.Username, user.Password, user.Role, user.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidRequest
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password_hash, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func decodeLocalized(raw []byte) (domain.LocalizedText, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var text domain.LocalizedText
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, err
	}
	return text, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
