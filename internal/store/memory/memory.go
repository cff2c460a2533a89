// Package memory is the in-memory Repository used for dev mode and tests.
// It applies the same filter semantics as the SQL store, just in Go.
package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"posreports/backend/internal/domain"
	"posreports/backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	lines           []domain.OrderLineRow
	employees       map[int64]domain.Employee
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_MANAGER_PASSWORD; if
// unset, dev defaults are used with a warning. The backend uses PostgreSQL
// when DATABASE_URL is set, so these never reach production.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	managerPwd := envOr("SEED_MANAGER_PASSWORD", "manager123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_MANAGER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_MANAGER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"manager", managerPwd, "manager"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func day(value string) time.Time {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

// NewSeeded returns a store preloaded with a small but representative POS
// dataset: two branches, a localized product catalog, a cancelled order, a
// walk-in sale and an above-list "upsell" line.
func NewSeeded() *Store {
	espresso := domain.LocalizedText{"en_US": "Espresso", "id_ID": "Kopi Espresso"}
	croissant := domain.LocalizedText{"en_US": "Butter Croissant"}
	jasmineTea := domain.LocalizedText{"id_ID": "Teh Melati"}
	retail := domain.LocalizedText{"en_US": "Retail"}
	member := domain.LocalizedText{"en_US": "Member 10%"}

	lines := []domain.OrderLineRow{
		{
			OrderID: 101, OrderReference: "POS/0101", OrderDate: day("2024-01-10"), OrderState: domain.OrderStatePaid,
			CustomerName: "Dewi Lestari", Contact: "0812-1111-2222",
			BranchID: 11, BranchName: "Main Street", SessionID: 21, SessionName: "SESSION/001",
			CashierID: 31, CashierLogin: "kasir.a", EmployeeID: 1, EmployeeName: "Amira Rahma",
			ProductID: 201, ProductName: espresso, ProductCode: "ESP-01", CategoryID: 51, CategoryName: "Beverages",
			PricelistID: 41, PricelistName: retail,
			Quantity: 1, ListPrice: 100, UnitPrice: 90, SubtotalExcl: 90, SubtotalIncl: 99, OrderTotal: 209,
		},
		{
			OrderID: 101, OrderReference: "POS/0101", OrderDate: day("2024-01-10"), OrderState: domain.OrderStatePaid,
			CustomerName: "Dewi Lestari", Contact: "0812-1111-2222",
			BranchID: 11, BranchName: "Main Street", SessionID: 21, SessionName: "SESSION/001",
			CashierID: 31, CashierLogin: "kasir.a", EmployeeID: 1, EmployeeName: "Amira Rahma",
			ProductID: 202, ProductName: croissant, ProductCode: "CRO-01", CategoryID: 52, CategoryName: "Bakery",
			PricelistID: 41, PricelistName: retail,
			Quantity: 2, ListPrice: 50, UnitPrice: 50, SubtotalExcl: 100, SubtotalIncl: 110, OrderTotal: 209,
		},
		{
			OrderID: 102, OrderReference: "POS/0102", OrderDate: day("2024-01-15"), OrderState: domain.OrderStateDone,
			CustomerName: "Eko Prasetyo", Contact: "0812-3333-4444",
			BranchID: 12, BranchName: "Harbour", SessionID: 22, SessionName: "SESSION/002",
			CashierID: 32, CashierLogin: "kasir.b", EmployeeID: 2, EmployeeName: "Budi Santoso",
			ProductID: 203, ProductName: jasmineTea, ProductCode: "TEA-02", CategoryID: 51, CategoryName: "Beverages",
			PricelistID: 42, PricelistName: member,
			Quantity: 2, ListPrice: 40, UnitPrice: 40, SubtotalExcl: 80, SubtotalIncl: 88, OrderTotal: 88,
		},
		{
			// Walk-in sale with a unit price above list (negative discount).
			OrderID: 103, OrderReference: "POS/0103", OrderDate: day("2024-01-20"), OrderState: domain.OrderStatePaid,
			BranchID: 11, BranchName: "Main Street", SessionID: 23, SessionName: "SESSION/003",
			CashierID: 31, CashierLogin: "kasir.a", EmployeeID: 1, EmployeeName: "Amira Rahma",
			ProductID: 202, ProductName: croissant, ProductCode: "CRO-01", CategoryID: 52, CategoryName: "Bakery",
			PricelistID: 41, PricelistName: retail,
			Quantity: 1, ListPrice: 50, UnitPrice: 55, SubtotalExcl: 55, SubtotalIncl: 60.5, OrderTotal: 60.5,
		},
		{
			OrderID: 104, OrderReference: "POS/0104", OrderDate: day("2024-01-22"), OrderState: domain.OrderStateCancel,
			CustomerName: "Dewi Lestari", Contact: "0812-1111-2222",
			BranchID: 11, BranchName: "Main Street", SessionID: 23, SessionName: "SESSION/003",
			CashierID: 31, CashierLogin: "kasir.a", EmployeeID: 3, EmployeeName: "Citra Ayu",
			ProductID: 201, ProductName: espresso, ProductCode: "ESP-01", CategoryID: 51, CategoryName: "Beverages",
			PricelistID: 41, PricelistName: retail,
			Quantity: 1, ListPrice: 100, UnitPrice: 100, SubtotalExcl: 100, SubtotalIncl: 110, OrderTotal: 110,
		},
		{
			OrderID: 105, OrderReference: "POS/0105", OrderDate: day("2024-02-05"), OrderState: domain.OrderStatePaid,
			CustomerName: "Farhan Hakim", Contact: "0812-5555-6666",
			BranchID: 12, BranchName: "Harbour", SessionID: 24, SessionName: "SESSION/004",
			CashierID: 32, CashierLogin: "kasir.b", EmployeeID: 3, EmployeeName: "Citra Ayu",
			ProductID: 201, ProductName: espresso, ProductCode: "ESP-01", CategoryID: 51, CategoryName: "Beverages",
			PricelistID: 42, PricelistName: member,
			Quantity: 3, ListPrice: 100, UnitPrice: 95, SubtotalExcl: 285, SubtotalIncl: 313.5, OrderTotal: 313.5,
		},
	}

	employees := map[int64]domain.Employee{
		1: {ID: 1, Name: "Amira Rahma", Barcode: "EMP-0001", TargetAmount: 300, CommissionRate: 5},
		2: {ID: 2, Name: "Budi Santoso", Barcode: "EMP-0002", TargetAmount: 0, CommissionRate: 3},
		3: {ID: 3, Name: "Citra Ayu", Barcode: "EMP-0003", TargetAmount: 100000, CommissionRate: 10},
	}

	return &Store{
		lines:           lines,
		employees:       employees,
		usersByUsername: seedUsers(),
	}
}

// New returns a store holding exactly the given rows and employees; tests
// use it to build targeted datasets without the seed.
func New(lines []domain.OrderLineRow, employees []domain.Employee) *Store {
	byID := make(map[int64]domain.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}
	return &Store{
		lines:           lines,
		employees:       byID,
		usersByUsername: map[string]domain.UserAccount{},
	}
}

func (s *Store) QueryOrderLines(ctx context.Context, req domain.ReportRequest) ([]domain.OrderLineRow, error) {
	match, err := newMatcher(req)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.OrderLineRow, 0, len(s.lines))
	for _, line := range s.lines {
		if match(line) {
			out = append(out, line)
		}
	}
	sortLines(out)
	return out, nil
}

func (s *Store) QueryEmployeeRollups(ctx context.Context, req domain.ReportRequest) ([]domain.EmployeeRollup, error) {
	match, err := newMatcher(req)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	salesByEmployee := make(map[int64]float64, len(s.employees))
	for _, line := range s.lines {
		if !domain.IsSettledOrderState(line.OrderState) {
			continue
		}
		if line.EmployeeID == 0 || !match(line) {
			continue
		}
		salesByEmployee[line.EmployeeID] += line.SubtotalIncl
	}

	rollups := make([]domain.EmployeeRollup, 0, len(s.employees))
	for _, emp := range s.employees {
		if len(req.EmployeeIDs) > 0 && !containsID(req.EmployeeIDs, emp.ID) {
			continue
		}
		rollups = append(rollups, domain.EmployeeRollup{
			EmployeeID:     emp.ID,
			EmployeeName:   emp.Name,
			Barcode:        emp.Barcode,
			TargetAmount:   emp.TargetAmount,
			CommissionRate: emp.CommissionRate,
			TotalSales:     salesByEmployee[emp.ID],
		})
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].EmployeeName < rollups[j].EmployeeName })
	return rollups, nil
}

func (s *Store) QueryEmployeeLines(ctx context.Context, req domain.ReportRequest, employeeID int64) ([]domain.OrderLineRow, error) {
	// The explicit employee scope replaces any employee set filter.
	scoped := req
	scoped.EmployeeIDs = nil
	match, err := newMatcher(scoped)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.OrderLineRow, 0, 16)
	for _, line := range s.lines {
		if line.EmployeeID != employeeID || !domain.IsSettledOrderState(line.OrderState) {
			continue
		}
		if match(line) {
			out = append(out, line)
		}
	}
	sortLines(out)
	return out, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employees[employeeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := emp
	return &found, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrInvalidRequest
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// newMatcher compiles a report request into the same conjunctive semantics
// the SQL predicate has: date bounds always, set filters only when non-empty.
func newMatcher(req domain.ReportRequest) (func(domain.OrderLineRow) bool, error) {
	start, end, err := req.Dates()
	if err != nil {
		return nil, err
	}

	return func(line domain.OrderLineRow) bool {
		// Bucket on the timestamp's own calendar day, like ::date does,
		// rather than truncating absolute UTC time.
		y, m, d := line.OrderDate.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if date.Before(start) || date.After(end) {
			return false
		}
		if req.OrderState != "" && line.OrderState != req.OrderState {
			return false
		}
		if len(req.BranchIDs) > 0 && !containsID(req.BranchIDs, line.BranchID) {
			return false
		}
		if len(req.SessionIDs) > 0 && !containsID(req.SessionIDs, line.SessionID) {
			return false
		}
		if len(req.CashierIDs) > 0 && !containsID(req.CashierIDs, line.CashierID) {
			return false
		}
		if len(req.ProductIDs) > 0 && !containsID(req.ProductIDs, line.ProductID) {
			return false
		}
		if len(req.CategoryIDs) > 0 && !containsID(req.CategoryIDs, line.CategoryID) {
			return false
		}
		if len(req.PricelistIDs) > 0 && !containsID(req.PricelistIDs, line.PricelistID) {
			return false
		}
		if len(req.EmployeeIDs) > 0 && !containsID(req.EmployeeIDs, line.EmployeeID) {
			return false
		}
		return true
	}, nil
}

func sortLines(lines []domain.OrderLineRow) {
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].OrderDate.Equal(lines[j].OrderDate) {
			return lines[i].OrderDate.After(lines[j].OrderDate)
		}
		return lines[i].OrderID < lines[j].OrderID
	})
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
