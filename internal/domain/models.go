package domain

import (
	"sort"
	"time"
)

// LocalizedText is a locale-code keyed display name, as stored in the POS
// schema's jsonb name columns (e.g. {"en_US": "Espresso", "id_ID": "Kopi"}).
type LocalizedText map[string]string

// Resolve picks a single display string: the default locale if present,
// otherwise the lexicographically first non-empty value, otherwise "".
func (t LocalizedText) Resolve(defaultLocale string) string {
	if len(t) == 0 {
		return ""
	}
	if v := t[defaultLocale]; v != "" {
		return v
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if t[k] != "" {
			return t[k]
		}
	}
	return ""
}

const (
	OrderStateDraft    = "draft"
	OrderStatePaid     = "paid"
	OrderStateInvoiced = "invoiced"
	OrderStateDone     = "done"
	OrderStateCancel   = "cancel"
)

const (
	ShapeSales          = "sales"
	ShapeCommission     = "commission"
	ShapeEmployeeDetail = "employee-detail"
)

const (
	SessionStateDraft     = "draft"
	SessionStateGenerated = "generated"
)

// Discount-floor policy for derived discount amounts. "floor" zeroes negative
// per-line discounts (upsells above list price); "signed" keeps them.
const (
	DiscountPolicyFloor  = "floor"
	DiscountPolicySigned = "signed"
)

// DateLayout is the wire format for report date bounds (day granularity).
const DateLayout = "2006-01-02"

// ReportRequest is the filter set for one report generation. Empty ID slices
// mean "no restriction", never "match nothing".
type ReportRequest struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	BranchIDs    []int64 `json:"branch_ids,omitempty"`
	SessionIDs   []int64 `json:"session_ids,omitempty"`
	CashierIDs   []int64 `json:"cashier_ids,omitempty"`
	ProductIDs   []int64 `json:"product_ids,omitempty"`
	CategoryIDs  []int64 `json:"category_ids,omitempty"`
	PricelistIDs []int64 `json:"pricelist_ids,omitempty"`
	EmployeeIDs  []int64 `json:"employee_ids,omitempty"`
	OrderState   string  `json:"order_state,omitempty"`
}

// Dates parses the inclusive day-granularity bounds.
func (r ReportRequest) Dates() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// OrderLineRow is one flattened sale line, the unit of aggregation. Fields
// after the raw columns are filled by the enricher, not the store.
type OrderLineRow struct {
	OrderID        int64     `json:"order_id"`
	OrderReference string    `json:"order_reference"`
	OrderDate      time.Time `json:"order_date"`
	OrderState     string    `json:"order_state"`
	CustomerName   string    `json:"customer_name"`
	Contact        string    `json:"contact,omitempty"`
	BranchName     string    `json:"branch_name,omitempty"`
	SessionName    string    `json:"session_name,omitempty"`
	CashierLogin   string    `json:"cashier_login,omitempty"`
	EmployeeID     int64     `json:"employee_id,omitempty"`
	EmployeeName   string    `json:"employee_name,omitempty"`

	// Foreign keys of the flattened join; used by set-membership filters,
	// not serialized.
	BranchID    int64 `json:"-"`
	SessionID   int64 `json:"-"`
	CashierID   int64 `json:"-"`
	ProductID   int64 `json:"-"`
	CategoryID  int64 `json:"-"`
	PricelistID int64 `json:"-"`

	ProductName   LocalizedText `json:"-"`
	PricelistName LocalizedText `json:"-"`
	ProductCode   string        `json:"product_code,omitempty"`
	CategoryName  string        `json:"category_name,omitempty"`

	Quantity        float64 `json:"quantity"`
	ListPrice       float64 `json:"list_price"`
	UnitPrice       float64 `json:"unit_price"`
	SubtotalExcl    float64 `json:"subtotal_excl_tax"`
	SubtotalIncl    float64 `json:"subtotal_incl_tax"`
	OrderTotal      float64 `json:"order_total"`
	DiscountPercent float64 `json:"discount_percent"`

	// Derived metrics (report.Enrich).
	UnitDiscount     float64 `json:"unit_discount"`
	DiscountAmount   float64 `json:"discount_amount"`
	TaxAmount        float64 `json:"tax_amount"`
	ProductDisplay   string  `json:"product"`
	PricelistDisplay string  `json:"pricelist,omitempty"`
}

// Employee carries the commission parameters attached to a staff member.
type Employee struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Barcode        string  `json:"barcode,omitempty"`
	TargetAmount   float64 `json:"target_amount"`
	CommissionRate float64 `json:"commission_rate"`
}

// EmployeeRollup is one summary row of the commission report. TotalSales is
// aggregated in the query layer; commission gating happens in the aggregator.
type EmployeeRollup struct {
	EmployeeID       int64   `json:"employee_id"`
	EmployeeName     string  `json:"employee_name"`
	Barcode          string  `json:"barcode,omitempty"`
	TargetAmount     float64 `json:"target_amount"`
	CommissionRate   float64 `json:"commission_rate"`
	TotalSales       float64 `json:"total_sales"`
	EarnedCommission float64 `json:"earned_commission"`
	AchievementRate  float64 `json:"achievement_rate"`
}

// ReportTotals are the scalar sums across a full result. Distinct counts
// deduplicate on order ID and customer name respectively.
type ReportTotals struct {
	Orders     int     `json:"total_orders"`
	Customers  int     `json:"total_customers"`
	Quantity   float64 `json:"total_quantity"`
	Discount   float64 `json:"total_discount"`
	Subtotal   float64 `json:"total_subtotal"`
	Tax        float64 `json:"total_tax"`
	Sales      float64 `json:"total_sales"`
	Commission float64 `json:"total_commission"`
	Employees  int     `json:"employee_count"`
}

// ReportResult owns the rows of one generation. It is replaced wholesale on
// re-generation; rows never outlive their result.
type ReportResult struct {
	Lines        []OrderLineRow   `json:"lines,omitempty"`
	Rollups      []EmployeeRollup `json:"rollups,omitempty"`
	Totals       ReportTotals     `json:"totals"`
	GeneratedAt  time.Time        `json:"generated_at"`
	GenerationID string           `json:"-"`
}

func (r *ReportResult) Empty() bool {
	return r == nil || (len(r.Lines) == 0 && len(r.Rollups) == 0)
}

// ReportSession is a short-lived, filter-scoped unit of work owning one
// query -> enrich -> aggregate -> present pipeline.
type ReportSession struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Shape     string        `json:"shape"`
	State     string        `json:"state"`
	Request   ReportRequest `json:"filters"`
	Result    *ReportResult `json:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// EmployeeDetail is the drill-down view: one employee's order lines within a
// commission session's filter scope.
type EmployeeDetail struct {
	Employee Employee       `json:"employee"`
	Lines    []OrderLineRow `json:"lines"`
	Totals   ReportTotals   `json:"totals"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// ValidOrderState reports whether s is one of the order status enum values.
func ValidOrderState(s string) bool {
	switch s {
	case OrderStateDraft, OrderStatePaid, OrderStateInvoiced, OrderStateDone, OrderStateCancel:
		return true
	}
	return false
}

// SettledOrderStates are the states counted toward commission totals.
var SettledOrderStates = []string{OrderStatePaid, OrderStateDone, OrderStateInvoiced}

func IsSettledOrderState(s string) bool {
	for _, settled := range SettledOrderStates {
		if s == settled {
			return true
		}
	}
	return false
}
