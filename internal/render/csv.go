package render

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"posreports/backend/internal/domain"
)

// ReportCSV serializes a generated session's result: header row, detail rows,
// a blank separator record, then the summary block as label/value pairs. An
// empty result still produces the header and summary so the byte payload is
// deterministic for caching.
func ReportCSV(session *domain.ReportSession) ([]byte, error) {
	result := session.Result
	switch session.Shape {
	case domain.ShapeCommission:
		return rollupsCSV(CommissionColumns, result.Rollups, CommissionSummary(result.Totals))
	default:
		return linesCSV(SalesColumns, result.Lines, SalesSummary(result.Totals))
	}
}

// EmployeeDetailCSV serializes the commission drill-down for one employee.
func EmployeeDetailCSV(detail *domain.EmployeeDetail) ([]byte, error) {
	return linesCSV(EmployeeDetailColumns, detail.Lines, EmployeeDetailSummary(detail.Totals))
}

func linesCSV(cols []LineColumn, lines []domain.OrderLineRow, summary []SummaryPair) ([]byte, error) {
	records := make([][]string, 0, len(lines)+len(summary)+2)
	records = append(records, lineHeaders(cols))
	for _, line := range lines {
		record := make([]string, 0, len(cols))
		for _, col := range cols {
			record = append(record, col.Value(line))
		}
		records = append(records, record)
	}
	return writeCSV(records, summary)
}

func rollupsCSV(cols []RollupColumn, rollups []domain.EmployeeRollup, summary []SummaryPair) ([]byte, error) {
	headers := make([]string, 0, len(cols))
	for _, col := range cols {
		headers = append(headers, col.Header)
	}

	records := make([][]string, 0, len(rollups)+len(summary)+2)
	records = append(records, headers)
	for _, rollup := range rollups {
		record := make([]string, 0, len(cols))
		for _, col := range cols {
			record = append(record, col.Value(rollup))
		}
		records = append(records, record)
	}
	return writeCSV(records, summary)
}

func lineHeaders(cols []LineColumn) []string {
	headers := make([]string, 0, len(cols))
	for _, col := range cols {
		headers = append(headers, col.Header)
	}
	return headers
}

func writeCSV(records [][]string, summary []SummaryPair) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	// Blank separator between the detail table and the summary block.
	if err := w.Write([]string{""}); err != nil {
		return nil, fmt.Errorf("write csv separator: %w", err)
	}
	for _, pair := range summary {
		if err := w.Write([]string{pair.Label, pair.Value}); err != nil {
			return nil, fmt.Errorf("write csv summary: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
