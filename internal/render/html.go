package render

import (
	"bytes"
	"fmt"
	"html/template"

	"posreports/backend/internal/domain"
)

type cell struct {
	Text string
	Href string
}

type tableData struct {
	Title   string
	Summary []SummaryPair
	Headers []string
	Totals  []string
	Rows    [][]cell
	Empty   string
}

// reportTableTmpl renders one report as an embeddable fragment: summary block,
// then a table whose first body row is the bold TOTALS line. User-controlled
// fields are auto-escaped by html/template.
var reportTableTmpl = template.Must(template.New("report-table").Parse(`<div class="report">
  <h3>{{.Title}}</h3>
{{- if .Empty}}
  <p class="report-empty">{{.Empty}}</p>
{{- else}}
  <ul class="report-summary">
{{- range .Summary}}
    <li><strong>{{.Label}}:</strong> {{.Value}}</li>
{{- end}}
  </ul>
  <table border="1" cellspacing="0" cellpadding="4">
    <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
      <tr style="font-weight:bold;background:#f0f0f0"><td>TOTALS</td>{{range .Totals}}<td style="text-align:right;">{{.}}</td>{{end}}</tr>
{{- range .Rows}}
      <tr>{{range .}}<td>{{if .Href}}<a href="{{.Href}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{- end}}
    </tbody>
  </table>
{{- end}}
</div>
`))

// ReportHTML renders a generated session's result as an HTML fragment.
// An empty result renders an informational message instead of a bare table.
func ReportHTML(session *domain.ReportSession) (string, error) {
	data := tableData{Title: session.Name}
	result := session.Result

	if result.Empty() {
		data.Empty = "No records found for the selected filters."
		return execTable(data)
	}

	switch session.Shape {
	case domain.ShapeCommission:
		data.Summary = CommissionSummary(result.Totals)
		data.Headers, data.Totals, data.Rows = rollupTable(CommissionColumns, result)
	default:
		data.Summary = SalesSummary(result.Totals)
		data.Headers, data.Totals, data.Rows = lineTable(SalesColumns, result.Lines, result.Totals)
	}
	return execTable(data)
}

// EmployeeDetailHTML renders the commission drill-down for one employee.
func EmployeeDetailHTML(detail *domain.EmployeeDetail) (string, error) {
	data := tableData{Title: fmt.Sprintf("Employee Details - %s", detail.Employee.Name)}
	if len(detail.Lines) == 0 {
		data.Empty = "No sales recorded for this employee in the selected period."
		return execTable(data)
	}
	data.Summary = EmployeeDetailSummary(detail.Totals)
	data.Headers, data.Totals, data.Rows = lineTable(EmployeeDetailColumns, detail.Lines, detail.Totals)
	return execTable(data)
}

func execTable(data tableData) (string, error) {
	var buf bytes.Buffer
	if err := reportTableTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report table: %w", err)
	}
	return buf.String(), nil
}

// lineTable flattens rows through the column descriptors. The TOTALS slice
// skips the first column, which the template reserves for the row label.
func lineTable(cols []LineColumn, lines []domain.OrderLineRow, totals domain.ReportTotals) ([]string, []string, [][]cell) {
	headers := make([]string, 0, len(cols))
	totalCells := make([]string, 0, len(cols)-1)
	for i, col := range cols {
		headers = append(headers, col.Header)
		if i == 0 {
			continue
		}
		if col.Total != nil {
			totalCells = append(totalCells, col.Total(totals))
		} else {
			totalCells = append(totalCells, "")
		}
	}

	rows := make([][]cell, 0, len(lines))
	for _, line := range lines {
		row := make([]cell, 0, len(cols))
		for _, col := range cols {
			c := cell{Text: col.Value(line)}
			if col.Link != nil {
				c.Href = col.Link(line)
			}
			row = append(row, c)
		}
		rows = append(rows, row)
	}
	return headers, totalCells, rows
}

func rollupTable(cols []RollupColumn, result *domain.ReportResult) ([]string, []string, [][]cell) {
	headers := make([]string, 0, len(cols))
	totalCells := make([]string, 0, len(cols)-1)
	for i, col := range cols {
		headers = append(headers, col.Header)
		if i == 0 {
			continue
		}
		if col.Total != nil {
			totalCells = append(totalCells, col.Total(result.Totals))
		} else {
			totalCells = append(totalCells, "")
		}
	}

	rows := make([][]cell, 0, len(result.Rollups))
	for _, rollup := range result.Rollups {
		row := make([]cell, 0, len(cols))
		for _, col := range cols {
			row = append(row, cell{Text: col.Value(rollup)})
		}
		rows = append(rows, row)
	}
	return headers, totalCells, rows
}
