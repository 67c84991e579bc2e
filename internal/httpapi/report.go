package httpapi

import (
	"bytes"
	"encoding/csv"
	"html/template"
	"strconv"

	"sucursalpos/internal/domain"
)

// summaryToCSV writes one summary block followed by one row per sale line.
// Descriptions are free text, so quoting is left to encoding/csv.
func summaryToCSV(summary domain.DailySummary) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "date", summary.Date},
		{"summary", "branch_id", summary.BranchID},
		{"summary", "sales", strconv.Itoa(summary.Count)},
		{"summary", "total", summary.Total.StringFixed(2)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return nil, err
	}

	if err := cw.Write([]string{"sale_id", "created_at", "employee_id", "item_id", "description", "unit_price", "quantity", "subtotal"}); err != nil {
		return nil, err
	}
	for _, sale := range summary.Sales {
		for _, line := range sale.Lines {
			err := cw.Write([]string{
				sale.ID,
				sale.CreatedAt.Format("15:04:05"),
				sale.EmployeeID,
				line.ItemID,
				line.Description,
				line.UnitPrice.StringFixed(2),
				strconv.Itoa(line.Quantity),
				line.Subtotal().StringFixed(2),
			})
			if err != nil {
				return nil, err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// html/template escapes descriptions typed at the register.
var summaryHTMLTmpl = template.Must(template.New("today-summary").Funcs(template.FuncMap{
	"time": func(sale domain.Sale) string { return sale.CreatedAt.Format("15:04") },
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Sales {{.Date}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    td.num { text-align: right; }
  </style>
</head>
<body>
  <h2>Sales {{.Date}}</h2>
  <p>Branch: {{.BranchID}}</p>
  <p>Sales: {{.Count}} | Total: {{.Total.StringFixed 2}}</p>

  <table>
    <thead><tr><th>Time</th><th>Sale</th><th>Item</th><th>Qty</th><th>Unit</th><th>Subtotal</th></tr></thead>
    <tbody>{{range $sale := .Sales}}{{range .Lines}}<tr><td>{{time $sale}}</td><td>{{$sale.ID}}</td><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice.StringFixed 2}}</td><td class="num">{{.Subtotal.StringFixed 2}}</td></tr>{{end}}{{end}}</tbody>
  </table>
</body>
</html>
`))

func summaryToPrintableHTML(summary domain.DailySummary) string {
	var buf bytes.Buffer
	if err := summaryHTMLTmpl.Execute(&buf, summary); err != nil {
		return "<!doctype html><html><body><p>Report rendering error.</p></body></html>"
	}
	return buf.String()
}
