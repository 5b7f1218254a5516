package presenter

import (
	"fmt"
	"io"

	"salesdash/internal/models"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook, in tab order.
const (
	SheetSummary    = "Summary"
	SheetMonthly    = "Monthly Sales"
	SheetCategories = "By Category"
	SheetRegions    = "By Region"
	SheetPayments   = "Payment Methods"
	SheetProducts   = "Top Products"
)

// amountFmt is excelize's built-in "#,##0.00" number format.
const amountFmt = 4

// NewWorkbook lays the dashboard out as one sheet per view.
func NewWorkbook(data *models.DashboardData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFmt})
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f, header: headerStyle, amount: amountStyle}

	// 1. Summary
	summary := [][]any{{"Metric", "Value"}, {"Records", data.Records}}
	summary = append(summary, []any{"Total revenue", summaryValue(data, models.MetricTotalRevenue, data.TotalRevenue.InexactFloat64())})
	if data.TopRegion != nil {
		summary = append(summary,
			[]any{"Top region", data.TopRegion.Name},
			[]any{"Top region revenue", data.TopRegion.Revenue.InexactFloat64()})
	} else {
		summary = append(summary, []any{"Top region", summaryValue(data, models.MetricTopRegion, "")})
	}
	if data.AverageRevenue.Valid {
		summary = append(summary, []any{"Average revenue", data.AverageRevenue.Decimal.Round(2).InexactFloat64()})
	} else {
		summary = append(summary, []any{"Average revenue", summaryValue(data, models.MetricAverageRevenue, "")})
	}
	w.table(SheetSummary, summary, "B")

	// 2. One sheet per breakdown
	rows := [][]any{{"Month", "Label", "Sales"}}
	for _, it := range data.MonthlySales {
		rows = append(rows, []any{it.Month, it.Label, it.Volume.InexactFloat64()})
	}
	w.table(SheetMonthly, rows, "C")

	w.table(SheetCategories, groupRows("Category", data.RevenueByCategory), "B")
	w.table(SheetRegions, groupRows("Region", data.RevenueByRegion), "B")

	rows = [][]any{{"Payment Method", "Transactions"}}
	for _, it := range data.TransactionsByPayment {
		rows = append(rows, []any{it.Name, it.Transactions})
	}
	w.table(SheetPayments, rows, "")

	rows = [][]any{{"Rank", "Product", "Revenue", "", "Rank", "Product", "Units"}}
	for i := 0; i < max(len(data.TopProductsByRevenue), len(data.TopProductsByUnits)); i++ {
		row := make([]any, 7)
		if i < len(data.TopProductsByRevenue) {
			it := data.TopProductsByRevenue[i]
			row[0], row[1], row[2] = i+1, it.Name, it.Value.InexactFloat64()
		}
		if i < len(data.TopProductsByUnits) {
			it := data.TopProductsByUnits[i]
			row[4], row[5], row[6] = i+1, it.Name, it.Value.IntPart()
		}
		rows = append(rows, row)
	}
	w.table(SheetProducts, rows, "C")

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// WriteWorkbook builds the dashboard workbook and writes it to out as XLSX.
func WriteWorkbook(out io.Writer, data *models.DashboardData) error {
	f, err := NewWorkbook(data)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func groupRows(label string, items []models.GroupItem) [][]any {
	rows := [][]any{{label, "Revenue", "Transactions"}}
	for _, it := range items {
		rows = append(rows, []any{it.Name, it.Revenue.InexactFloat64(), it.Transactions})
	}
	return rows
}

func summaryValue(data *models.DashboardData, metric string, value any) any {
	if reason, ok := data.Unavailable[metric]; ok {
		return "n/a: " + reason
	}
	return value
}

// sheetWriter keeps the first error so callers can write a whole workbook and check once.
type sheetWriter struct {
	f      *excelize.File
	header int
	amount int
	err    error
}

// table writes rows starting at A1, styles the header and formats amountCol as currency.
func (w *sheetWriter) table(sheet string, rows [][]any, amountCol string) {
	if w.err != nil {
		return
	}
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil {
		w.err = err
		return
	}
	if idx < 0 {
		if _, err := w.f.NewSheet(sheet); err != nil {
			w.err = err
			return
		}
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			w.err = err
			return
		}
	}
	if err := w.f.SetRowStyle(sheet, 1, 1, w.header); err != nil {
		w.err = err
		return
	}
	if amountCol != "" && len(rows) > 1 {
		if err := w.f.SetCellStyle(sheet, amountCol+"2", fmt.Sprintf("%s%d", amountCol, len(rows)), w.amount); err != nil {
			w.err = err
			return
		}
	}
	if err := w.f.SetColWidth(sheet, "A", "G", 18); err != nil {
		w.err = err
	}
}
