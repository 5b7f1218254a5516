package presenter

import (
	"bytes"
	"strings"
	"testing"

	"salesdash/internal/engine"
	"salesdash/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func rec(category, region, payment, product string, month int, units int64, revenue string) models.Record {
	return models.Record{
		Category:      category,
		Region:        region,
		PaymentMethod: payment,
		ProductName:   product,
		Month:         month,
		UnitsSold:     units,
		TotalRevenue:  decimal.RequireFromString(revenue),
	}
}

func sampleTable() *engine.Table {
	return engine.NewTable([]models.Record{
		rec("Electronics", "North America", "Credit Card", "Laptop", 1, 2, "2000.00"),
		rec("Clothing", "Europe", "PayPal", "Jeans", 1, 3, "150.00"),
		rec("Electronics", "Asia", "Debit Card", "Phone", 2, 1, "800.00"),
		rec("Books", "Europe", "Credit Card", "Novel", 3, 5, "75.50"),
	})
}

func sampleDashboard() *models.DashboardData {
	return engine.BuildDashboard(sampleTable(), nil, engine.DefaultTopN)
}

func emptyDashboard() *models.DashboardData {
	return engine.BuildDashboard(sampleTable(), engine.FilterSpec{engine.ColumnRegion: {}}, engine.DefaultTopN)
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func TestRenderChart(t *testing.T) {
	data := sampleDashboard()
	assert.Contains(t, Charts, ChartTransactionsByCategory)
	assert.Contains(t, Charts, ChartTopProductsByUnits)
	for _, name := range Charts {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderChart(&buf, name, data))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature), "output is not a PNG")
		})
	}
}

func TestRenderChartSingleMonth(t *testing.T) {
	data := engine.BuildDashboard(sampleTable(), engine.FilterSpec{engine.ColumnMonth: {"2"}}, 0)
	require.Len(t, data.MonthlySales, 1)

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, ChartMonthlySales, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestRenderChartErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderChart(&buf, "heatmap", sampleDashboard()), ErrUnknownChart)

	empty := emptyDashboard()
	for _, name := range Charts {
		assert.ErrorIs(t, RenderChart(&buf, name, empty), ErrNoData, name)
	}
}

func TestWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleDashboard()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetMonthly, SheetCategories, SheetRegions, SheetPayments, SheetProducts}, f.GetSheetList())

	v, err := f.GetCellValue(SheetSummary, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Total revenue", v)

	v, err = f.GetCellValue(SheetCategories, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Electronics", v)

	rows, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	assert.Len(t, rows, 4, "header plus three months")
}

func TestWorkbookUnavailable(t *testing.T) {
	f, err := NewWorkbook(emptyDashboard())
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetSummary, "B4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(v, "n/a"), "top region cell %q", v)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleDashboard()))
	out := buf.String()

	assert.Contains(t, out, "3,025.50")
	assert.Contains(t, out, "North America")
	assert.Contains(t, out, "756.38")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "1. Laptop")
}

func TestWriteReportSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleDashboard()))
	out := buf.String()

	for _, title := range []string{
		"Monthly sales",
		"Revenue by category",
		"Revenue by region",
		"Transactions by payment method",
		"Transactions by category",
		"Top products by units",
		"Top products by revenue",
	} {
		assert.Contains(t, out, "\n"+title+"\n", title)
	}

	// Electronics: 2 of 4 transactions
	byCategory := out[strings.Index(out, "Transactions by category"):]
	assert.Regexp(t, `Electronics\s+2\s+50\.0%`, byCategory)
}

func TestWriteReportUnavailable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, emptyDashboard()))
	assert.Contains(t, buf.String(), "n/a (")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatAmount(1234567.891))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "10.13", FormatDecimal(decimal.RequireFromString("10.125")))
}
