package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Transaction ID,Date,Product Category,Product Name,Units Sold,Unit Price,Total Revenue,Region,Payment Method
10001,2024-01-01,Electronics,iPhone 14 Pro,2,999.99,1999.98,North America,Credit Card
10002,2024-01-02,Home Appliances,Dyson V11 Vacuum,1,499.99,499.99,Europe,PayPal
10003,2024-02-03,Clothing,Levi's 501 Jeans,3,69.99,209.97,Asia,Debit Card
10004,2024-03-04,Electronics,"Sony WH-1000XM5, Black",1,349.99,349.99,North America,Credit Card
`

func TestLoadCSV(t *testing.T) {
	table, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Expect 4 rows
	if table.Len() != 4 {
		t.Fatalf("Expected 4 rows, got %d", table.Len())
	}

	// Row 0 Check
	r0 := table.Record(0)
	assert.Equal(t, "Electronics", r0.Category)
	assert.Equal(t, "North America", r0.Region)
	assert.Equal(t, "Credit Card", r0.PaymentMethod)
	assert.Equal(t, "iPhone 14 Pro", r0.ProductName)
	assert.Equal(t, 1, r0.Month)
	assert.Equal(t, int64(2), r0.UnitsSold)
	assert.True(t, decimal.RequireFromString("1999.98").Equal(r0.TotalRevenue), "revenue %s", r0.TotalRevenue)

	// Quoted field with a comma survives intact
	assert.Equal(t, "Sony WH-1000XM5, Black", table.Record(3).ProductName)
	assert.Equal(t, 3, table.Record(3).Month)

	// Dictionary Checks
	assert.Equal(t, []string{"Electronics", "Home Appliances", "Clothing"}, table.Distinct(ColumnCategory))
	assert.Equal(t, []string{"1", "2", "3"}, table.Distinct(ColumnMonth))
}

func TestLoadCSVMissingColumn(t *testing.T) {
	input := "Date,Product Category,Region,Payment Method,Product Name,Units Sold\n2024-01-01,A,East,Cash,P,1\n"

	_, err := LoadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)

	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []Column{ColumnRevenue}, mc.Columns)
	assert.Contains(t, err.Error(), `"Total Revenue"`)
}

func TestLoadCSVCompactDate(t *testing.T) {
	input := "Date,Product Category,Region,Payment Method,Product Name,Units Sold,Total Revenue\n" +
		"20240315,A,East,Cash,P,1,10\n"
	table, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Record(0).Month)
}

func TestLoadCSVEmptyInput(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, errNoHeader)
}

func TestLoadCSVParseErrors(t *testing.T) {
	header := "Date,Product Category,Region,Payment Method,Product Name,Units Sold,Total Revenue\n"
	tests := []struct {
		name   string
		row    string
		column Column
	}{
		{"bad date", "yesterday,A,East,Cash,P,1,10", ColumnDate},
		{"bare number date", "45337,A,East,Cash,P,1,10", ColumnDate},
		{"negative units", "2024-01-01,A,East,Cash,P,-1,10", ColumnUnits},
		{"fractional units", "2024-01-01,A,East,Cash,P,1.5,10", ColumnUnits},
		{"bad revenue", "2024-01-01,A,East,Cash,P,1,ten", ColumnRevenue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(header + tt.row + "\n"))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 2, pe.Line)
			assert.Equal(t, tt.column, pe.Column)
		})
	}
}

func TestLoadFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Date", "Product Category", "Region", "Payment Method", "Product Name", "Units Sold", "Total Revenue"},
		{"2024-05-10", "Books", "Europe", "PayPal", "Dune", 2, 31.5},
		{"2024-06-11", "Books", "Asia", "Credit Card", "Emma", 1, 12.25},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 5, table.Record(0).Month)
	assert.Equal(t, "Emma", table.Record(1).ProductName)
	assert.True(t, decimal.RequireFromString("12.25").Equal(table.Record(1).TotalRevenue))
}

func TestLoadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCellParsers(t *testing.T) {
	for in, want := range map[string]int{
		"2023-12-01":          12,
		"2023-07-04 10:30:00": 7,
		"2024-03-15T10:00:00": 3,
		"20240315":            3,
		"03/15/2024":          3,
		"4/1/24":              4,
	} {
		for _, serial := range []bool{false, true} {
			m, err := parseMonth(in, serial)
			if assert.NoError(t, err, in) {
				assert.Equal(t, want, m, in)
			}
		}
	}

	// Serial numbers only in workbooks
	m, err := parseMonth("45337", true) // 2024-02-15
	require.NoError(t, err)
	assert.Equal(t, 2, m)

	for _, in := range []string{"45337", "2024", "2024.5"} {
		_, err := parseMonth(in, false)
		assert.Error(t, err, in)
	}
	for _, in := range []string{"0", "-3", "3000000"} {
		_, err := parseMonth(in, true)
		assert.Error(t, err, in)
	}

	u, err := parseUnits("99")
	require.NoError(t, err)
	assert.Equal(t, int64(99), u)

	rev, err := parseRevenue("$1,234.50")
	require.NoError(t, err)
	assert.Equal(t, "1234.5", rev.String())
}
