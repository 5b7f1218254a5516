package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var errNoHeader = errors.New("input has no header row")

// dateLayouts are tried in order when deriving Month from Date.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"2006/01/02",
}

// --- 1. CELL PARSERS ---

// Excel serial day numbers run from 1900-01-01 to 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// parseMonth parses "2024-03-15" -> 3. With serial set, a bare number that
// matches no layout is read as an Excel serial date.
func parseMonth(s string, serial bool) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return int(t.Month()), nil
		}
	}
	if !serial {
		return 0, fmt.Errorf("unrecognised date format")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognised date format")
	}
	if n < minExcelSerial || n >= maxExcelSerial+1 {
		return 0, fmt.Errorf("excel serial date %v out of range", n)
	}
	t, err := excelize.ExcelDateToTime(n, false)
	if err != nil {
		return 0, err
	}
	return int(t.Month()), nil
}

// parseUnits parses "12" -> 12. Negative counts are rejected.
func parseUnits(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("units sold must not be negative")
	}
	return n, nil
}

var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// parseRevenue parses "$1,234.50" -> 1234.50 exactly.
func parseRevenue(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(amountCleaner.Replace(s))
}

// --- 2. HEADER MAPPING ---

type rowParser struct {
	index map[Column]int
	// serialDates accepts Excel serial numbers in the Date column (workbooks only).
	serialDates bool
}

// newRowParser maps required columns to header positions.
// Extra columns are ignored; absent required columns are reported together.
func newRowParser(header []string) (*rowParser, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	p := &rowParser{index: make(map[Column]int, len(RequiredColumns))}
	var missing []Column
	for _, col := range RequiredColumns {
		i, ok := pos[string(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		p.index[col] = i
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	return p, nil
}

func (p *rowParser) field(fields []string, col Column) string {
	i := p.index[col]
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func (p *rowParser) parse(line int, fields []string) (models.Record, error) {
	fail := func(col Column, err error) (models.Record, error) {
		return models.Record{}, &ParseError{Line: line, Column: col, Value: p.field(fields, col), Err: err}
	}

	rec := models.Record{
		Category:      p.field(fields, ColumnCategory),
		Region:        p.field(fields, ColumnRegion),
		PaymentMethod: p.field(fields, ColumnPayment),
		ProductName:   p.field(fields, ColumnProduct),
	}

	var err error
	if rec.Month, err = parseMonth(p.field(fields, ColumnDate), p.serialDates); err != nil {
		return fail(ColumnDate, err)
	}
	if rec.UnitsSold, err = parseUnits(p.field(fields, ColumnUnits)); err != nil {
		return fail(ColumnUnits, err)
	}
	if rec.TotalRevenue, err = parseRevenue(p.field(fields, ColumnRevenue)); err != nil {
		return fail(ColumnRevenue, err)
	}
	return rec, nil
}

// --- 3. LOADERS ---

// LoadFile reads a dataset from path. ".xlsx" and ".xlsm" files are read
// as workbooks (first sheet), anything else as CSV.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		t, err = LoadXLSX(f)
	default:
		t, err = LoadCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// LoadCSV reads a header row followed by one transaction per line.
func LoadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	p, err := newRowParser(header)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := p.parse(line, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return NewTable(records), nil
}

// LoadXLSX reads the first sheet of a workbook the same way LoadCSV reads a file.
func LoadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("open workbook: no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errNoHeader
	}
	p, err := newRowParser(rows[0])
	if err != nil {
		return nil, err
	}
	p.serialDates = true

	records := make([]models.Record, 0, len(rows)-1)
	for i, fields := range rows[1:] {
		if isBlankRow(fields) {
			continue
		}
		rec, err := p.parse(i+2, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return NewTable(records), nil
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
