package engine

import (
	"strconv"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
)

// Column names a field of the sales dataset. Values are the verbatim input headers.
type Column string

const (
	ColumnDate     Column = "Date"
	ColumnCategory Column = "Product Category"
	ColumnRegion   Column = "Region"
	ColumnPayment  Column = "Payment Method"
	ColumnProduct  Column = "Product Name"
	ColumnUnits    Column = "Units Sold"
	ColumnRevenue  Column = "Total Revenue"

	// ColumnMonth is derived from ColumnDate at load time.
	ColumnMonth Column = "Month"
)

// RequiredColumns must all be present in the header of an input file.
var RequiredColumns = []Column{
	ColumnDate, ColumnCategory, ColumnRegion, ColumnPayment,
	ColumnProduct, ColumnUnits, ColumnRevenue,
}

// FilterColumns are the columns a dashboard user can filter on.
var FilterColumns = []Column{ColumnCategory, ColumnRegion, ColumnPayment, ColumnMonth}

// IsDimension reports whether c is a categorical column usable for grouping and filtering.
func (c Column) IsDimension() bool {
	switch c {
	case ColumnCategory, ColumnRegion, ColumnPayment, ColumnProduct, ColumnMonth:
		return true
	}
	return false
}

// IsMetric reports whether c is a numeric column usable for sums and means.
func (c Column) IsMetric() bool {
	return c == ColumnUnits || c == ColumnRevenue
}

// dimension is a dictionary encoded string column.
type dimension struct {
	ids    []int32
	values []string // ID -> string, shared by a table and every view filtered from it
}

// Table holds the dataset in Struct-of-Arrays format. It is never mutated
// after construction, so one Table can be read from any number of requests.
type Table struct {
	// Dictionary Encoded dimensions (0..N, in first-seen order)
	categories dimension
	regions    dimension
	payments   dimension
	products   dimension
	months     dimension // values are "1".."12"

	// Metric columns (flat arrays)
	units    []int64
	revenues []decimal.Decimal
}

type dictBuilder struct {
	index map[string]int32
	dim   dimension
}

func newDictBuilder(capacity int) *dictBuilder {
	return &dictBuilder{
		index: make(map[string]int32),
		dim:   dimension{ids: make([]int32, 0, capacity)},
	}
}

func (b *dictBuilder) add(s string) {
	id, ok := b.index[s]
	if !ok {
		id = int32(len(b.dim.values))
		b.dim.values = append(b.dim.values, s)
		b.index[s] = id
	}
	b.dim.ids = append(b.dim.ids, id)
}

// NewTable encodes records into a Table, preserving their order.
func NewTable(records []models.Record) *Table {
	n := len(records)
	cat, reg, pay, prod, mon := newDictBuilder(n), newDictBuilder(n), newDictBuilder(n), newDictBuilder(n), newDictBuilder(n)
	t := &Table{
		units:    make([]int64, n),
		revenues: make([]decimal.Decimal, n),
	}
	for i, r := range records {
		cat.add(r.Category)
		reg.add(r.Region)
		pay.add(r.PaymentMethod)
		prod.add(r.ProductName)
		mon.add(strconv.Itoa(r.Month))
		t.units[i] = r.UnitsSold
		t.revenues[i] = r.TotalRevenue
	}
	t.categories, t.regions, t.payments, t.products, t.months = cat.dim, reg.dim, pay.dim, prod.dim, mon.dim
	return t
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.revenues) }

// Record rebuilds the i-th record.
func (t *Table) Record(i int) models.Record {
	month, _ := strconv.Atoi(t.months.values[t.months.ids[i]])
	return models.Record{
		Category:      t.categories.values[t.categories.ids[i]],
		Region:        t.regions.values[t.regions.ids[i]],
		PaymentMethod: t.payments.values[t.payments.ids[i]],
		ProductName:   t.products.values[t.products.ids[i]],
		Month:         month,
		UnitsSold:     t.units[i],
		TotalRevenue:  t.revenues[i],
	}
}

// Records returns a copy of every record in table order.
func (t *Table) Records() []models.Record {
	out := make([]models.Record, t.Len())
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}

// Distinct returns the values of a dimension column present in t, in the
// order they first appeared in the loaded input. Nil for non-dimensions.
func (t *Table) Distinct(col Column) []string {
	d := t.dim(col)
	if d == nil {
		return nil
	}
	seen := make([]bool, len(d.values))
	for _, id := range d.ids {
		seen[id] = true
	}
	out := make([]string, 0, len(d.values))
	for id, ok := range seen {
		if ok {
			out = append(out, d.values[id])
		}
	}
	return out
}

func (t *Table) dim(col Column) *dimension {
	switch col {
	case ColumnCategory:
		return &t.categories
	case ColumnRegion:
		return &t.regions
	case ColumnPayment:
		return &t.payments
	case ColumnProduct:
		return &t.products
	case ColumnMonth:
		return &t.months
	}
	return nil
}

// metricAt returns metric column col at row i. Callers check col.IsMetric.
func (t *Table) metricAt(col Column, i int) decimal.Decimal {
	if col == ColumnUnits {
		return decimal.NewFromInt(t.units[i])
	}
	return t.revenues[i]
}

// selectRows builds a view holding rows keep (ascending) and sharing t's dictionaries.
func (t *Table) selectRows(keep []int) *Table {
	pick := func(d dimension) dimension {
		ids := make([]int32, len(keep))
		for k, i := range keep {
			ids[k] = d.ids[i]
		}
		return dimension{ids: ids, values: d.values}
	}
	out := &Table{
		categories: pick(t.categories),
		regions:    pick(t.regions),
		payments:   pick(t.payments),
		products:   pick(t.products),
		months:     pick(t.months),
		units:      make([]int64, len(keep)),
		revenues:   make([]decimal.Decimal, len(keep)),
	}
	for k, i := range keep {
		out.units[k] = t.units[i]
		out.revenues[k] = t.revenues[i]
	}
	return out
}
