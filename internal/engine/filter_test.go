package engine

import (
	"strconv"
	"testing"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

// fixture has 8 rows across 3 categories, 3 regions, 3 payment methods and 4 months.
func fixture() *Table {
	return NewTable([]models.Record{
		rec("Electronics", "North America", "Credit Card", "Laptop", 1, 2, "2000.00"),
		rec("Clothing", "Europe", "PayPal", "Jeans", 1, 3, "150.00"),
		rec("Electronics", "Asia", "Debit Card", "Phone", 2, 1, "800.00"),
		rec("Books", "Europe", "Credit Card", "Novel", 3, 5, "75.50"),
		rec("Clothing", "North America", "Credit Card", "Jeans", 3, 1, "50.00"),
		rec("Electronics", "Europe", "PayPal", "Laptop", 5, 1, "1000.00"),
		rec("Books", "Asia", "PayPal", "Atlas", 2, 4, "120.25"),
		rec("Electronics", "North America", "Debit Card", "Phone", 5, 2, "1600.00"),
	})
}

func TestFilterDefaultSpecIsIdentity(t *testing.T) {
	table := fixture()
	got := Filter(table, DefaultFilterSpec(table))
	assert.Equal(t, table.Records(), got.Records())
}

func TestFilterEmptySpecIsIdentity(t *testing.T) {
	table := fixture()
	assert.Equal(t, table.Records(), Filter(table, FilterSpec{}).Records())
	assert.Equal(t, table.Records(), Filter(table, nil).Records())
}

func TestFilterEmptyAllowedSet(t *testing.T) {
	table := fixture()
	for _, col := range FilterColumns {
		spec := DefaultFilterSpec(table)
		spec[col] = []string{}
		got := Filter(table, spec)
		assert.Equal(t, 0, got.Len(), "empty set for %s", col)
	}

	// nil slice under a present key is still an empty set
	assert.Equal(t, 0, Filter(table, FilterSpec{ColumnRegion: nil}).Len())
}

func TestFilterMatchesBruteForce(t *testing.T) {
	table := fixture()
	specs := []FilterSpec{
		{ColumnRegion: {"Europe"}},
		{ColumnCategory: {"Electronics", "Books"}, ColumnPayment: {"PayPal"}},
		{ColumnMonth: {"1", "02"}, ColumnRegion: {"North America", "Asia"}},
		{ColumnCategory: {"Toys"}},
		{ColumnProduct: {"Jeans"}, ColumnMonth: {"3"}},
	}

	for _, spec := range specs {
		got := Filter(table, spec)

		var want []models.Record
		wantSum := decimal.Zero
		for _, r := range table.Records() {
			if matches(r, spec) {
				want = append(want, r)
				wantSum = wantSum.Add(r.TotalRevenue)
			}
		}

		assert.Equal(t, len(want), got.Len(), "spec %v", spec)
		if len(want) > 0 {
			assert.Equal(t, want, got.Records(), "spec %v", spec)
		}
		sum, err := SumOf(got, ColumnRevenue)
		require.NoError(t, err)
		assert.True(t, wantSum.Equal(sum), "spec %v: sum %s, want %s", spec, sum, wantSum)
	}
}

func matches(r models.Record, spec FilterSpec) bool {
	value := map[Column]string{
		ColumnCategory: r.Category,
		ColumnRegion:   r.Region,
		ColumnPayment:  r.PaymentMethod,
		ColumnProduct:  r.ProductName,
		ColumnMonth:    strconv.Itoa(r.Month),
	}
	for col, allowed := range spec {
		found := false
		for _, a := range allowed {
			if col == ColumnMonth {
				a = normalizeMonth(a)
			}
			if a == value[col] {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestFilterPreservesOrderAndParent(t *testing.T) {
	table := fixture()
	got := Filter(table, FilterSpec{ColumnCategory: {"Electronics"}})

	require.Equal(t, 4, got.Len())
	assert.Equal(t, []string{"Laptop", "Phone", "Laptop", "Phone"}, []string{
		got.Record(0).ProductName, got.Record(1).ProductName, got.Record(2).ProductName, got.Record(3).ProductName,
	})
	assert.Equal(t, 8, table.Len(), "parent table must be untouched")

	// a filtered view only reports values it still holds, in dictionary order
	assert.Equal(t, []string{"North America", "Europe", "Asia"}, got.Distinct(ColumnRegion))
	assert.Equal(t, []string{"Laptop", "Phone"}, got.Distinct(ColumnProduct))
}

func TestFilterSpecValidate(t *testing.T) {
	assert.NoError(t, FilterSpec{ColumnRegion: {"Asia"}, ColumnMonth: {"1"}}.Validate())
	assert.ErrorIs(t, FilterSpec{ColumnRevenue: {"10"}}.Validate(), ErrUnknownColumn)
}

func TestParseMonthValues(t *testing.T) {
	got, err := ParseMonthValues([]string{"1", "02", "mar", "December"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "12"}, got)

	_, err = ParseMonthValues([]string{"13"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = ParseMonthValues([]string{"Smarch"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
