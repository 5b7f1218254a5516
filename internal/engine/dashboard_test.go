package engine

import (
	"testing"

	"salesdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDashboard(t *testing.T) {
	data := BuildDashboard(fixture(), FilterSpec{ColumnMonth: {"1", "2", "3"}}, 0)

	// Rows in Q1: 0,1,2,3,4,6
	assert.Equal(t, 6, data.Records)
	assert.Empty(t, data.Unavailable)
	assertDecimal(t, "3195.75", data.TotalRevenue)

	require.NotNil(t, data.TopRegion)
	assert.Equal(t, "North America", data.TopRegion.Name)
	assertDecimal(t, "2050", data.TopRegion.Revenue)

	require.True(t, data.AverageRevenue.Valid)
	assertDecimal(t, "532.625", data.AverageRevenue.Decimal)

	require.Len(t, data.MonthlySales, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{data.MonthlySales[0].Month, data.MonthlySales[1].Month, data.MonthlySales[2].Month})
	assert.Equal(t, "Feb", data.MonthlySales[1].Label)

	assert.Equal(t, "Electronics", data.RevenueByCategory[0].Name)
	assert.Equal(t, "Credit Card", data.TransactionsByPayment[0].Name)
	assert.Equal(t, 3, data.TransactionsByPayment[0].Transactions)
	assert.Equal(t, "Laptop", data.TopProductsByRevenue[0].Name)
	assert.Equal(t, "Novel", data.TopProductsByUnits[0].Name)
}

func TestBuildDashboardDegradesPerMetric(t *testing.T) {
	data := BuildDashboard(fixture(), FilterSpec{ColumnRegion: {}}, DefaultTopN)

	assert.Equal(t, 0, data.Records)
	assert.True(t, data.TotalRevenue.IsZero())
	assert.Nil(t, data.TopRegion)
	assert.False(t, data.AverageRevenue.Valid)

	// Only the views that need a record are marked unavailable
	assert.Contains(t, data.Unavailable, models.MetricTopRegion)
	assert.Contains(t, data.Unavailable, models.MetricAverageRevenue)
	assert.NotContains(t, data.Unavailable, models.MetricTotalRevenue)
	assert.NotContains(t, data.Unavailable, models.MetricTopProductsByUnits)

	assert.NotNil(t, data.MonthlySales)
	assert.Empty(t, data.MonthlySales)
	assert.Empty(t, data.TopProductsByRevenue)
}

func TestBuildDashboardTopN(t *testing.T) {
	data := BuildDashboard(fixture(), nil, 2)
	assert.Len(t, data.TopProductsByRevenue, 2)
	assert.Len(t, data.TopProductsByUnits, 2)
}
