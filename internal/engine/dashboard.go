package engine

import (
	"errors"
	"time"

	"salesdash/internal/models"
)

// BuildDashboard filters t with spec and computes every dashboard view.
// Views are independent: a view that cannot be computed is recorded in
// Unavailable and left empty, the others are unaffected.
func BuildDashboard(t *Table, spec FilterSpec, topN int) *models.DashboardData {
	if topN <= 0 {
		topN = DefaultTopN
	}
	sel := Filter(t, spec)

	data := &models.DashboardData{
		Records:                sel.Len(),
		MonthlySales:           make([]models.MonthlyItem, 0),
		RevenueByCategory:      make([]models.GroupItem, 0),
		RevenueByRegion:        make([]models.GroupItem, 0),
		TransactionsByPayment:  make([]models.CountItem, 0),
		TransactionsByCategory: make([]models.CountItem, 0),
		TopProductsByUnits:     make([]models.TopItem, 0),
		TopProductsByRevenue:   make([]models.TopItem, 0),
	}

	views := []struct {
		metric string
		build  func() error
	}{
		{models.MetricTotalRevenue, func() (err error) {
			data.TotalRevenue, err = SumOf(sel, ColumnRevenue)
			return err
		}},
		{models.MetricTopRegion, func() error {
			g, err := TopBySum(sel, ColumnRegion, ColumnRevenue)
			if err != nil {
				return err
			}
			data.TopRegion = &models.TopRegion{Name: g.Label, Revenue: g.Value}
			return nil
		}},
		{models.MetricAverageRevenue, func() (err error) {
			data.AverageRevenue, err = MeanOf(sel, ColumnRevenue)
			if err == nil && !data.AverageRevenue.Valid {
				return errNoRecords
			}
			return err
		}},
		{models.MetricMonthlySales, func() error {
			groups, err := SumByMonth(sel, ColumnRevenue)
			if err != nil {
				return err
			}
			data.MonthlySales = MonthlyItems(groups)
			return nil
		}},
		{models.MetricRevenueByCategory, func() (err error) {
			data.RevenueByCategory, err = groupItems(sel, ColumnCategory)
			return err
		}},
		{models.MetricRevenueByRegion, func() (err error) {
			data.RevenueByRegion, err = groupItems(sel, ColumnRegion)
			return err
		}},
		{models.MetricTransactionsByPayment, func() (err error) {
			data.TransactionsByPayment, err = countItems(sel, ColumnPayment)
			return err
		}},
		{models.MetricTransactionsByCategory, func() (err error) {
			data.TransactionsByCategory, err = countItems(sel, ColumnCategory)
			return err
		}},
		{models.MetricTopProductsByUnits, func() (err error) {
			data.TopProductsByUnits, err = topItems(sel, ColumnUnits, topN)
			return err
		}},
		{models.MetricTopProductsByRevenue, func() (err error) {
			data.TopProductsByRevenue, err = topItems(sel, ColumnRevenue, topN)
			return err
		}},
	}

	for _, v := range views {
		if err := v.build(); err != nil {
			if data.Unavailable == nil {
				data.Unavailable = make(map[string]string)
			}
			data.Unavailable[v.metric] = err.Error()
		}
	}
	return data
}

var errNoRecords = errors.New("mean is undefined: no records match the current filters")

// MonthlyItems converts SumByMonth output into chart-ready items.
func MonthlyItems(groups []Group) []models.MonthlyItem {
	items := make([]models.MonthlyItem, 0, len(groups))
	for _, g := range groups {
		m := MonthNumber(g.Label)
		items = append(items, models.MonthlyItem{Month: m, Label: MonthLabel(m), Volume: g.Value})
	}
	return items
}

// MonthLabel returns the short English name of month m ("Jan").
func MonthLabel(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return time.Month(m).String()[:3]
}

func groupItems(t *Table, col Column) ([]models.GroupItem, error) {
	groups, err := SumByGroup(t, col, ColumnRevenue)
	if err != nil {
		return nil, err
	}
	items := make([]models.GroupItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, models.GroupItem{Name: g.Label, Revenue: g.Value, Transactions: g.Count})
	}
	return items, nil
}

func countItems(t *Table, col Column) ([]models.CountItem, error) {
	groups, err := CountBy(t, col)
	if err != nil {
		return nil, err
	}
	items := make([]models.CountItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, models.CountItem{Name: g.Label, Transactions: g.Count})
	}
	return items, nil
}

func topItems(t *Table, metric Column, n int) ([]models.TopItem, error) {
	groups, err := TopN(t, ColumnProduct, metric, n)
	if err != nil {
		return nil, err
	}
	items := make([]models.TopItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, models.TopItem{Name: g.Label, Value: g.Value})
	}
	return items, nil
}
