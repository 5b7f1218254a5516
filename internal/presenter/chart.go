package presenter

import (
	"errors"
	"fmt"
	"io"

	"salesdash/internal/engine"
	"salesdash/internal/models"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrUnknownChart is returned for a chart name not in Charts.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrNoData is returned when the view has nothing to draw.
	ErrNoData = errors.New("no data to chart")
)

// Chart names accepted by RenderChart.
const (
	ChartMonthlySales           = "monthly-sales"
	ChartRevenueByCategory      = "revenue-by-category"
	ChartRevenueByRegion        = "revenue-by-region"
	ChartTransactionsByPayment  = "transactions-by-payment"
	ChartTransactionsByCategory = "transactions-by-category"
	ChartTopProducts            = "top-products"
	ChartTopProductsByUnits     = "top-products-by-units"
)

// Charts lists every chart name in display order.
var Charts = []string{
	ChartMonthlySales,
	ChartRevenueByCategory,
	ChartRevenueByRegion,
	ChartTransactionsByPayment,
	ChartTransactionsByCategory,
	ChartTopProducts,
	ChartTopProductsByUnits,
}

const (
	chartWidth  = 900
	chartHeight = 480
)

// pngChart is satisfied by chart.Chart, chart.BarChart and chart.PieChart.
type pngChart interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// RenderChart draws one dashboard view as a PNG.
func RenderChart(w io.Writer, name string, data *models.DashboardData) error {
	var r pngChart
	var err error
	switch name {
	case ChartMonthlySales:
		r, err = monthlyChart(data.MonthlySales)
	case ChartRevenueByCategory:
		r, err = groupBarChart("Revenue by Category", data.RevenueByCategory)
	case ChartRevenueByRegion:
		r, err = groupBarChart("Revenue by Region", data.RevenueByRegion)
	case ChartTransactionsByPayment:
		r, err = countPieChart("Transactions by Payment Method", data.TransactionsByPayment)
	case ChartTransactionsByCategory:
		r, err = countPieChart("Transactions by Product Category", data.TransactionsByCategory)
	case ChartTopProducts:
		r, err = topProductsChart("Top Products by Revenue", data.TopProductsByRevenue, amountFormatter)
	case ChartTopProductsByUnits:
		r, err = topProductsChart("Top Products by Units Sold", data.TopProductsByUnits, unitsFormatter)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if err != nil {
		return err
	}
	if err := r.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

func amountFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return FormatAmount(f)
	}
	return fmt.Sprint(v)
}

func unitsFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return message.NewPrinter(language.English).Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   col,
		StrokeColor: col,
		StrokeWidth: 1,
	}
}

// monthlyChart plots sales volume against the 12 months of the year.
func monthlyChart(items []models.MonthlyItem) (pngChart, error) {
	if len(items) == 0 {
		return nil, ErrNoData
	}
	xs := make([]float64, 0, len(items))
	ys := make([]float64, 0, len(items))
	maxY := 0.0
	for _, it := range items {
		xs = append(xs, float64(it.Month))
		y := it.Volume.InexactFloat64()
		ys = append(ys, y)
		maxY = max(maxY, y)
	}
	// A single point has no extent; go-chart needs two X values to draw a line
	if len(xs) == 1 {
		xs = append(xs, xs[0]+0.01)
		ys = append(ys, ys[0])
	}
	if maxY <= 0 {
		maxY = 1
	}

	ticks := make([]chart.Tick, 0, 12)
	for m := 1; m <= 12; m++ {
		ticks = append(ticks, chart.Tick{Value: float64(m), Label: engine.MonthLabel(m)})
	}

	return &chart.Chart{
		Title:      "Monthly Sales",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Range: &chart.ContinuousRange{Min: 1, Max: 12}, Ticks: ticks},
		YAxis: chart.YAxis{
			Name:           "Revenue",
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: amountFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Sales",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
		},
	}, nil
}

func groupBarChart(title string, items []models.GroupItem) (pngChart, error) {
	bars := make([]chart.Value, 0, len(items))
	for _, it := range items {
		bars = append(bars, chart.Value{Label: it.Name, Value: it.Revenue.InexactFloat64(), Style: barStyle(chart.ColorBlue)})
	}
	return barChart(title, bars, amountFormatter)
}

func topProductsChart(title string, items []models.TopItem, format chart.ValueFormatter) (pngChart, error) {
	bars := make([]chart.Value, 0, len(items))
	for _, it := range items {
		bars = append(bars, chart.Value{Label: it.Name, Value: it.Value.InexactFloat64(), Style: barStyle(chart.ColorGreen)})
	}
	return barChart(title, bars, format)
}

func barChart(title string, bars []chart.Value, format chart.ValueFormatter) (pngChart, error) {
	maxY := 0.0
	for _, b := range bars {
		maxY = max(maxY, b.Value)
	}
	if len(bars) == 0 || maxY <= 0 {
		return nil, ErrNoData
	}
	// Bars and gaps share the plot width equally
	barWidth := max(4, (chartWidth-120)/(2*len(bars)))
	return &chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: format,
		},
		Bars: bars,
	}, nil
}

func countPieChart(title string, items []models.CountItem) (pngChart, error) {
	values := make([]chart.Value, 0, len(items))
	for _, it := range items {
		if it.Transactions > 0 {
			values = append(values, chart.Value{Label: fmt.Sprintf("%s (%d)", it.Name, it.Transactions), Value: float64(it.Transactions)})
		}
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	return &chart.PieChart{
		Title:  title,
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}, nil
}

// shares returns each value's percentage of the total, rounded to one decimal place.
func shares(values []decimal.Decimal) []decimal.Decimal {
	total := decimal.Sum(decimal.Zero, values...)
	out := make([]decimal.Decimal, len(values))
	if total.IsZero() {
		return out
	}
	for i, v := range values {
		out[i] = v.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
	}
	return out
}
