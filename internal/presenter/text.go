package presenter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders v with two decimals and thousands separators ("1,234.50").
func FormatAmount(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%.2f", v)
}

// FormatDecimal is FormatAmount for exact amounts, rounded half away from zero.
func FormatDecimal(d decimal.Decimal) string {
	return FormatAmount(d.Round(2).InexactFloat64())
}

// WriteReport writes a plain-text rendition of the dashboard.
func WriteReport(w io.Writer, data *models.DashboardData) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// 1. Headline figures
	p.Fprintf(tw, "SALES DASHBOARD\n\n")
	p.Fprintf(tw, "Records\t%d\n", data.Records)
	p.Fprintf(tw, "Total revenue\t%s\n", headline(data, models.MetricTotalRevenue, FormatDecimal(data.TotalRevenue)))
	topRegion := ""
	if data.TopRegion != nil {
		topRegion = fmt.Sprintf("%s (%s)", data.TopRegion.Name, FormatDecimal(data.TopRegion.Revenue))
	}
	p.Fprintf(tw, "Top region\t%s\n", headline(data, models.MetricTopRegion, topRegion))
	average := ""
	if data.AverageRevenue.Valid {
		average = FormatDecimal(data.AverageRevenue.Decimal)
	}
	p.Fprintf(tw, "Average revenue\t%s\n", headline(data, models.MetricAverageRevenue, average))

	// 2. Breakdowns
	section(tw, "Monthly sales")
	for _, it := range data.MonthlySales {
		p.Fprintf(tw, "  %s\t%s\n", it.Label, FormatDecimal(it.Volume))
	}

	section(tw, "Revenue by category")
	for _, it := range data.RevenueByCategory {
		p.Fprintf(tw, "  %s\t%s\t%d tx\n", it.Name, FormatDecimal(it.Revenue), it.Transactions)
	}

	section(tw, "Revenue by region")
	for _, it := range data.RevenueByRegion {
		p.Fprintf(tw, "  %s\t%s\t%d tx\n", it.Name, FormatDecimal(it.Revenue), it.Transactions)
	}

	countSection(p, tw, "Transactions by payment method", data.TransactionsByPayment)
	countSection(p, tw, "Transactions by category", data.TransactionsByCategory)

	section(tw, "Top products by units")
	for i, it := range data.TopProductsByUnits {
		p.Fprintf(tw, "  %d. %s\t%s\n", i+1, it.Name, it.Value.String())
	}

	section(tw, "Top products by revenue")
	for i, it := range data.TopProductsByRevenue {
		p.Fprintf(tw, "  %d. %s\t%s\n", i+1, it.Name, FormatDecimal(it.Value))
	}

	return tw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}

// countSection lists transaction counts with each one's share of the total.
func countSection(p *message.Printer, w io.Writer, title string, items []models.CountItem) {
	section(w, title)
	counts := make([]decimal.Decimal, len(items))
	for i, it := range items {
		counts[i] = decimal.NewFromInt(int64(it.Transactions))
	}
	pct := shares(counts)
	for i, it := range items {
		p.Fprintf(w, "  %s\t%d\t%s%%\n", it.Name, it.Transactions, pct[i].StringFixed(1))
	}
}

// headline returns value, or "n/a" with the reason when the metric is unavailable.
func headline(data *models.DashboardData, metric, value string) string {
	if reason, ok := data.Unavailable[metric]; ok {
		return "n/a (" + reason + ")"
	}
	return value
}
