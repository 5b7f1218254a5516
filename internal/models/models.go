package models

import "github.com/shopspring/decimal"

// Record is one sales transaction.
type Record struct {
	Category      string          `json:"product_category"`
	Region        string          `json:"region"`
	PaymentMethod string          `json:"payment_method"`
	ProductName   string          `json:"product_name"`
	Month         int             `json:"month"`
	UnitsSold     int64           `json:"units_sold"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// Metric keys used in DashboardData.Unavailable.
const (
	MetricTotalRevenue           = "total_revenue"
	MetricTopRegion              = "top_region"
	MetricAverageRevenue         = "average_revenue"
	MetricMonthlySales           = "monthly_sales"
	MetricRevenueByCategory      = "revenue_by_category"
	MetricRevenueByRegion        = "revenue_by_region"
	MetricTransactionsByPayment  = "transactions_by_payment_method"
	MetricTransactionsByCategory = "transactions_by_category"
	MetricTopProductsByUnits     = "top_products_by_units"
	MetricTopProductsByRevenue   = "top_products_by_revenue"
)

type DashboardData struct {
	Records        int                 `json:"records"`
	TotalRevenue   decimal.Decimal     `json:"total_revenue"`
	TopRegion      *TopRegion          `json:"top_region"`
	AverageRevenue decimal.NullDecimal `json:"average_revenue"`

	MonthlySales           []MonthlyItem `json:"monthly_sales"`
	RevenueByCategory      []GroupItem   `json:"revenue_by_category"`
	RevenueByRegion        []GroupItem   `json:"revenue_by_region"`
	TransactionsByPayment  []CountItem   `json:"transactions_by_payment_method"`
	TransactionsByCategory []CountItem   `json:"transactions_by_category"`
	TopProductsByUnits     []TopItem     `json:"top_products_by_units"`
	TopProductsByRevenue   []TopItem     `json:"top_products_by_revenue"`

	// Unavailable maps a metric key to the reason it could not be computed.
	Unavailable map[string]string `json:"unavailable,omitempty"`
}

type TopRegion struct {
	Name    string          `json:"region"`
	Revenue decimal.Decimal `json:"revenue"`
}

type MonthlyItem struct {
	Month  int             `json:"month"`
	Label  string          `json:"label"`
	Volume decimal.Decimal `json:"sales"`
}

type GroupItem struct {
	Name         string          `json:"name"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

type CountItem struct {
	Name         string `json:"name"`
	Transactions int    `json:"transactions"`
}

type TopItem struct {
	Name  string          `json:"product_name"`
	Value decimal.Decimal `json:"value"`
}

// FilterOptions lists the selectable values of each filterable column.
type FilterOptions struct {
	Categories     []string `json:"category"`
	Regions        []string `json:"region"`
	PaymentMethods []string `json:"payment"`
	Months         []int    `json:"month"`
}
