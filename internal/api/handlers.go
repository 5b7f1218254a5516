package api

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"sync/atomic"

	"salesdash/internal/engine"
	"salesdash/internal/log"
	"salesdash/internal/models"
	"salesdash/internal/presenter"

	"github.com/labstack/echo/v4"
)

const tableKey = "table"

type Handler struct {
	table  atomic.Pointer[engine.Table]
	topN   int
	logger *log.Logger
}

// NewHandler creates a handler serving table. A nil table means the
// dataset is still loading; requests get 503 until SetTable is called.
func NewHandler(table *engine.Table, topN int, logger *log.Logger) *Handler {
	if topN <= 0 {
		topN = engine.DefaultTopN
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	h := &Handler{topN: topN, logger: logger.WithComponent(log.ComponentHTTP)}
	if table != nil {
		h.table.Store(table)
	}
	return h
}

// SetTable publishes a loaded table to all subsequent requests.
func (h *Handler) SetTable(t *engine.Table) {
	h.table.Store(t)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)

	api := e.Group("/api", h.requireTable)
	api.GET("/filters", h.GetFilters)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/revenue/total", h.GetTotalRevenue)
	api.GET("/revenue/average", h.GetAverageRevenue)
	api.GET("/revenue/by/:column", h.GetRevenueBy)
	api.GET("/transactions/by/:column", h.GetTransactionsBy)
	api.GET("/regions/top", h.GetTopRegion)
	api.GET("/sales/monthly", h.GetMonthlySales)
	api.GET("/products/top", h.GetTopProducts)
	api.GET("/charts/:chart", h.GetChart)
	api.GET("/export/xlsx", h.ExportXLSX)
	api.GET("/export/arrow", h.ExportArrow)
}

// requireTable answers 503 while the dataset is loading.
func (h *Handler) requireTable(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		t := h.table.Load()
		if t == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is still loading")
		}
		c.Set(tableKey, t)
		return next(c)
	}
}

// filtered applies the request's filter parameters to the loaded table.
func filtered(c echo.Context) (*engine.Table, error) {
	spec, err := parseFilterSpec(c.QueryParams())
	if err != nil {
		return nil, toHTTPError(err)
	}
	return engine.Filter(c.Get(tableKey).(*engine.Table), spec), nil
}

// toHTTPError maps domain errors onto status codes.
func toHTTPError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidFilter), errors.Is(err, engine.ErrUnknownColumn):
		code = http.StatusBadRequest
	case errors.Is(err, presenter.ErrUnknownChart):
		code = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidAggregation), errors.Is(err, presenter.ErrNoData):
		code = http.StatusUnprocessableEntity
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(c echo.Context) error {
	t := h.table.Load()
	if t == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ready", "records": t.Len()})
}

// GetFilters lists the selectable values of each filter, i.e. the default selection.
func (h *Handler) GetFilters(c echo.Context) error {
	t := c.Get(tableKey).(*engine.Table)

	months := make([]int, 0, 12)
	for _, m := range t.Distinct(engine.ColumnMonth) {
		months = append(months, engine.MonthNumber(m))
	}
	slices.Sort(months)

	return c.JSON(http.StatusOK, models.FilterOptions{
		Categories:     t.Distinct(engine.ColumnCategory),
		Regions:        t.Distinct(engine.ColumnRegion),
		PaymentMethods: t.Distinct(engine.ColumnPayment),
		Months:         months,
	})
}

func (h *Handler) dashboard(c echo.Context) (*models.DashboardData, error) {
	spec, err := parseFilterSpec(c.QueryParams())
	if err != nil {
		return nil, toHTTPError(err)
	}
	data := engine.BuildDashboard(c.Get(tableKey).(*engine.Table), spec, h.topN)
	if len(data.Unavailable) > 0 {
		h.logger.WithComponent(log.ComponentEngine).Debug("dashboard views unavailable", "views", len(data.Unavailable), log.FieldRows, data.Records)
	}
	return data, nil
}

func (h *Handler) GetDashboard(c echo.Context) error {
	data, err := h.dashboard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

func (h *Handler) GetTotalRevenue(c echo.Context) error {
	t, err := filtered(c)
	if err != nil {
		return err
	}
	total, err := engine.SumOf(t, engine.ColumnRevenue)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"total_revenue": total, "records": t.Len()})
}

// GetAverageRevenue returns null for the average when no record matches.
func (h *Handler) GetAverageRevenue(c echo.Context) error {
	t, err := filtered(c)
	if err != nil {
		return err
	}
	mean, err := engine.MeanOf(t, engine.ColumnRevenue)
	if err != nil {
		return toHTTPError(err)
	}
	if mean.Valid {
		mean.Decimal = mean.Decimal.Round(2)
	}
	return c.JSON(http.StatusOK, map[string]any{"average_revenue": mean, "records": t.Len()})
}

func (h *Handler) GetTopRegion(c echo.Context) error {
	t, err := filtered(c)
	if err != nil {
		return err
	}
	top, err := engine.TopBySum(t, engine.ColumnRegion, engine.ColumnRevenue)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, models.TopRegion{Name: top.Label, Revenue: top.Value})
}

// monthly sales
func (h *Handler) GetMonthlySales(c echo.Context) error {
	t, err := filtered(c)
	if err != nil {
		return err
	}
	groups, err := engine.SumByMonth(t, engine.ColumnRevenue)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, engine.MonthlyItems(groups))
}

// GetRevenueBy returns a page of revenue totals grouped by :column, largest first.
func (h *Handler) GetRevenueBy(c echo.Context) error {
	col, err := parseColumn(c.Param("column"))
	if err != nil {
		return toHTTPError(err)
	}
	t, err := filtered(c)
	if err != nil {
		return err
	}
	groups, err := engine.SumByGroup(t, col, engine.ColumnRevenue)
	if err != nil {
		return toHTTPError(err)
	}

	total := len(groups)
	limit, offset := getPaginationParams(c, total)
	start := min(offset, total)
	end := start + min(limit, total-start)
	items := make([]models.GroupItem, 0, end-start)
	for _, g := range groups[start:end] {
		items = append(items, models.GroupItem{Name: g.Label, Revenue: g.Value, Transactions: g.Count})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":   items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetTransactionsBy(c echo.Context) error {
	col, err := parseColumn(c.Param("column"))
	if err != nil {
		return toHTTPError(err)
	}
	t, err := filtered(c)
	if err != nil {
		return err
	}
	groups, err := engine.CountBy(t, col)
	if err != nil {
		return toHTTPError(err)
	}
	items := make([]models.CountItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, models.CountItem{Name: g.Label, Transactions: g.Count})
	}
	return c.JSON(http.StatusOK, items)
}

// returns Top N products by units or revenue
func (h *Handler) GetTopProducts(c echo.Context) error {
	metric := engine.ColumnRevenue
	switch c.QueryParam("metric") {
	case "", "revenue":
	case "units":
		metric = engine.ColumnUnits
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "metric must be units or revenue")
	}

	t, err := filtered(c)
	if err != nil {
		return err
	}
	limit, _ := getPaginationParams(c, h.topN)
	groups, err := engine.TopN(t, engine.ColumnProduct, metric, limit)
	if err != nil {
		return toHTTPError(err)
	}
	items := make([]models.TopItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, models.TopItem{Name: g.Label, Value: g.Value})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetChart(c echo.Context) error {
	data, err := h.dashboard(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := presenter.RenderChart(&buf, c.Param("chart"), data); err != nil {
		return toHTTPError(err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) ExportXLSX(c echo.Context) error {
	data, err := h.dashboard(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := presenter.WriteWorkbook(&buf, data); err != nil {
		return toHTTPError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales-dashboard.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportArrow streams the filtered records in the Arrow IPC stream format.
func (h *Handler) ExportArrow(c echo.Context) error {
	t, err := filtered(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := engine.WriteArrow(&buf, t); err != nil {
		return toHTTPError(err)
	}
	return c.Blob(http.StatusOK, "application/vnd.apache.arrow.stream", buf.Bytes())
}
