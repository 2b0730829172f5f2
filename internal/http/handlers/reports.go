package handlers

import (
	"net/http"

	"storepulse/internal/analytics"
	"storepulse/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportsHandler handles analytics and reporting endpoints
type ReportsHandler struct {
	reports *services.ReportService
	export  *services.ExportService
}

// NewReportsHandler creates a new reports handler. The export service
// may be nil when S3 is not configured.
func NewReportsHandler(reports *services.ReportService, export *services.ExportService) *ReportsHandler {
	return &ReportsHandler{reports: reports, export: export}
}

// GetOverview godoc
// @Summary Get KPI overview
// @Description Get order, revenue, product and customer KPIs for a shop set and date range
// @Tags analytics
// @Produce json
// @Param shop_ids query string false "Comma-separated shop UUIDs"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} services.OverviewResponse
// @Failure 500 {object} map[string]string
// @Router /analytics/overview [get]
func (h *ReportsHandler) GetOverview(c echo.Context) error {
	filter := reportFilterFromQuery(c)

	overview, err := h.reports.Overview(c.Request().Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute overview")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute overview"})
	}
	return c.JSON(http.StatusOK, overview)
}

// GetOrdersReport godoc
// @Summary Get orders time series
// @Description Get revenue/order/customer counts bucketed by calendar period
// @Tags reports
// @Produce json
// @Param granularity query string false "Bucket granularity (day, week, month, year)" default(month)
// @Param shop_ids query string false "Comma-separated shop UUIDs"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} services.OrdersReportResponse
// @Failure 500 {object} map[string]string
// @Router /reports/orders [get]
func (h *ReportsHandler) GetOrdersReport(c echo.Context) error {
	filter := reportFilterFromQuery(c)
	granularity := analytics.ParseGranularity(c.QueryParam("granularity"))

	report, err := h.reports.OrdersReport(c.Request().Context(), filter, granularity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute orders report")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute orders report"})
	}
	return c.JSON(http.StatusOK, report)
}

// GetCustomersReport godoc
// @Summary Get customer segmentation
// @Description Get new vs returning customer counts and revenue for the period
// @Tags reports
// @Produce json
// @Param shop_ids query string false "Comma-separated shop UUIDs"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} services.CustomersReportResponse
// @Failure 500 {object} map[string]string
// @Router /reports/customers [get]
func (h *ReportsHandler) GetCustomersReport(c echo.Context) error {
	filter := reportFilterFromQuery(c)

	report, err := h.reports.CustomersReport(c.Request().Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute customers report")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute customers report"})
	}
	return c.JSON(http.StatusOK, report)
}

// GetProductsReport godoc
// @Summary Get product performance ranking
// @Description Get ranked product performance merged from unit, revenue and repeat-customer aggregates
// @Tags reports
// @Produce json
// @Param sort query string false "Sort field (revenue, units, orders, repeat_rate, repeat_customers)" default(revenue)
// @Param direction query string false "Sort direction (asc, desc)" default(desc)
// @Param limit query int false "Row limit, clamped to [1,500]" default(50)
// @Param q query string false "Free-text search across name/code/brand"
// @Param shop_ids query string false "Comma-separated shop UUIDs"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} services.ProductsReportResponse
// @Failure 500 {object} map[string]string
// @Router /reports/products [get]
func (h *ReportsHandler) GetProductsReport(c echo.Context) error {
	filter := reportFilterFromQuery(c)

	report, err := h.reports.ProductsReport(
		c.Request().Context(),
		filter,
		c.QueryParam("sort"),
		c.QueryParam("direction"),
		limitFromQuery(c),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute products report")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute products report"})
	}
	return c.JSON(http.StatusOK, report)
}

// GetBreakdowns godoc
// @Summary Get payment/shipping/status breakdowns
// @Description Get order counts and shares grouped by resolved payment method, shipping method and status category
// @Tags analytics
// @Produce json
// @Param shop_ids query string false "Comma-separated shop UUIDs"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} services.BreakdownsResponse
// @Failure 500 {object} map[string]string
// @Router /analytics/breakdowns [get]
func (h *ReportsHandler) GetBreakdowns(c echo.Context) error {
	filter := reportFilterFromQuery(c)

	breakdowns, err := h.reports.Breakdowns(c.Request().Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute breakdowns")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute breakdowns"})
	}
	return c.JSON(http.StatusOK, breakdowns)
}

// ExportProductsReport godoc
// @Summary Export the products report as CSV
// @Description Compute the products report and upload it as CSV to object storage
// @Tags reports
// @Produce json
// @Param sort query string false "Sort field (revenue, units, orders, repeat_rate, repeat_customers)" default(revenue)
// @Param direction query string false "Sort direction (asc, desc)" default(desc)
// @Param limit query int false "Row limit, clamped to [1,500]" default(50)
// @Param shop_ids query string false "Comma-separated shop UUIDs"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /reports/products/export [post]
func (h *ReportsHandler) ExportProductsReport(c echo.Context) error {
	if h.export == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Export storage not configured"})
	}

	filter := reportFilterFromQuery(c)
	report, err := h.reports.ProductsReport(
		c.Request().Context(),
		filter,
		c.QueryParam("sort"),
		c.QueryParam("direction"),
		limitFromQuery(c),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute products report for export")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute products report"})
	}

	key, err := h.export.ExportProductsCSV(report)
	if err != nil {
		log.Error().Err(err).Msg("Failed to export products report")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to export products report"})
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key})
}
