package handlers

import (
	"storepulse/internal/app"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	reportsHandler := NewReportsHandler(services.ReportService, services.ExportService)
	dashboardHandler := NewDashboardHandler(services.DB)

	analyticsGroup := api.Group("/analytics")
	analyticsGroup.GET("/overview", reportsHandler.GetOverview)
	analyticsGroup.GET("/breakdowns", reportsHandler.GetBreakdowns)

	reportsGroup := api.Group("/reports")
	reportsGroup.GET("/orders", reportsHandler.GetOrdersReport)
	reportsGroup.GET("/customers", reportsHandler.GetCustomersReport)
	reportsGroup.GET("/products", reportsHandler.GetProductsReport)
	reportsGroup.POST("/products/export", reportsHandler.ExportProductsReport)

	api.GET("/dashboard/stats", dashboardHandler.GetStats)
}
