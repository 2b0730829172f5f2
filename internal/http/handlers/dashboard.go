package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// DashboardHandler handles dashboard quick-count endpoints
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalShops    int64 `json:"total_shops"`
	ActiveShops   int64 `json:"active_shops"`
	TotalProducts int64 `json:"total_products"`
	TotalVariants int64 `json:"total_variants"`
	TotalOrders   int64 `json:"total_orders"`
}

// GetStats godoc
// @Summary Get dashboard statistics
// @Description Get quick entity counts for the dashboard header
// @Tags dashboard
// @Produce json
// @Success 200 {object} DashboardStats
// @Failure 500 {object} map[string]string
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c echo.Context) error {
	stats := DashboardStats{}

	if err := h.db.Raw("SELECT COUNT(*) FROM shops WHERE deleted_at IS NULL").Scan(&stats.TotalShops).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get shop count"})
	}
	if err := h.db.Raw("SELECT COUNT(*) FROM shops WHERE deleted_at IS NULL AND is_active = true").Scan(&stats.ActiveShops).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get active shop count"})
	}
	if err := h.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL").Scan(&stats.TotalProducts).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get product count"})
	}
	if err := h.db.Raw("SELECT COUNT(*) FROM product_variants WHERE deleted_at IS NULL").Scan(&stats.TotalVariants).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get variant count"})
	}
	if err := h.db.Raw("SELECT COUNT(*) FROM orders WHERE deleted_at IS NULL").Scan(&stats.TotalOrders).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get order count"})
	}

	return c.JSON(http.StatusOK, stats)
}
