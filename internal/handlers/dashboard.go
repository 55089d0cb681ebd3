// internal/handlers/dashboard.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stockpilot/inventory-backend/internal/services"
	"github.com/stockpilot/inventory-backend/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	reorderService   *services.ReorderService
}

func NewDashboardHandler(dashboardService *services.DashboardService, reorderService *services.ReorderService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		reorderService:   reorderService,
	}
}

// GET /dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *gin.Context) {
	data, err := h.dashboardService.GetDashboardStats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, data)
}

// GET /dashboard/reorder-suggestions
func (h *DashboardHandler) GetReorderSuggestions(c *gin.Context) {
	suggestions, err := h.reorderService.GetReorderSuggestions(c.Request.Context())
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, suggestions)
}

// GET /dashboard/reports?type=
func (h *DashboardHandler) GetInventoryReports(c *gin.Context) {
	report, err := h.dashboardService.GetInventoryReport(c.Query("type"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, report)
}
