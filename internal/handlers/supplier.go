// internal/handlers/supplier.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockpilot/inventory-backend/internal/services"
	"github.com/stockpilot/inventory-backend/internal/utils"
)

type SupplierHandler struct {
	supplierService  *services.SupplierService
	dashboardService *services.DashboardService
}

func NewSupplierHandler(supplierService *services.SupplierService, dashboardService *services.DashboardService) *SupplierHandler {
	return &SupplierHandler{
		supplierService:  supplierService,
		dashboardService: dashboardService,
	}
}

// GET /suppliers
func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.supplierService.GetSuppliers(c.Query("search"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, suppliers)
}

// GET /suppliers/stats
func (h *SupplierHandler) GetSupplierStats(c *gin.Context) {
	stats, err := h.dashboardService.GetSupplierStats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid supplier ID", nil)
		return
	}

	supplier, err := h.supplierService.GetSupplier(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, supplier)
}

// POST /suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req services.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	supplier, err := h.supplierService.CreateSupplier(&req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, supplier)
}

// PUT /suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid supplier ID", nil)
		return
	}

	var req services.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	supplier, err := h.supplierService.UpdateSupplier(id, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, supplier)
}

// DELETE /suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid supplier ID", nil)
		return
	}

	if err := h.supplierService.DeleteSupplier(id); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Supplier deleted successfully"})
}
