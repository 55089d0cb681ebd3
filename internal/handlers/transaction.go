// internal/handlers/transaction.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockpilot/inventory-backend/internal/models"
	"github.com/stockpilot/inventory-backend/internal/services"
	"github.com/stockpilot/inventory-backend/internal/utils"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// GET /transactions
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	filter := services.TransactionFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if txType := c.Query("type"); txType != "" {
		filter.Type = models.TransactionType(txType)
	}

	if productIDStr := c.Query("product"); productIDStr != "" {
		if productID, err := uuid.Parse(productIDStr); err == nil {
			filter.ProductID = &productID
		}
	}

	if from, ok := parseDateQuery(c, "date_from"); ok {
		filter.DateFrom = from
	}
	if to, ok := parseDateQuery(c, "date_to"); ok {
		filter.DateTo = to
	}

	transactions, total, err := h.transactionService.GetTransactions(filter)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(transactions, total, filter.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /transactions/summary
func (h *TransactionHandler) GetTransactionSummary(c *gin.Context) {
	var dateFrom, dateTo *time.Time
	if from, ok := parseDateQuery(c, "date_from"); ok {
		dateFrom = from
	}
	if to, ok := parseDateQuery(c, "date_to"); ok {
		dateTo = to
	}

	summary, err := h.transactionService.GetTransactionSummary(dateFrom, dateTo)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}

// GET /transactions/monthly-stats
func (h *TransactionHandler) GetMonthlyStats(c *gin.Context) {
	stats, err := h.transactionService.GetMonthlyStats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid transaction ID", nil)
		return
	}

	transaction, err := h.transactionService.GetTransaction(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, transaction)
}

// POST /transactions
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req services.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionService.CreateTransaction(&req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, transaction)
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, false
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, true
		}
	}
	return nil, false
}
