package api

import (
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// recordStockTransactionRequest 库存流水请求
type recordStockTransactionRequest struct {
	VariationID uint   `json:"variation_id"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes"`
}

// RecordStockTransaction 记录库存流水
func (h *Handler) RecordStockTransaction(c *gin.Context) {
	var req recordStockTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	txn, err := h.StockService.RecordTransaction(service.RecordTransactionInput{
		VariationID: req.VariationID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		Notes:       req.Notes,
		CreatedBy:   shared.CurrentUserID(c),
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "transaction": txn, "id": txn.ID})
}

// ListStockTransactions 库存流水列表
func (h *Handler) ListStockTransactions(c *gin.Context) {
	page, limit := shared.ParsePagination(c)
	filter := repository.StockTxnListFilter{
		Page:        page,
		PageSize:    limit,
		VariationID: shared.ParseUintQuery(c, "variation_id"),
		Type:        strings.TrimSpace(c.Query("type")),
		BatchID:     shared.ParseUintQuery(c, "batch_id"),
		DateFrom:    shared.ParseDateQuery(c, "date_from"),
		DateTo:      shared.ParseDateQuery(c, "date_to"),
	}

	transactions, total, err := h.StockService.ListTransactions(filter)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.Paginated(c, "transactions", transactions, response.NewPagination(page, limit, total))
}

// ListStockAlerts 缺货预警列表
func (h *Handler) ListStockAlerts(c *gin.Context) {
	alerts, err := h.StockService.ListAlerts()
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"alerts": alerts})
}
