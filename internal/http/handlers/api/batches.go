package api

import (
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// batchIngredientRequest 批次原料请求
type batchIngredientRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Cost     float64 `json:"cost"`
}

// createBatchRequest 创建生产批次请求
type createBatchRequest struct {
	ProductID       uint                     `json:"product_id"`
	VariationID     uint                     `json:"variation_id"`
	PlannedQuantity int                      `json:"planned_quantity"`
	ProductionDate  string                   `json:"production_date"`
	Notes           string                   `json:"notes"`
	Ingredients     []batchIngredientRequest `json:"ingredients"`
}

// updateBatchRequest 更新生产批次请求，ingredients 非 nil 时整批替换
type updateBatchRequest struct {
	PlannedQuantity *int                     `json:"planned_quantity"`
	ProductionDate  *string                  `json:"production_date"`
	Notes           *string                  `json:"notes"`
	Ingredients     []batchIngredientRequest `json:"ingredients"`
}

// completeBatchRequest 完成批次请求
type completeBatchRequest struct {
	ProducedQuantity int     `json:"produced_quantity"`
	Notes            *string `json:"notes"`
}

func ingredientInputsFromRequest(ingredients []batchIngredientRequest) []service.BatchIngredientInput {
	if ingredients == nil {
		return nil
	}
	inputs := make([]service.BatchIngredientInput, 0, len(ingredients))
	for _, ingredient := range ingredients {
		inputs = append(inputs, service.BatchIngredientInput{
			Name:     ingredient.Name,
			Quantity: decimal.NewFromFloat(ingredient.Quantity),
			Unit:     ingredient.Unit,
			Cost:     decimal.NewFromFloat(ingredient.Cost),
		})
	}
	return inputs
}

// ListBatches 生产批次列表
func (h *Handler) ListBatches(c *gin.Context) {
	page, limit := shared.ParsePagination(c)
	filter := repository.BatchListFilter{
		Page:        page,
		PageSize:    limit,
		Status:      strings.TrimSpace(c.Query("status")),
		ProductID:   shared.ParseUintQuery(c, "product_id"),
		VariationID: shared.ParseUintQuery(c, "variation_id"),
		DateFrom:    shared.ParseDateQuery(c, "date_from"),
		DateTo:      shared.ParseDateQuery(c, "date_to"),
	}

	batches, total, err := h.BatchService.ListBatches(filter)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.Paginated(c, "batches", batches, response.NewPagination(page, limit, total))
}

// GetBatch 批次详情
func (h *Handler) GetBatch(c *gin.Context) {
	batchID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid batch id")
		return
	}
	batch, err := h.BatchService.GetBatch(batchID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"batch": batch})
}

// CreateBatch 创建生产批次
func (h *Handler) CreateBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	productionDate, ok := parseDateValue(req.ProductionDate)
	if !ok {
		response.BadRequest(c, "Invalid production_date format")
		return
	}

	batch, err := h.BatchService.CreateBatch(service.CreateBatchInput{
		ProductID:       req.ProductID,
		VariationID:     req.VariationID,
		PlannedQuantity: req.PlannedQuantity,
		ProductionDate:  productionDate,
		Notes:           req.Notes,
		CreatedBy:       shared.CurrentUserID(c),
		Ingredients:     ingredientInputsFromRequest(req.Ingredients),
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "batch": batch, "id": batch.ID, "batch_number": batch.BatchNumber})
}

// UpdateBatch 更新生产批次
func (h *Handler) UpdateBatch(c *gin.Context) {
	batchID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid batch id")
		return
	}
	var req updateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := service.UpdateBatchInput{
		PlannedQuantity: req.PlannedQuantity,
		Notes:           req.Notes,
		Ingredients:     ingredientInputsFromRequest(req.Ingredients),
	}
	if req.ProductionDate != nil {
		productionDate, ok := parseDateValue(*req.ProductionDate)
		if !ok {
			response.BadRequest(c, "Invalid production_date format")
			return
		}
		input.ProductionDate = productionDate
	}

	batch, err := h.BatchService.UpdateBatch(batchID, input)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "batch": batch})
}

// StartBatch 开始生产
func (h *Handler) StartBatch(c *gin.Context) {
	batchID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid batch id")
		return
	}
	batch, err := h.BatchService.StartBatch(batchID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "batch": batch})
}

// CompleteBatch 完成生产：成本汇总并入库
func (h *Handler) CompleteBatch(c *gin.Context) {
	batchID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid batch id")
		return
	}
	var req completeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	batch, err := h.BatchService.CompleteBatch(batchID, service.CompleteBatchInput{
		ProducedQuantity: req.ProducedQuantity,
		Notes:            req.Notes,
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "batch": batch})
}

// CancelBatch 取消批次
func (h *Handler) CancelBatch(c *gin.Context) {
	batchID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid batch id")
		return
	}
	batch, err := h.BatchService.CancelBatch(batchID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "batch": batch})
}
