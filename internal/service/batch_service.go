package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/queue"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// batchStatusTransitions 生产批次状态流转表
var batchStatusTransitions = map[string]map[string]bool{
	constants.BatchStatusPlanned: {
		constants.BatchStatusInProgress: true,
		constants.BatchStatusCancelled:  true,
	},
	constants.BatchStatusInProgress: {
		constants.BatchStatusCompleted: true,
		constants.BatchStatusCancelled: true,
	},
}

// BatchService 生产批次服务
type BatchService struct {
	batchRepo     repository.BatchRepository
	productRepo   repository.ProductRepository
	variationRepo repository.VariationRepository
	stockRepo     repository.StockRepository
	queueClient   *queue.Client
	numberPrefix  string
}

// NewBatchService 创建生产批次服务
func NewBatchService(batchRepo repository.BatchRepository, productRepo repository.ProductRepository, variationRepo repository.VariationRepository, stockRepo repository.StockRepository, queueClient *queue.Client) *BatchService {
	return &BatchService{
		batchRepo:     batchRepo,
		productRepo:   productRepo,
		variationRepo: variationRepo,
		stockRepo:     stockRepo,
		queueClient:   queueClient,
		numberPrefix:  "PB",
	}
}

// BatchIngredientInput 批次原料输入
type BatchIngredientInput struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Cost     decimal.Decimal
}

// CreateBatchInput 创建批次输入
type CreateBatchInput struct {
	ProductID       uint
	VariationID     uint
	PlannedQuantity int
	ProductionDate  *time.Time
	Notes           string
	CreatedBy       string
	Ingredients     []BatchIngredientInput
}

// UpdateBatchInput 更新批次输入
// Ingredients 非 nil 时整批替换原料清单。
type UpdateBatchInput struct {
	PlannedQuantity *int
	ProductionDate  *time.Time
	Notes           *string
	Ingredients     []BatchIngredientInput
}

// CompleteBatchInput 完成批次输入
type CompleteBatchInput struct {
	ProducedQuantity int
	Notes            *string
}

// BatchView 批次视图，回填商品与规格信息
type BatchView struct {
	models.ProductionBatch
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
	SKUCode     string `json:"sku_code"`
	BottleSize  string `json:"bottle_size"`
}

// ListBatches 批次列表
func (s *BatchService) ListBatches(filter repository.BatchListFilter) ([]BatchView, int64, error) {
	batches, total, err := s.batchRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	views, err := s.decorateBatches(batches)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// GetBatch 批次详情
func (s *BatchService) GetBatch(batchID uint) (*BatchView, error) {
	batch, err := s.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}
	views, err := s.decorateBatches([]models.ProductionBatch{*batch})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreateBatch 创建生产批次
func (s *BatchService) CreateBatch(input CreateBatchInput) (*BatchView, error) {
	if input.PlannedQuantity <= 0 {
		return nil, newValidationError("Planned quantity must be greater than zero")
	}
	variation, err := s.variationRepo.GetByID(input.VariationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	if variation == nil {
		return nil, ErrVariationNotFound
	}
	if input.ProductID != 0 && variation.ProductID != input.ProductID {
		return nil, newValidationError("Variation does not belong to the selected product")
	}
	ingredients, err := buildBatchIngredients(input.Ingredients)
	if err != nil {
		return nil, err
	}

	batch := &models.ProductionBatch{
		BatchNumber:     s.generateBatchNumber(),
		ProductID:       variation.ProductID,
		VariationID:     variation.ID,
		Status:          constants.BatchStatusPlanned,
		PlannedQuantity: input.PlannedQuantity,
		ProductionDate:  input.ProductionDate,
		Notes:           input.Notes,
		CreatedBy:       input.CreatedBy,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.batchRepo.WithTx(tx).Create(batch, ingredients)
	})
	if err != nil {
		logger.Warnw("batch_create_failed", "batch_number", batch.BatchNumber, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}

	logger.Infow("batch_created",
		"batch_id", batch.ID,
		"batch_number", batch.BatchNumber,
		"variation_id", batch.VariationID,
		"planned_quantity", batch.PlannedQuantity,
	)
	return s.GetBatch(batch.ID)
}

// UpdateBatch 更新批次计划，完成或取消后不可编辑
func (s *BatchService) UpdateBatch(batchID uint, input UpdateBatchInput) (*BatchView, error) {
	batch, err := s.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}
	if batch.Status == constants.BatchStatusCompleted || batch.Status == constants.BatchStatusCancelled {
		return nil, newStateConflictError("Cannot edit a %s batch", batch.Status)
	}

	updates := map[string]interface{}{}
	if input.PlannedQuantity != nil {
		if *input.PlannedQuantity <= 0 {
			return nil, newValidationError("Planned quantity must be greater than zero")
		}
		updates["planned_quantity"] = *input.PlannedQuantity
	}
	if input.ProductionDate != nil {
		updates["production_date"] = *input.ProductionDate
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	var ingredients []models.BatchIngredient
	if input.Ingredients != nil {
		ingredients, err = buildBatchIngredients(input.Ingredients)
		if err != nil {
			return nil, err
		}
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.batchRepo.WithTx(tx)
		if len(updates) > 0 {
			if err := repo.UpdateStatus(batch.ID, batch.Status, updates); err != nil {
				return err
			}
		}
		if input.Ingredients != nil {
			return repo.ReplaceIngredients(batch.ID, ingredients)
		}
		return nil
	})
	if err != nil {
		logger.Warnw("batch_update_failed", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	return s.GetBatch(batchID)
}

// StartBatch 开始生产：planned -> in_progress
func (s *BatchService) StartBatch(batchID uint) (*BatchView, error) {
	batch, err := s.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}
	if !canTransitionBatchStatus(batch.Status, constants.BatchStatusInProgress) {
		return nil, newStateConflictError(
			"Cannot start batch with status: %s", batch.Status,
		)
	}
	updates := map[string]interface{}{}
	if batch.ProductionDate == nil {
		updates["production_date"] = time.Now()
	}
	if err := s.batchRepo.UpdateStatus(batch.ID, constants.BatchStatusInProgress, updates); err != nil {
		logger.Warnw("batch_start_failed", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	logger.Infow("batch_started", "batch_id", batch.ID, "batch_number", batch.BatchNumber)
	return s.GetBatch(batchID)
}

// CompleteBatch 完成生产：汇总成本、折算单瓶成本并入库成品
// 批次状态、库存余额与入库流水在同一事务内落账。
func (s *BatchService) CompleteBatch(batchID uint, input CompleteBatchInput) (*BatchView, error) {
	batch, err := s.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}
	if !canTransitionBatchStatus(batch.Status, constants.BatchStatusCompleted) {
		return nil, newStateConflictError(
			"Cannot complete batch with status: %s", batch.Status,
		)
	}
	if input.ProducedQuantity <= 0 {
		return nil, newValidationError("Produced quantity must be greater than zero")
	}

	totalCost := decimal.Zero
	for _, ingredient := range batch.Ingredients {
		totalCost = totalCost.Add(ingredient.Cost.Decimal)
	}
	totalCost = totalCost.Round(2)
	unitCost := totalCost.Div(decimalFromInt(input.ProducedQuantity)).Round(2)

	now := time.Now()
	updates := map[string]interface{}{
		"produced_quantity": input.ProducedQuantity,
		"total_cost":        models.NewMoneyFromDecimal(totalCost),
		"unit_cost":         models.NewMoneyFromDecimal(unitCost),
		"completed_at":      now,
	}
	if batch.ProductionDate == nil {
		updates["production_date"] = now
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.batchRepo.WithTx(tx).UpdateStatus(batch.ID, constants.BatchStatusCompleted, updates); err != nil {
			return err
		}
		variationRepo := s.variationRepo.WithTx(tx)
		if _, err := variationRepo.AdjustStock(batch.VariationID, input.ProducedQuantity); err != nil {
			return err
		}
		variation, err := variationRepo.GetByID(batch.VariationID)
		if err != nil {
			return err
		}
		if variation == nil {
			return ErrVariationNotFound
		}
		batchID := batch.ID
		return s.stockRepo.WithTx(tx).CreateTransaction(&models.StockTransaction{
			VariationID:  batch.VariationID,
			Type:         constants.StockTxnTypeIn,
			Quantity:     input.ProducedQuantity,
			BalanceAfter: variation.StockQuantity,
			Reason:       "production",
			BatchID:      &batchID,
			CreatedBy:    batch.CreatedBy,
		})
	})
	if err != nil {
		logger.Warnw("batch_complete_failed", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}

	logger.Infow("batch_completed",
		"batch_id", batch.ID,
		"batch_number", batch.BatchNumber,
		"produced_quantity", input.ProducedQuantity,
		"total_cost", totalCost.StringFixed(2),
		"unit_cost", unitCost.StringFixed(2),
	)
	if err := s.queueClient.EnqueueStockLowScan(queue.StockLowScanPayload{Reason: "batch_completed"}); err != nil {
		logger.Warnw("stock_scan_enqueue_failed", "batch_id", batch.ID, "error", err)
	}
	return s.GetBatch(batchID)
}

// CancelBatch 取消批次，已取消的批次重复取消直接返回
func (s *BatchService) CancelBatch(batchID uint) (*BatchView, error) {
	batch, err := s.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}
	if batch.Status == constants.BatchStatusCancelled {
		return s.GetBatch(batchID)
	}
	if !canTransitionBatchStatus(batch.Status, constants.BatchStatusCancelled) {
		return nil, newStateConflictError("Cannot cancel a completed batch")
	}
	if err := s.batchRepo.UpdateStatus(batch.ID, constants.BatchStatusCancelled, nil); err != nil {
		logger.Warnw("batch_cancel_failed", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}
	logger.Infow("batch_cancelled", "batch_id", batch.ID, "batch_number", batch.BatchNumber)
	return s.GetBatch(batchID)
}

// decorateBatches 批量回填商品与规格信息
func (s *BatchService) decorateBatches(batches []models.ProductionBatch) ([]BatchView, error) {
	variationIDs := make([]uint, 0, len(batches))
	seen := make(map[uint]bool)
	for _, batch := range batches {
		if !seen[batch.VariationID] {
			seen[batch.VariationID] = true
			variationIDs = append(variationIDs, batch.VariationID)
		}
	}
	info, err := loadVariationInfo(s.variationRepo, s.productRepo, variationIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchWriteFailed, err)
	}

	views := make([]BatchView, 0, len(batches))
	for _, batch := range batches {
		view := BatchView{ProductionBatch: batch}
		if v, ok := info[batch.VariationID]; ok {
			view.ProductName = v.ProductName
			view.ProductCode = v.ProductCode
			view.SKUCode = v.SKUCode
			view.BottleSize = v.BottleSize
		}
		views = append(views, view)
	}
	return views, nil
}

func canTransitionBatchStatus(from, to string) bool {
	allowed, ok := batchStatusTransitions[from]
	return ok && allowed[to]
}

// generateBatchNumber 生成批次编号：前缀 + 时间戳 + 随机数字
func (s *BatchService) generateBatchNumber() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", s.numberPrefix, now, randNumeric(4))
}

// buildBatchIngredients 校验并装配原料清单
func buildBatchIngredients(inputs []BatchIngredientInput) ([]models.BatchIngredient, error) {
	ingredients := make([]models.BatchIngredient, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, newValidationError("Ingredient name is required for ingredient #%d", i+1)
		}
		if in.Quantity.IsNegative() {
			return nil, newValidationError("Quantity for ingredient %s must not be negative", name)
		}
		if in.Cost.IsNegative() {
			return nil, newValidationError("Cost for ingredient %s must not be negative", name)
		}
		ingredients = append(ingredients, models.BatchIngredient{
			Name:     name,
			Quantity: models.NewMoneyFromDecimal(in.Quantity),
			Unit:     strings.TrimSpace(in.Unit),
			Cost:     models.NewMoneyFromDecimal(in.Cost),
		})
	}
	return ingredients, nil
}
