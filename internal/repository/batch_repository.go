package repository

import (
	"errors"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// BatchRepository 生产批次数据访问接口
type BatchRepository interface {
	Create(batch *models.ProductionBatch, ingredients []models.BatchIngredient) error
	GetByID(id uint) (*models.ProductionBatch, error)
	GetByBatchNumber(batchNumber string) (*models.ProductionBatch, error)
	List(filter BatchListFilter) ([]models.ProductionBatch, int64, error)
	Update(batch *models.ProductionBatch) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	ReplaceIngredients(batchID uint, ingredients []models.BatchIngredient) error
	WithTx(tx *gorm.DB) BatchRepository
}

// GormBatchRepository GORM 实现
type GormBatchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建生产批次仓库
func NewBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBatchRepository) WithTx(tx *gorm.DB) BatchRepository {
	if tx == nil {
		return r
	}
	return &GormBatchRepository{db: tx}
}

// Create 创建批次与配料
func (r *GormBatchRepository) Create(batch *models.ProductionBatch, ingredients []models.BatchIngredient) error {
	if err := r.db.Create(batch).Error; err != nil {
		return err
	}
	for i := range ingredients {
		ingredients[i].BatchID = batch.ID
	}
	if len(ingredients) > 0 {
		if err := r.db.Create(&ingredients).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取批次（含配料）
func (r *GormBatchRepository) GetByID(id uint) (*models.ProductionBatch, error) {
	var batch models.ProductionBatch
	if err := r.db.Preload("Ingredients").First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// GetByBatchNumber 根据批次号获取批次
func (r *GormBatchRepository) GetByBatchNumber(batchNumber string) (*models.ProductionBatch, error) {
	var batch models.ProductionBatch
	if err := r.db.Preload("Ingredients").Where("batch_number = ?", batchNumber).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// List 批次列表
func (r *GormBatchRepository) List(filter BatchListFilter) ([]models.ProductionBatch, int64, error) {
	query := r.db.Model(&models.ProductionBatch{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.VariationID != 0 {
		query = query.Where("variation_id = ?", filter.VariationID)
	}
	if filter.DateFrom != nil {
		query = query.Where("production_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("production_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var batches []models.ProductionBatch
	if err := query.Preload("Ingredients").Order("id DESC").Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// Update 更新批次
func (r *GormBatchRepository) Update(batch *models.ProductionBatch) error {
	return r.db.Save(batch).Error
}

// UpdateStatus 更新批次状态
func (r *GormBatchRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.ProductionBatch{}).Where("id = ?", id).Updates(updates).Error
}

// ReplaceIngredients 整批替换配料，必须在事务内调用
func (r *GormBatchRepository) ReplaceIngredients(batchID uint, ingredients []models.BatchIngredient) error {
	if err := r.db.Where("batch_id = ?", batchID).Delete(&models.BatchIngredient{}).Error; err != nil {
		return err
	}
	for i := range ingredients {
		ingredients[i].ID = 0
		ingredients[i].BatchID = batchID
	}
	if len(ingredients) > 0 {
		if err := r.db.Create(&ingredients).Error; err != nil {
			return err
		}
	}
	return nil
}
