package repository

import (
	"errors"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// StockRepository 库存流水与缺货预警数据访问接口
type StockRepository interface {
	CreateTransaction(txn *models.StockTransaction) error
	ListTransactions(filter StockTxnListFilter) ([]models.StockTransaction, int64, error)
	GetAlertByVariation(variationID uint) (*models.StockAlert, error)
	ListActiveAlerts() ([]models.StockAlert, error)
	UpsertAlert(variationID uint, stockQuantity, reorderLevel int) error
	ResolveAlert(variationID uint) error
	WithTx(tx *gorm.DB) StockRepository
}

// GormStockRepository GORM 实现
type GormStockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建库存仓库
func NewStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockRepository) WithTx(tx *gorm.DB) StockRepository {
	if tx == nil {
		return r
	}
	return &GormStockRepository{db: tx}
}

// CreateTransaction 写入库存流水
func (r *GormStockRepository) CreateTransaction(txn *models.StockTransaction) error {
	return r.db.Create(txn).Error
}

// ListTransactions 库存流水列表
func (r *GormStockRepository) ListTransactions(filter StockTxnListFilter) ([]models.StockTransaction, int64, error) {
	query := r.db.Model(&models.StockTransaction{})

	if filter.VariationID != 0 {
		query = query.Where("variation_id = ?", filter.VariationID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.BatchID != 0 {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.StockTransaction
	if err := query.Order("id DESC").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// GetAlertByVariation 获取规格对应的预警记录
func (r *GormStockRepository) GetAlertByVariation(variationID uint) (*models.StockAlert, error) {
	var alert models.StockAlert
	if err := r.db.Where("variation_id = ?", variationID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// ListActiveAlerts 获取当前生效的缺货预警
func (r *GormStockRepository) ListActiveAlerts() ([]models.StockAlert, error) {
	var alerts []models.StockAlert
	if err := r.db.Where("is_active = ?", true).Order("triggered_at ASC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// UpsertAlert 写入或刷新缺货预警
// 每个规格至多一条记录，重复触发只刷新数量与时间。
func (r *GormStockRepository) UpsertAlert(variationID uint, stockQuantity, reorderLevel int) error {
	existing, err := r.GetAlertByVariation(variationID)
	if err != nil {
		return err
	}
	now := time.Now()
	if existing == nil {
		alert := models.StockAlert{
			VariationID:   variationID,
			StockQuantity: stockQuantity,
			ReorderLevel:  reorderLevel,
			IsActive:      true,
			TriggeredAt:   now,
		}
		return r.db.Create(&alert).Error
	}
	updates := map[string]interface{}{
		"stock_quantity": stockQuantity,
		"reorder_level":  reorderLevel,
		"is_active":      true,
		"triggered_at":   now,
		"resolved_at":    nil,
	}
	return r.db.Model(&models.StockAlert{}).Where("id = ?", existing.ID).Updates(updates).Error
}

// ResolveAlert 解除缺货预警
func (r *GormStockRepository) ResolveAlert(variationID uint) error {
	now := time.Now()
	return r.db.Model(&models.StockAlert{}).
		Where("variation_id = ? AND is_active = ?", variationID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"resolved_at": now,
		}).Error
}
