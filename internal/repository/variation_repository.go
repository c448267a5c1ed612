package repository

import (
	"errors"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// VariationRepository 商品规格数据访问接口
type VariationRepository interface {
	ListByProduct(productID uint, onlyActive bool) ([]models.ProductVariation, error)
	GetByID(id uint) (*models.ProductVariation, error)
	GetByProductAndSKU(productID uint, skuCode string) (*models.ProductVariation, error)
	ListByIDs(ids []uint) ([]models.ProductVariation, error)
	Create(variation *models.ProductVariation) error
	CreateBatch(variations []models.ProductVariation) error
	Update(variation *models.ProductVariation) error
	Delete(id uint) error
	AdjustStock(id uint, delta int) (int64, error)
	ListBelowReorderLevel() ([]models.ProductVariation, error)
	WithTx(tx *gorm.DB) VariationRepository
}

// GormVariationRepository GORM 实现
type GormVariationRepository struct {
	db *gorm.DB
}

// NewVariationRepository 创建商品规格仓库
func NewVariationRepository(db *gorm.DB) *GormVariationRepository {
	return &GormVariationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVariationRepository) WithTx(tx *gorm.DB) VariationRepository {
	if tx == nil {
		return r
	}
	return &GormVariationRepository{db: tx}
}

// ListByProduct 获取商品规格列表
func (r *GormVariationRepository) ListByProduct(productID uint, onlyActive bool) ([]models.ProductVariation, error) {
	var variations []models.ProductVariation
	query := r.db.Where("product_id = ?", productID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("sort_order DESC, id ASC").Find(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}

// GetByID 根据 ID 获取规格
func (r *GormVariationRepository) GetByID(id uint) (*models.ProductVariation, error) {
	var variation models.ProductVariation
	if err := r.db.First(&variation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variation, nil
}

// GetByProductAndSKU 根据商品与 SKU 编码获取规格
func (r *GormVariationRepository) GetByProductAndSKU(productID uint, skuCode string) (*models.ProductVariation, error) {
	var variation models.ProductVariation
	if err := r.db.Where("product_id = ? AND sku_code = ?", productID, skuCode).First(&variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variation, nil
}

// ListByIDs 批量获取规格
func (r *GormVariationRepository) ListByIDs(ids []uint) ([]models.ProductVariation, error) {
	if len(ids) == 0 {
		return []models.ProductVariation{}, nil
	}
	var variations []models.ProductVariation
	if err := r.db.Where("id IN ?", ids).Find(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}

// Create 创建规格
func (r *GormVariationRepository) Create(variation *models.ProductVariation) error {
	return r.db.Create(variation).Error
}

// CreateBatch 批量创建规格
func (r *GormVariationRepository) CreateBatch(variations []models.ProductVariation) error {
	if len(variations) == 0 {
		return nil
	}
	return r.db.Create(&variations).Error
}

// Update 更新规格
func (r *GormVariationRepository) Update(variation *models.ProductVariation) error {
	return r.db.Save(variation).Error
}

// Delete 删除规格
func (r *GormVariationRepository) Delete(id uint) error {
	return r.db.Delete(&models.ProductVariation{}, id).Error
}

// AdjustStock 原子调整库存余量
// 出库为负数时带余量约束，余量不足则零行受影响。
func (r *GormVariationRepository) AdjustStock(id uint, delta int) (int64, error) {
	if id == 0 || delta == 0 {
		return 0, errors.New("invalid stock adjust params")
	}
	query := r.db.Model(&models.ProductVariation{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("stock_quantity + ? >= 0", delta)
	}
	result := query.UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListBelowReorderLevel 获取低于补货线的启用规格
func (r *GormVariationRepository) ListBelowReorderLevel() ([]models.ProductVariation, error) {
	var variations []models.ProductVariation
	if err := r.db.
		Where("is_active = ? AND reorder_level > 0 AND stock_quantity <= reorder_level", true).
		Order("id ASC").
		Find(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}
