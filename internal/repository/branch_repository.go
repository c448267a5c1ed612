package repository

import (
	"errors"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// BranchRepository 分支机构数据访问接口
type BranchRepository interface {
	List(onlyActive bool) ([]models.Branch, error)
	GetByID(id uint) (*models.Branch, error)
	ListByIDs(ids []uint) ([]models.Branch, error)
	Create(branch *models.Branch) error
	Update(branch *models.Branch) error
	Count() (int64, error)
}

// GormBranchRepository GORM 实现
type GormBranchRepository struct {
	db *gorm.DB
}

// NewBranchRepository 创建分支机构仓库
func NewBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// List 分支机构列表
func (r *GormBranchRepository) List(onlyActive bool) ([]models.Branch, error) {
	var branches []models.Branch
	query := r.db.Model(&models.Branch{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("id ASC").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// GetByID 根据 ID 获取分支机构
func (r *GormBranchRepository) GetByID(id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// ListByIDs 批量获取分支机构
func (r *GormBranchRepository) ListByIDs(ids []uint) ([]models.Branch, error) {
	if len(ids) == 0 {
		return []models.Branch{}, nil
	}
	var branches []models.Branch
	if err := r.db.Where("id IN ?", ids).Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Create 创建分支机构
func (r *GormBranchRepository) Create(branch *models.Branch) error {
	return r.db.Create(branch).Error
}

// Update 更新分支机构
func (r *GormBranchRepository) Update(branch *models.Branch) error {
	return r.db.Save(branch).Error
}

// Count 统计分支机构数量
func (r *GormBranchRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Branch{}).Count(&count).Error
	return count, err
}
