package repository

import (
	"errors"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByCode(code string) (*models.Customer, error)
	ListByIDs(ids []uint) ([]models.Customer, error)
	ListActive(search string, branchID uint) ([]models.Customer, error)
	List(filter CustomerListFilter) ([]models.Customer, int64, error)
	Update(customer *models.Customer) error
	UpdateFields(id uint, updates map[string]interface{}) error
	CountByCode(code string, excludeID uint) (int64, error)
	CountByChatContactID(chatContactID uint, excludeID uint) (int64, error)
	WithTx(tx *gorm.DB) CustomerRepository
}

var customerSearchColumns = []string{"code", "name", "phone", "contact_name"}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) CustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// GetByID 根据 ID 获取客户（含收货地址）
func (r *GormCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Preload("Addresses").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByCode 根据客户编码获取客户
func (r *GormCustomerRepository) GetByCode(code string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Where("code = ?", code).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// ListByIDs 批量获取客户
func (r *GormCustomerRepository) ListByIDs(ids []uint) ([]models.Customer, error) {
	if len(ids) == 0 {
		return []models.Customer{}, nil
	}
	var customers []models.Customer
	if err := r.db.Where("id IN ?", ids).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// ListActive 获取全部启用客户，用于跟进与账龄统计
func (r *GormCustomerRepository) ListActive(search string, branchID uint) ([]models.Customer, error) {
	query := r.db.Model(&models.Customer{}).Where("is_active = ?", true)
	if search != "" {
		condition, argCount := buildLikeCondition(r.db, customerSearchColumns)
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}
	if branchID != 0 {
		query = query.Where("branch_id = ?", branchID)
	}
	var customers []models.Customer
	if err := query.Order("id ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// List 客户列表
func (r *GormCustomerRepository) List(filter CustomerListFilter) ([]models.Customer, int64, error) {
	query := r.db.Model(&models.Customer{})

	if filter.Search != "" {
		condition, argCount := buildLikeCondition(r.db, customerSearchColumns)
		query = query.Where(condition, repeatLikeArgs("%"+filter.Search+"%", argCount)...)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var customers []models.Customer
	if err := query.Order("id DESC").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Update 更新客户
func (r *GormCustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

// UpdateFields 更新客户部分字段
func (r *GormCustomerRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error
}

// CountByCode 统计编码占用数，用于唯一性校验
func (r *GormCustomerRepository) CountByCode(code string, excludeID uint) (int64, error) {
	query := r.db.Model(&models.Customer{}).Where("code = ?", code)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountByChatContactID 统计聊天联系人被其它客户绑定的数量
func (r *GormCustomerRepository) CountByChatContactID(chatContactID uint, excludeID uint) (int64, error) {
	query := r.db.Model(&models.Customer{}).Where("chat_contact_id = ?", chatContactID)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
