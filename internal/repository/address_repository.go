package repository

import (
	"errors"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 收货地址数据访问接口
type AddressRepository interface {
	ListByCustomer(customerID uint) ([]models.ShippingAddress, error)
	GetByID(id uint) (*models.ShippingAddress, error)
	ListByIDs(ids []uint) ([]models.ShippingAddress, error)
	Create(address *models.ShippingAddress) error
	Update(address *models.ShippingAddress) error
	Delete(id uint) error
	ClearDefault(customerID uint) error
	WithTx(tx *gorm.DB) AddressRepository
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建收货地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) AddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// ListByCustomer 获取客户收货地址列表
func (r *GormAddressRepository) ListByCustomer(customerID uint) ([]models.ShippingAddress, error) {
	var addresses []models.ShippingAddress
	if err := r.db.Where("customer_id = ?", customerID).
		Order("is_default DESC, id ASC").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetByID 根据 ID 获取收货地址
func (r *GormAddressRepository) GetByID(id uint) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	if err := r.db.First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// ListByIDs 批量获取收货地址
func (r *GormAddressRepository) ListByIDs(ids []uint) ([]models.ShippingAddress, error) {
	if len(ids) == 0 {
		return []models.ShippingAddress{}, nil
	}
	var addresses []models.ShippingAddress
	if err := r.db.Where("id IN ?", ids).Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Create 创建收货地址
func (r *GormAddressRepository) Create(address *models.ShippingAddress) error {
	return r.db.Create(address).Error
}

// Update 更新收货地址
func (r *GormAddressRepository) Update(address *models.ShippingAddress) error {
	return r.db.Save(address).Error
}

// Delete 删除收货地址
func (r *GormAddressRepository) Delete(id uint) error {
	return r.db.Delete(&models.ShippingAddress{}, id).Error
}

// ClearDefault 清除客户当前默认地址标记
func (r *GormAddressRepository) ClearDefault(customerID uint) error {
	return r.db.Model(&models.ShippingAddress{}).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		Update("is_default", false).Error
}
