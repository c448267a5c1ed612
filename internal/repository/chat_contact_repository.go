package repository

import (
	"errors"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"gorm.io/gorm"
)

// ChatContactRepository 聊天联系人数据访问接口
type ChatContactRepository interface {
	GetByID(id uint) (*models.ChatContact, error)
	GetByProviderUserID(providerUserID string) (*models.ChatContact, error)
	ListByIDs(ids []uint) ([]models.ChatContact, error)
	Create(contact *models.ChatContact) error
	Update(contact *models.ChatContact) error
	WithTx(tx *gorm.DB) ChatContactRepository
}

// GormChatContactRepository GORM 实现
type GormChatContactRepository struct {
	db *gorm.DB
}

// NewChatContactRepository 创建聊天联系人仓库
func NewChatContactRepository(db *gorm.DB) *GormChatContactRepository {
	return &GormChatContactRepository{db: db}
}

// WithTx 绑定事务
func (r *GormChatContactRepository) WithTx(tx *gorm.DB) ChatContactRepository {
	if tx == nil {
		return r
	}
	return &GormChatContactRepository{db: tx}
}

// GetByID 根据 ID 获取联系人
func (r *GormChatContactRepository) GetByID(id uint) (*models.ChatContact, error) {
	var contact models.ChatContact
	if err := r.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

// GetByProviderUserID 根据外部平台用户 ID 获取联系人
func (r *GormChatContactRepository) GetByProviderUserID(providerUserID string) (*models.ChatContact, error) {
	var contact models.ChatContact
	if err := r.db.Where("provider_user_id = ?", providerUserID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

// ListByIDs 批量获取联系人
func (r *GormChatContactRepository) ListByIDs(ids []uint) ([]models.ChatContact, error) {
	if len(ids) == 0 {
		return []models.ChatContact{}, nil
	}
	var contacts []models.ChatContact
	if err := r.db.Where("id IN ?", ids).Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// Create 创建联系人
func (r *GormChatContactRepository) Create(contact *models.ChatContact) error {
	return r.db.Create(contact).Error
}

// Update 更新联系人
func (r *GormChatContactRepository) Update(contact *models.ChatContact) error {
	return r.db.Save(contact).Error
}
