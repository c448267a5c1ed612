package models

import (
	"time"

	"gorm.io/gorm"
)

// ShippingAddress 客户收货地址表
type ShippingAddress struct {
	ID           uint           `gorm:"primarykey" json:"id"`                          // 主键
	CustomerID   uint           `gorm:"index;not null" json:"customer_id"`             // 客户ID
	Label        string         `gorm:"type:varchar(100)" json:"label,omitempty"`      // 地址标签（如 仓库/门店）
	AddressLine  string         `gorm:"type:text;not null" json:"address_line"`        // 详细地址
	District     string         `gorm:"type:varchar(100)" json:"district,omitempty"`   // 区
	Province     string         `gorm:"type:varchar(100)" json:"province,omitempty"`   // 府
	PostalCode   string         `gorm:"type:varchar(20)" json:"postal_code,omitempty"` // 邮编
	ContactPhone string         `gorm:"type:varchar(50)" json:"contact_phone,omitempty"` // 收货联系电话
	IsDefault    bool           `gorm:"not null;default:false" json:"is_default"`      // 是否默认地址
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (ShippingAddress) TableName() string {
	return "shipping_addresses"
}
