package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户表
type Customer struct {
	ID            uint           `gorm:"primarykey" json:"id"`                           // 主键
	Code          string         `gorm:"uniqueIndex;not null" json:"code"`               // 客户编码
	Name          string         `gorm:"type:varchar(200);not null;index" json:"name"`   // 客户名称
	ContactName   string         `gorm:"type:varchar(100)" json:"contact_name,omitempty"` // 联系人
	Phone         string         `gorm:"type:varchar(50);index" json:"phone,omitempty"`  // 联系电话
	Email         string         `gorm:"type:varchar(200)" json:"email,omitempty"`       // 邮箱
	BranchID      *uint          `gorm:"index" json:"branch_id,omitempty"`               // 归属门店ID
	ChatContactID *uint          `gorm:"index" json:"chat_contact_id,omitempty"`         // 绑定的聊天联系人ID
	Notes         string         `gorm:"type:text" json:"notes,omitempty"`               // 备注
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`         // 是否启用
	CreatedBy     string         `gorm:"type:varchar(64)" json:"created_by,omitempty"`   // 创建人
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                        // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间

	Addresses []ShippingAddress `gorm:"foreignKey:CustomerID" json:"addresses,omitempty"` // 收货地址
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
