package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（果汁品类）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                              // 主键
	Code        string         `gorm:"uniqueIndex;not null" json:"code"`                  // 商品编码
	Name        string         `gorm:"type:varchar(200);not null;index" json:"name"`      // 商品名称
	Description string         `gorm:"type:text" json:"description,omitempty"`            // 描述
	Category    string         `gorm:"type:varchar(100);index" json:"category,omitempty"` // 品类（如冷压果汁/鲜榨）
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url,omitempty"`      // 图片地址
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`               // 是否在售
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                 // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                        // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间

	Variations []ProductVariation `gorm:"foreignKey:ProductID" json:"variations,omitempty"` // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
