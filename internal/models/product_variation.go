package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariation 商品规格表（瓶装规格维度：价格+库存）
type ProductVariation struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                                                 // 主键
	ProductID     uint           `gorm:"not null;index;uniqueIndex:idx_variation_sku" json:"product_id"`                       // 商品ID
	SKUCode       string         `gorm:"column:sku_code;type:varchar(64);not null;uniqueIndex:idx_variation_sku" json:"sku_code"` // SKU编码（同商品内唯一）
	BottleSize    string         `gorm:"type:varchar(50);not null" json:"bottle_size"`                                         // 瓶装规格（如 250ml/1L）
	UnitPrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                              // 单价
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`                                             // 当前库存（瓶）
	ReorderLevel  int            `gorm:"not null;default:0" json:"reorder_level"`                                              // 补货警戒线（0 表示不监控）
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`                                                  // 是否启用
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`                                                    // 排序权重
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                                              // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                                              // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                                       // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductVariation) TableName() string {
	return "product_variations"
}
