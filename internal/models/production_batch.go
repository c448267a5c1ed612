package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductionBatch 生产批次表
// 完成时汇总原料成本并按产出数量折算单瓶成本，同时入库成品库存。
type ProductionBatch struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                         // 主键
	BatchNumber      string         `gorm:"uniqueIndex;not null" json:"batch_number"`                     // 批次编号
	ProductID        uint           `gorm:"index;not null" json:"product_id"`                             // 商品ID
	VariationID      uint           `gorm:"index;not null" json:"variation_id"`                           // 商品规格ID
	Status           string         `gorm:"index;not null" json:"status"`                                 // 批次状态
	PlannedQuantity  int            `gorm:"not null" json:"planned_quantity"`                             // 计划产量（瓶）
	ProducedQuantity int            `gorm:"not null;default:0" json:"produced_quantity"`                  // 实际产量（瓶）
	TotalCost        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_cost"`     // 原料成本合计
	UnitCost         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_cost"`      // 单瓶成本
	ProductionDate   *time.Time     `gorm:"index" json:"production_date,omitempty"`                       // 生产日期
	CompletedAt      *time.Time     `gorm:"index" json:"completed_at,omitempty"`                          // 完成时间
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`                             // 备注
	CreatedBy        string         `gorm:"type:varchar(64)" json:"created_by,omitempty"`                 // 创建人
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Ingredients []BatchIngredient `gorm:"foreignKey:BatchID" json:"ingredients,omitempty"` // 原料清单
}

// TableName 指定表名
func (ProductionBatch) TableName() string {
	return "production_batches"
}
