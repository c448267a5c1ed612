package models

import (
	"time"

	"gorm.io/gorm"
)

// StockTransaction 库存流水表
// balance_after 为该笔流水落账后规格的库存余额，与规格行在同一事务内更新。
type StockTransaction struct {
	ID           uint           `gorm:"primarykey" json:"id"`                          // 主键
	VariationID  uint           `gorm:"index;not null" json:"variation_id"`            // 商品规格ID
	Type         string         `gorm:"index;not null" json:"type"`                    // 流水类型（in/out/adjust）
	Quantity     int            `gorm:"not null" json:"quantity"`                      // 数量（adjust 可为负）
	BalanceAfter int            `gorm:"not null" json:"balance_after"`                 // 流水后余额
	Reason       string         `gorm:"type:varchar(200)" json:"reason,omitempty"`     // 原因
	BatchID      *uint          `gorm:"index" json:"batch_id,omitempty"`               // 来源生产批次ID
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`              // 备注
	CreatedBy    string         `gorm:"type:varchar(64)" json:"created_by,omitempty"`  // 操作人
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (StockTransaction) TableName() string {
	return "stock_transactions"
}
