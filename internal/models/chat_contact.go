package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatContact 聊天联系人表
// 仅保存外部聊天平台的联系人信息及绑定关系，消息收发不在本系统内。
type ChatContact struct {
	ID             uint           `gorm:"primarykey" json:"id"`                               // 主键
	ProviderUserID string         `gorm:"uniqueIndex;not null" json:"provider_user_id"`       // 平台用户ID
	DisplayName    string         `gorm:"type:varchar(200)" json:"display_name,omitempty"`    // 显示名称
	PictureURL     string         `gorm:"type:varchar(500)" json:"picture_url,omitempty"`     // 头像地址
	LastMessageAt  *time.Time     `gorm:"index" json:"last_message_at,omitempty"`             // 最近消息时间（外部同步）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (ChatContact) TableName() string {
	return "chat_contacts"
}
