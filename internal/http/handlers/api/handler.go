package api

import "github.com/kwamkid/joolz-factory-sub002/internal/provider"

// Handler 后台接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
