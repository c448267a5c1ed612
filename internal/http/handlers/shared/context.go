package shared

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CurrentUserID 读取身份网关写入上下文的用户ID。
func CurrentUserID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("user_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// ParseDateQuery 解析日期查询参数，支持 RFC3339 与 2006-01-02 两种格式。
func ParseDateQuery(c *gin.Context, key string) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
