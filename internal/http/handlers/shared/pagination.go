package shared

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ParsePagination 解析分页查询参数，兼容 page/limit 与 offset/limit 两种形式。
func ParsePagination(c *gin.Context) (int, int) {
	limit := ParseIntQuery(c, "limit", defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := ParseIntQuery(c, "page", 0)
	if page < 1 {
		if offset := ParseIntQuery(c, "offset", -1); offset >= 0 {
			page = offset/limit + 1
		} else {
			page = 1
		}
	}
	return page, limit
}

// ParseIntQuery 解析整型查询参数，非法值返回默认值。
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// ParseUintParam 解析路径中的数字ID参数。
func ParseUintParam(c *gin.Context, key string) (uint, bool) {
	raw := c.Param(key)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

// ParseUintQuery 解析整型查询参数为 uint，缺省或非法返回 0。
func ParseUintQuery(c *gin.Context, key string) uint {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
