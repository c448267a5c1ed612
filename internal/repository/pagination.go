package repository

import (
	"strings"

	"gorm.io/gorm"
)

// applyPagination 应用分页参数，页码从 1 起算
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// applySorting 应用排序参数，仅允许白名单内的列，防止拼接注入。
func applySorting(query *gorm.DB, allowed map[string]string, sortBy, sortDir, fallback string) *gorm.DB {
	column, ok := allowed[sortBy]
	if !ok {
		return query.Order(fallback)
	}
	direction := "ASC"
	if strings.EqualFold(sortDir, "desc") {
		direction = "DESC"
	}
	return query.Order(column + " " + direction)
}
