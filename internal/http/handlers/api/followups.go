package api

import (
	"strconv"
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// intPtrQuery 解析可选整型查询参数，缺省返回 nil
func intPtrQuery(c *gin.Context, key string) *int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

// ListFollowUps 客户跟进列表与分布汇总
func (h *Handler) ListFollowUps(c *gin.Context) {
	page, limit := shared.ParsePagination(c)
	filter := service.FollowUpFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		BranchID:     shared.ParseUintQuery(c, "branch_id"),
		Level:        strings.TrimSpace(c.Query("level")),
		Bucket:       strings.TrimSpace(c.Query("bucket")),
		MinDays:      intPtrQuery(c, "min_days"),
		MaxDays:      intPtrQuery(c, "max_days"),
		OrderDaysMin: intPtrQuery(c, "order_days_min"),
		OrderDaysMax: intPtrQuery(c, "order_days_max"),
		SortBy:       strings.TrimSpace(c.Query("sort_by")),
		SortDir:      strings.TrimSpace(c.Query("sort_dir")),
		Page:         page,
		Limit:        limit,
	}

	customers, summary, total, err := h.FollowUpService.ListFollowUps(filter)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{
		"customers":  customers,
		"summary":    summary,
		"pagination": response.NewPagination(page, limit, total),
	})
}

// GetCustomerFollowUp 单客户跟进指标
func (h *Handler) GetCustomerFollowUp(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	followUp, err := h.FollowUpService.GetCustomerFollowUp(customerID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"customer": followUp})
}
