package api

import (
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAging 应收账龄列表与汇总
func (h *Handler) ListAging(c *gin.Context) {
	page, limit := shared.ParsePagination(c)
	filter := service.AgingFilter{
		Search:  strings.TrimSpace(c.Query("search")),
		Bucket:  strings.TrimSpace(c.Query("bucket")),
		SortBy:  strings.TrimSpace(c.Query("sort_by")),
		SortDir: strings.TrimSpace(c.Query("sort_dir")),
		Page:    page,
		Limit:   limit,
	}

	customers, summary, total, err := h.AgingService.ListAging(filter)
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

// GetCustomerAging 单客户账龄
func (h *Handler) GetCustomerAging(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	aging, err := h.AgingService.GetCustomerAging(customerID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"customer": aging})
}
