package api

import (
	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"

	"github.com/gin-gonic/gin"
)

// branchRequest 门店请求
type branchRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

// ListBranches 门店列表
func (h *Handler) ListBranches(c *gin.Context) {
	branches, err := h.BranchService.ListBranches(c.Query("only_active") == "true")
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"branches": branches})
}

// GetBranch 门店详情
func (h *Handler) GetBranch(c *gin.Context) {
	branchID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid branch id")
		return
	}
	branch, err := h.BranchService.GetBranch(branchID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"branch": branch})
}

// CreateBranch 创建门店
func (h *Handler) CreateBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	branch, err := h.BranchService.CreateBranch(req.Name)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "branch": branch, "id": branch.ID})
}

// UpdateBranch 更新门店
func (h *Handler) UpdateBranch(c *gin.Context) {
	branchID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid branch id")
		return
	}
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	var name *string
	if req.Name != "" {
		name = &req.Name
	}
	branch, err := h.BranchService.UpdateBranch(branchID, name, req.IsActive)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "branch": branch})
}
