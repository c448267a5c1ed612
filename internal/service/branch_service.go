package service

import (
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
)

// BranchService 门店服务
type BranchService struct {
	branchRepo repository.BranchRepository
}

// NewBranchService 创建门店服务
func NewBranchService(branchRepo repository.BranchRepository) *BranchService {
	return &BranchService{branchRepo: branchRepo}
}

// ListBranches 门店列表
func (s *BranchService) ListBranches(onlyActive bool) ([]models.Branch, error) {
	return s.branchRepo.List(onlyActive)
}

// GetBranch 门店详情
func (s *BranchService) GetBranch(branchID uint) (*models.Branch, error) {
	branch, err := s.branchRepo.GetByID(branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}
	return branch, nil
}

// CreateBranch 创建门店
func (s *BranchService) CreateBranch(name string) (*models.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("Branch name is required")
	}
	branch := &models.Branch{Name: name, IsActive: true}
	if err := s.branchRepo.Create(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// UpdateBranch 更新门店
func (s *BranchService) UpdateBranch(branchID uint, name *string, isActive *bool) (*models.Branch, error) {
	branch, err := s.branchRepo.GetByID(branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, newValidationError("Branch name must not be empty")
		}
		branch.Name = trimmed
	}
	if isActive != nil {
		branch.IsActive = *isActive
	}
	if err := s.branchRepo.Update(branch); err != nil {
		return nil, err
	}
	return branch, nil
}
