package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService 商品目录服务
type ProductService struct {
	productRepo   repository.ProductRepository
	variationRepo repository.VariationRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, variationRepo repository.VariationRepository) *ProductService {
	return &ProductService{productRepo: productRepo, variationRepo: variationRepo}
}

// VariationInput 商品规格输入
// ID 非零表示更新既有规格，零值表示新增。
type VariationInput struct {
	ID            uint
	SKUCode       string
	BottleSize    string
	UnitPrice     decimal.Decimal
	StockQuantity *int
	ReorderLevel  *int
	IsActive      *bool
	SortOrder     *int
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Code        string
	Name        string
	Description string
	Category    string
	ImageURL    string
	SortOrder   int
	Variations  []VariationInput
}

// UpdateProductInput 更新商品输入
// Variations 非 nil 时整组同步：缺失的旧规格删除，ID 匹配的更新，其余新增。
type UpdateProductInput struct {
	Code        *string
	Name        *string
	Description *string
	Category    *string
	ImageURL    *string
	IsActive    *bool
	SortOrder   *int
	Variations  []VariationInput
}

// ListProducts 商品列表
func (s *ProductService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	return products, total, nil
}

// GetProduct 商品详情（含规格）
func (s *ProductService) GetProduct(productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// CreateProduct 创建商品及其规格
func (s *ProductService) CreateProduct(input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newValidationError("Product name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, newValidationError("Product code is required")
	}
	taken, err := s.productRepo.CountByCode(code, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	if taken > 0 {
		return nil, ErrProductCodeTaken
	}
	variations, err := buildVariations(input.Variations)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Code:        code,
		Name:        name,
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.WithTx(tx).Create(product); err != nil {
			return err
		}
		for i := range variations {
			variations[i].ProductID = product.ID
		}
		return s.variationRepo.WithTx(tx).CreateBatch(variations)
	})
	if err != nil {
		logger.Warnw("product_create_failed", "code", code, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}

	logger.Infow("product_created", "product_id", product.ID, "code", product.Code)
	return s.productRepo.GetByID(product.ID)
}

// UpdateProduct 更新商品，携带 Variations 时整组同步规格
func (s *ProductService) UpdateProduct(productID uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if input.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.Code))
		if code == "" {
			return nil, newValidationError("Product code must not be empty")
		}
		if code != product.Code {
			taken, err := s.productRepo.CountByCode(code, productID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
			}
			if taken > 0 {
				return nil, ErrProductCodeTaken
			}
			product.Code = code
		}
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, newValidationError("Product name must not be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		product.SortOrder = *input.SortOrder
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		existing := product.Variations
		product.Variations = nil
		if err := s.productRepo.WithTx(tx).Update(product); err != nil {
			return err
		}
		if input.Variations == nil {
			return nil
		}
		return s.syncVariations(tx, product.ID, existing, input.Variations)
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		if errors.Is(err, ErrVariationNotFound) {
			return nil, ErrVariationNotFound
		}
		logger.Warnw("product_update_failed", "product_id", productID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	return s.productRepo.GetByID(productID)
}

// DeleteProduct 下架并软删除商品及其规格
func (s *ProductService) DeleteProduct(productID uint) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		variationRepo := s.variationRepo.WithTx(tx)
		for _, variation := range product.Variations {
			if err := variationRepo.Delete(variation.ID); err != nil {
				return err
			}
		}
		return s.productRepo.WithTx(tx).Delete(productID)
	})
	if err != nil {
		logger.Warnw("product_delete_failed", "product_id", productID, "error", err)
		return fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	logger.Infow("product_deleted", "product_id", productID, "code", product.Code)
	return nil
}

// ListVariations 商品规格列表
func (s *ProductService) ListVariations(productID uint, onlyActive bool) ([]models.ProductVariation, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	variations, err := s.variationRepo.ListByProduct(productID, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductWriteFailed, err)
	}
	return variations, nil
}

// syncVariations 规格整组同步：按 ID 对齐，缺失删除、匹配更新、其余新增
func (s *ProductService) syncVariations(tx *gorm.DB, productID uint, existing []models.ProductVariation, inputs []VariationInput) error {
	repo := s.variationRepo.WithTx(tx)

	current := make(map[uint]models.ProductVariation, len(existing))
	for _, variation := range existing {
		current[variation.ID] = variation
	}
	keep := make(map[uint]bool, len(inputs))
	seenSKU := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		sku := strings.ToUpper(strings.TrimSpace(in.SKUCode))
		if sku == "" {
			return newValidationError("SKU code is required for every variation")
		}
		if seenSKU[sku] {
			return newValidationError("Duplicate SKU code: %s", sku)
		}
		seenSKU[sku] = true
		if strings.TrimSpace(in.BottleSize) == "" {
			return newValidationError("Bottle size is required for SKU %s", sku)
		}
		if in.UnitPrice.IsNegative() {
			return newValidationError("Unit price for SKU %s must not be negative", sku)
		}

		if in.ID != 0 {
			variation, ok := current[in.ID]
			if !ok {
				return ErrVariationNotFound
			}
			variation.SKUCode = sku
			variation.BottleSize = strings.TrimSpace(in.BottleSize)
			variation.UnitPrice = models.NewMoneyFromDecimal(in.UnitPrice)
			if in.StockQuantity != nil {
				variation.StockQuantity = *in.StockQuantity
			}
			if in.ReorderLevel != nil {
				variation.ReorderLevel = *in.ReorderLevel
			}
			if in.IsActive != nil {
				variation.IsActive = *in.IsActive
			}
			if in.SortOrder != nil {
				variation.SortOrder = *in.SortOrder
			}
			if err := repo.Update(&variation); err != nil {
				return err
			}
			keep[in.ID] = true
			continue
		}

		variation := models.ProductVariation{
			ProductID:  productID,
			SKUCode:    sku,
			BottleSize: strings.TrimSpace(in.BottleSize),
			UnitPrice:  models.NewMoneyFromDecimal(in.UnitPrice),
			IsActive:   true,
		}
		if in.StockQuantity != nil {
			variation.StockQuantity = *in.StockQuantity
		}
		if in.ReorderLevel != nil {
			variation.ReorderLevel = *in.ReorderLevel
		}
		if in.IsActive != nil {
			variation.IsActive = *in.IsActive
		}
		if in.SortOrder != nil {
			variation.SortOrder = *in.SortOrder
		}
		if err := repo.Create(&variation); err != nil {
			return err
		}
	}

	for id := range current {
		if !keep[id] {
			if err := repo.Delete(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildVariations 校验并装配新建商品的规格
func buildVariations(inputs []VariationInput) ([]models.ProductVariation, error) {
	variations := make([]models.ProductVariation, 0, len(inputs))
	seenSKU := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		sku := strings.ToUpper(strings.TrimSpace(in.SKUCode))
		if sku == "" {
			return nil, newValidationError("SKU code is required for every variation")
		}
		if seenSKU[sku] {
			return nil, newValidationError("Duplicate SKU code: %s", sku)
		}
		seenSKU[sku] = true
		if strings.TrimSpace(in.BottleSize) == "" {
			return nil, newValidationError("Bottle size is required for SKU %s", sku)
		}
		if in.UnitPrice.IsNegative() {
			return nil, newValidationError("Unit price for SKU %s must not be negative", sku)
		}
		variation := models.ProductVariation{
			SKUCode:    sku,
			BottleSize: strings.TrimSpace(in.BottleSize),
			UnitPrice:  models.NewMoneyFromDecimal(in.UnitPrice),
			IsActive:   true,
		}
		if in.StockQuantity != nil {
			variation.StockQuantity = *in.StockQuantity
		}
		if in.ReorderLevel != nil {
			variation.ReorderLevel = *in.ReorderLevel
		}
		if in.IsActive != nil {
			variation.IsActive = *in.IsActive
		}
		if in.SortOrder != nil {
			variation.SortOrder = *in.SortOrder
		}
		variations = append(variations, variation)
	}
	return variations, nil
}
