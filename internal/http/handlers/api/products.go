package api

import (
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// variationRequest 商品规格请求，id 非零表示更新既有规格
type variationRequest struct {
	ID            uint    `json:"id"`
	SKUCode       string  `json:"sku_code"`
	BottleSize    string  `json:"bottle_size"`
	UnitPrice     float64 `json:"unit_price"`
	StockQuantity *int    `json:"stock_quantity"`
	ReorderLevel  *int    `json:"reorder_level"`
	IsActive      *bool   `json:"is_active"`
	SortOrder     *int    `json:"sort_order"`
}

// createProductRequest 创建商品请求
type createProductRequest struct {
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	ImageURL    string             `json:"image_url"`
	SortOrder   int                `json:"sort_order"`
	Variations  []variationRequest `json:"variations"`
}

// updateProductRequest 更新商品请求，variations 非 nil 时整组同步
type updateProductRequest struct {
	Code        *string            `json:"code"`
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Category    *string            `json:"category"`
	ImageURL    *string            `json:"image_url"`
	IsActive    *bool              `json:"is_active"`
	SortOrder   *int               `json:"sort_order"`
	Variations  []variationRequest `json:"variations"`
}

func variationInputsFromRequest(variations []variationRequest) []service.VariationInput {
	if variations == nil {
		return nil
	}
	inputs := make([]service.VariationInput, 0, len(variations))
	for _, variation := range variations {
		inputs = append(inputs, service.VariationInput{
			ID:            variation.ID,
			SKUCode:       variation.SKUCode,
			BottleSize:    variation.BottleSize,
			UnitPrice:     decimal.NewFromFloat(variation.UnitPrice),
			StockQuantity: variation.StockQuantity,
			ReorderLevel:  variation.ReorderLevel,
			IsActive:      variation.IsActive,
			SortOrder:     variation.SortOrder,
		})
	}
	return inputs
}

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, limit := shared.ParsePagination(c)
	filter := repository.ProductListFilter{
		Page:           page,
		PageSize:       limit,
		Search:         strings.TrimSpace(c.Query("search")),
		Category:       strings.TrimSpace(c.Query("category")),
		OnlyActive:     c.Query("only_active") == "true",
		WithVariations: c.DefaultQuery("with_variations", "true") != "false",
	}

	products, total, err := h.ProductService.ListProducts(filter)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.Paginated(c, "products", products, response.NewPagination(page, limit, total))
}

// GetProduct 商品详情（含规格）
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product id")
		return
	}
	product, err := h.ProductService.GetProduct(productID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"product": product})
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.ProductService.CreateProduct(service.CreateProductInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		Variations:  variationInputsFromRequest(req.Variations),
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "product": product, "id": product.ID})
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product id")
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.ProductService.UpdateProduct(productID, service.UpdateProductInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
		Variations:  variationInputsFromRequest(req.Variations),
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "product": product})
}

// DeleteProduct 下架商品（软删除）
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product id")
		return
	}
	if err := h.ProductService.DeleteProduct(productID); err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// ListVariations 商品规格列表
func (h *Handler) ListVariations(c *gin.Context) {
	productID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product id")
		return
	}
	variations, err := h.ProductService.ListVariations(productID, c.Query("only_active") == "true")
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"variations": variations})
}
