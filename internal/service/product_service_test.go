package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productTestEnv struct {
	db  *gorm.DB
	svc *ProductService
}

func newProductTestEnv(t *testing.T, name string) *productTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariation{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	svc := NewProductService(
		repository.NewProductRepository(db),
		repository.NewVariationRepository(db),
	)
	return &productTestEnv{db: db, svc: svc}
}

func orangeJuiceInput() CreateProductInput {
	return CreateProductInput{
		Code:     "juice-orange",
		Name:     "Fresh Orange Juice",
		Category: "juice",
		Variations: []VariationInput{
			{SKUCode: "org-250", BottleSize: "250ml", UnitPrice: decimal.NewFromInt(55)},
			{SKUCode: "ORG-1000", BottleSize: "1L", UnitPrice: decimal.NewFromInt(180)},
		},
	}
}

func TestCreateProductWithVariations(t *testing.T) {
	env := newProductTestEnv(t, "product_create")

	product, err := env.svc.CreateProduct(orangeJuiceInput())
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.Code != "JUICE-ORANGE" {
		t.Fatalf("code want JUICE-ORANGE got %s", product.Code)
	}
	if !product.IsActive {
		t.Fatalf("new product should be active")
	}
	if len(product.Variations) != 2 {
		t.Fatalf("variations want 2 got %d", len(product.Variations))
	}
	if product.Variations[0].SKUCode != "ORG-250" {
		t.Fatalf("sku should be uppercased, got %s", product.Variations[0].SKUCode)
	}
	if !product.Variations[0].UnitPrice.Decimal.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("unit price want 55 got %s", product.Variations[0].UnitPrice.String())
	}
}

func TestCreateProductCodeTaken(t *testing.T) {
	env := newProductTestEnv(t, "product_code_taken")

	if _, err := env.svc.CreateProduct(orangeJuiceInput()); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	_, err := env.svc.CreateProduct(CreateProductInput{Code: "JUICE-ORANGE", Name: "Another"})
	if !errors.Is(err, ErrProductCodeTaken) {
		t.Fatalf("expected code taken, got: %v", err)
	}
}

func TestCreateProductDuplicateSKURejected(t *testing.T) {
	env := newProductTestEnv(t, "product_dup_sku")

	input := orangeJuiceInput()
	input.Variations[1].SKUCode = "org-250"
	_, err := env.svc.CreateProduct(input)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got: %v", err)
	}

	var count int64
	if err := env.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("count products failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected product must not be persisted, got %d rows", count)
	}
}

func TestCreateProductNegativePriceRejected(t *testing.T) {
	env := newProductTestEnv(t, "product_neg_price")

	input := orangeJuiceInput()
	input.Variations[0].UnitPrice = decimal.NewFromInt(-1)
	_, err := env.svc.CreateProduct(input)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestUpdateProductSyncVariations(t *testing.T) {
	env := newProductTestEnv(t, "product_sync")

	product, err := env.svc.CreateProduct(orangeJuiceInput())
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	keepID := product.Variations[0].ID

	// 保留 250ml 改价，丢弃 1L，新增 500ml
	updated, err := env.svc.UpdateProduct(product.ID, UpdateProductInput{
		Variations: []VariationInput{
			{ID: keepID, SKUCode: "ORG-250", BottleSize: "250ml", UnitPrice: decimal.NewFromInt(60)},
			{SKUCode: "ORG-500", BottleSize: "500ml", UnitPrice: decimal.NewFromInt(95)},
		},
	})
	if err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if len(updated.Variations) != 2 {
		t.Fatalf("variations want 2 got %d", len(updated.Variations))
	}
	bySKU := make(map[string]models.ProductVariation)
	for _, variation := range updated.Variations {
		bySKU[variation.SKUCode] = variation
	}
	if _, gone := bySKU["ORG-1000"]; gone {
		t.Fatalf("dropped variation should be removed")
	}
	kept, ok := bySKU["ORG-250"]
	if !ok || kept.ID != keepID {
		t.Fatalf("existing variation should keep its ID")
	}
	if !kept.UnitPrice.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("price want 60 got %s", kept.UnitPrice.String())
	}
	if _, ok := bySKU["ORG-500"]; !ok {
		t.Fatalf("new variation missing")
	}
}

func TestUpdateProductUnknownVariationID(t *testing.T) {
	env := newProductTestEnv(t, "product_sync_unknown")

	product, err := env.svc.CreateProduct(orangeJuiceInput())
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	_, err = env.svc.UpdateProduct(product.ID, UpdateProductInput{
		Variations: []VariationInput{
			{ID: 9999, SKUCode: "ORG-250", BottleSize: "250ml", UnitPrice: decimal.NewFromInt(60)},
		},
	})
	if !errors.Is(err, ErrVariationNotFound) {
		t.Fatalf("expected variation not found, got: %v", err)
	}
}

func TestUpdateProductHeaderOnlyKeepsVariations(t *testing.T) {
	env := newProductTestEnv(t, "product_header_only")

	product, err := env.svc.CreateProduct(orangeJuiceInput())
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	name := "Orange Juice (Premium)"
	updated, err := env.svc.UpdateProduct(product.ID, UpdateProductInput{Name: &name})
	if err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("name want %q got %q", name, updated.Name)
	}
	if len(updated.Variations) != 2 {
		t.Fatalf("variations must survive header-only update, got %d", len(updated.Variations))
	}
}

func TestDeleteProductRemovesVariations(t *testing.T) {
	env := newProductTestEnv(t, "product_delete")

	product, err := env.svc.CreateProduct(orangeJuiceInput())
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := env.svc.DeleteProduct(product.ID); err != nil {
		t.Fatalf("delete product failed: %v", err)
	}

	_, err = env.svc.GetProduct(product.ID)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("deleted product should be gone, got: %v", err)
	}
	var count int64
	if err := env.db.Model(&models.ProductVariation{}).Count(&count).Error; err != nil {
		t.Fatalf("count variations failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("variations should be soft-deleted with product, got %d visible", count)
	}
}

func TestListVariationsOnlyActive(t *testing.T) {
	env := newProductTestEnv(t, "product_variations")

	product, err := env.svc.CreateProduct(orangeJuiceInput())
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	inactive := false
	_, err = env.svc.UpdateProduct(product.ID, UpdateProductInput{
		Variations: []VariationInput{
			{ID: product.Variations[0].ID, SKUCode: "ORG-250", BottleSize: "250ml", UnitPrice: decimal.NewFromInt(55)},
			{ID: product.Variations[1].ID, SKUCode: "ORG-1000", BottleSize: "1L", UnitPrice: decimal.NewFromInt(180), IsActive: &inactive},
		},
	})
	if err != nil {
		t.Fatalf("update product failed: %v", err)
	}

	all, err := env.svc.ListVariations(product.ID, false)
	if err != nil {
		t.Fatalf("list variations failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all variations want 2 got %d", len(all))
	}
	active, err := env.svc.ListVariations(product.ID, true)
	if err != nil {
		t.Fatalf("list variations failed: %v", err)
	}
	if len(active) != 1 || active[0].SKUCode != "ORG-250" {
		t.Fatalf("active variations want only ORG-250, got %d", len(active))
	}

	_, err = env.svc.ListVariations(9999, false)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected product not found, got: %v", err)
	}
}
