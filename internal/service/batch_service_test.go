package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/queue"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type batchTestEnv struct {
	db        *gorm.DB
	svc       *BatchService
	product   models.Product
	variation models.ProductVariation
}

func newBatchTestEnv(t *testing.T, name string) *batchTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariation{},
		&models.ProductionBatch{},
		&models.BatchIngredient{},
		&models.StockTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	product := models.Product{Code: "JUICE-ORANGE", Name: "Fresh Orange Juice", IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	variation := models.ProductVariation{
		ProductID:     product.ID,
		SKUCode:       "ORG-250",
		BottleSize:    "250ml",
		UnitPrice:     models.NewMoneyFromFloat(55),
		StockQuantity: 120,
		ReorderLevel:  30,
		IsActive:      true,
	}
	if err := db.Create(&variation).Error; err != nil {
		t.Fatalf("create variation failed: %v", err)
	}

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	svc := NewBatchService(
		repository.NewBatchRepository(db),
		repository.NewProductRepository(db),
		repository.NewVariationRepository(db),
		repository.NewStockRepository(db),
		queueClient,
	)
	return &batchTestEnv{db: db, svc: svc, product: product, variation: variation}
}

func (env *batchTestEnv) plannedBatch(t *testing.T) *BatchView {
	t.Helper()
	batch, err := env.svc.CreateBatch(CreateBatchInput{
		VariationID:     env.variation.ID,
		PlannedQuantity: 100,
		Ingredients: []BatchIngredientInput{
			{Name: "Oranges", Quantity: decimal.NewFromInt(30), Unit: "kg", Cost: decimal.NewFromInt(120)},
			{Name: "Bottles 250ml", Quantity: decimal.NewFromInt(100), Unit: "pcs", Cost: decimal.NewFromInt(80)},
		},
	})
	if err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
	return batch
}

func TestCreateBatchPlanned(t *testing.T) {
	env := newBatchTestEnv(t, "batch_create")

	batch := env.plannedBatch(t)
	if !strings.HasPrefix(batch.BatchNumber, "PB") {
		t.Fatalf("batch number should carry PB prefix, got %s", batch.BatchNumber)
	}
	if batch.Status != constants.BatchStatusPlanned {
		t.Fatalf("status want planned got %s", batch.Status)
	}
	if batch.ProductID != env.product.ID {
		t.Fatalf("product id should be inferred from variation")
	}
	if batch.ProductName != "Fresh Orange Juice" || batch.SKUCode != "ORG-250" {
		t.Fatalf("batch view not decorated: %+v", batch)
	}
	if len(batch.Ingredients) != 2 {
		t.Fatalf("ingredients want 2 got %d", len(batch.Ingredients))
	}
}

func TestCreateBatchVariationChecks(t *testing.T) {
	env := newBatchTestEnv(t, "batch_variation_checks")

	_, err := env.svc.CreateBatch(CreateBatchInput{VariationID: 999, PlannedQuantity: 10})
	if !errors.Is(err, ErrVariationNotFound) {
		t.Fatalf("expected variation not found, got: %v", err)
	}

	_, err = env.svc.CreateBatch(CreateBatchInput{
		ProductID:       env.product.ID + 1,
		VariationID:     env.variation.ID,
		PlannedQuantity: 10,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for mismatched product, got: %v", err)
	}

	_, err = env.svc.CreateBatch(CreateBatchInput{VariationID: env.variation.ID, PlannedQuantity: 0})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for zero quantity, got: %v", err)
	}
}

func TestStartBatchSetsProductionDate(t *testing.T) {
	env := newBatchTestEnv(t, "batch_start")
	batch := env.plannedBatch(t)

	started, err := env.svc.StartBatch(batch.ID)
	if err != nil {
		t.Fatalf("start batch failed: %v", err)
	}
	if started.Status != constants.BatchStatusInProgress {
		t.Fatalf("status want in_progress got %s", started.Status)
	}
	if started.ProductionDate == nil {
		t.Fatalf("production date should default to now on start")
	}

	_, err = env.svc.StartBatch(batch.ID)
	var cerr *StateConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("starting twice should conflict, got: %v", err)
	}
}

func TestCompleteBatchCostsAndRestock(t *testing.T) {
	env := newBatchTestEnv(t, "batch_complete")
	batch := env.plannedBatch(t)
	if _, err := env.svc.StartBatch(batch.ID); err != nil {
		t.Fatalf("start batch failed: %v", err)
	}

	completed, err := env.svc.CompleteBatch(batch.ID, CompleteBatchInput{ProducedQuantity: 100})
	if err != nil {
		t.Fatalf("complete batch failed: %v", err)
	}
	if completed.Status != constants.BatchStatusCompleted {
		t.Fatalf("status want completed got %s", completed.Status)
	}
	if completed.ProducedQuantity != 100 {
		t.Fatalf("produced quantity want 100 got %d", completed.ProducedQuantity)
	}
	// 原料成本 120 + 80 = 200，产出 100 瓶 => 单瓶 2.00
	if !completed.TotalCost.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total cost want 200 got %s", completed.TotalCost.String())
	}
	if !completed.UnitCost.Decimal.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unit cost want 2 got %s", completed.UnitCost.String())
	}
	if completed.CompletedAt == nil {
		t.Fatalf("completed_at should be set")
	}

	var variation models.ProductVariation
	if err := env.db.First(&variation, env.variation.ID).Error; err != nil {
		t.Fatalf("load variation failed: %v", err)
	}
	if variation.StockQuantity != 220 {
		t.Fatalf("stock want 120+100=220 got %d", variation.StockQuantity)
	}

	var txn models.StockTransaction
	if err := env.db.Where("variation_id = ?", env.variation.ID).First(&txn).Error; err != nil {
		t.Fatalf("load stock transaction failed: %v", err)
	}
	if txn.Type != constants.StockTxnTypeIn || txn.Quantity != 100 {
		t.Fatalf("txn want in/100 got %s/%d", txn.Type, txn.Quantity)
	}
	if txn.BalanceAfter != 220 {
		t.Fatalf("balance after want 220 got %d", txn.BalanceAfter)
	}
	if txn.Reason != "production" || txn.BatchID == nil || *txn.BatchID != batch.ID {
		t.Fatalf("txn should reference the batch: %+v", txn)
	}
}

func TestCompleteBatchGuards(t *testing.T) {
	env := newBatchTestEnv(t, "batch_complete_guard")
	batch := env.plannedBatch(t)

	_, err := env.svc.CompleteBatch(batch.ID, CompleteBatchInput{ProducedQuantity: 100})
	var cerr *StateConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("completing a planned batch should conflict, got: %v", err)
	}

	if _, err := env.svc.StartBatch(batch.ID); err != nil {
		t.Fatalf("start batch failed: %v", err)
	}
	_, err = env.svc.CompleteBatch(batch.ID, CompleteBatchInput{ProducedQuantity: 0})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("zero produced quantity should fail validation, got: %v", err)
	}
}

func TestCancelBatchIdempotent(t *testing.T) {
	env := newBatchTestEnv(t, "batch_cancel")
	batch := env.plannedBatch(t)

	cancelled, err := env.svc.CancelBatch(batch.ID)
	if err != nil {
		t.Fatalf("cancel batch failed: %v", err)
	}
	if cancelled.Status != constants.BatchStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}

	again, err := env.svc.CancelBatch(batch.ID)
	if err != nil {
		t.Fatalf("repeat cancel should be idempotent, got: %v", err)
	}
	if again.Status != constants.BatchStatusCancelled {
		t.Fatalf("status want cancelled got %s", again.Status)
	}
}

func TestCancelCompletedBatchRejected(t *testing.T) {
	env := newBatchTestEnv(t, "batch_cancel_completed")
	batch := env.plannedBatch(t)
	if _, err := env.svc.StartBatch(batch.ID); err != nil {
		t.Fatalf("start batch failed: %v", err)
	}
	if _, err := env.svc.CompleteBatch(batch.ID, CompleteBatchInput{ProducedQuantity: 90}); err != nil {
		t.Fatalf("complete batch failed: %v", err)
	}

	_, err := env.svc.CancelBatch(batch.ID)
	var cerr *StateConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected state conflict, got: %v", err)
	}
	if err.Error() != "Cannot cancel a completed batch" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestUpdateBatchReplacesIngredients(t *testing.T) {
	env := newBatchTestEnv(t, "batch_update")
	batch := env.plannedBatch(t)

	quantity := 150
	updated, err := env.svc.UpdateBatch(batch.ID, UpdateBatchInput{
		PlannedQuantity: &quantity,
		Ingredients: []BatchIngredientInput{
			{Name: "Oranges", Quantity: decimal.NewFromInt(45), Unit: "kg", Cost: decimal.NewFromInt(180)},
		},
	})
	if err != nil {
		t.Fatalf("update batch failed: %v", err)
	}
	if updated.PlannedQuantity != 150 {
		t.Fatalf("planned quantity want 150 got %d", updated.PlannedQuantity)
	}
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].Name != "Oranges" {
		t.Fatalf("ingredients not replaced: %+v", updated.Ingredients)
	}
	if !updated.Ingredients[0].Cost.Decimal.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("ingredient cost want 180 got %s", updated.Ingredients[0].Cost.String())
	}
}

func TestUpdateBatchTerminalGuard(t *testing.T) {
	env := newBatchTestEnv(t, "batch_update_guard")
	batch := env.plannedBatch(t)
	if _, err := env.svc.CancelBatch(batch.ID); err != nil {
		t.Fatalf("cancel batch failed: %v", err)
	}

	quantity := 10
	_, err := env.svc.UpdateBatch(batch.ID, UpdateBatchInput{PlannedQuantity: &quantity})
	var cerr *StateConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("editing a cancelled batch should conflict, got: %v", err)
	}
}
