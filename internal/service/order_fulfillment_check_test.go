package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"

	"github.com/shopspring/decimal"
)

func validItem() CreateOrderItem {
	return CreateOrderItem{
		ProductID:   1,
		VariationID: 10,
		ProductName: "Fresh Orange Juice",
		BottleSize:  "250ml",
		Quantity:    10,
		UnitPrice:   decimal.NewFromInt(100),
		Shipments: []CreateOrderShipment{
			{ShippingAddressID: 1, Quantity: 4},
			{ShippingAddressID: 2, Quantity: 6},
		},
	}
}

func TestValidateOrderItemsShipmentSplit(t *testing.T) {
	if err := validateOrderItems([]CreateOrderItem{validItem()}); err != nil {
		t.Fatalf("split 4+6 for qty 10 should pass, got: %v", err)
	}
}

func TestValidateOrderItemsQuantityMismatch(t *testing.T) {
	item := validItem()
	item.Shipments[1].Quantity = 5 // 4+5=9 != 10
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil {
		t.Fatalf("expected quantity mismatch error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "expected 10, got 9") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestValidateOrderItemsEmpty(t *testing.T) {
	err := validateOrderItems(nil)
	if err == nil || err.Error() != "Order must contain at least one item" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateOrderItemsMissingShipments(t *testing.T) {
	item := validItem()
	item.Shipments = nil
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "must have at least one shipment") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateOrderItemsZeroQuantity(t *testing.T) {
	item := validItem()
	item.Quantity = 0
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "must be greater than zero") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateOrderItemsNegativeUnitPrice(t *testing.T) {
	item := validItem()
	item.UnitPrice = decimal.NewFromInt(-1)
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "must not be negative") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateOrderItemsShipmentMissingAddress(t *testing.T) {
	item := validItem()
	item.Shipments[0].ShippingAddressID = 0
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "missing a shipping address") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateOrderItemsNegativeShippingFee(t *testing.T) {
	item := validItem()
	item.Shipments[0].ShippingFee = decimal.NewFromInt(-5)
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "Shipping fee") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateItemDiscountUnknownMode(t *testing.T) {
	item := validItem()
	item.Discount = &Discount{Mode: "bogus", Value: decimal.NewFromInt(5)}
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "'percent' or 'amount'") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateItemDiscountPercentOverHundred(t *testing.T) {
	item := validItem()
	item.Discount = &Discount{Mode: constants.DiscountModePercent, Value: decimal.NewFromInt(101)}
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "must not exceed 100") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateItemDiscountAmountOverSubtotal(t *testing.T) {
	item := validItem()
	item.Discount = &Discount{Mode: constants.DiscountModeAmount, Value: decimal.NewFromInt(1001)}
	err := validateOrderItems([]CreateOrderItem{item})
	if err == nil || !strings.Contains(err.Error(), "must not exceed the item subtotal") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateItemDiscountAtBoundary(t *testing.T) {
	item := validItem()
	item.Discount = &Discount{Mode: constants.DiscountModeAmount, Value: decimal.NewFromInt(1000)}
	if err := validateOrderItems([]CreateOrderItem{item}); err != nil {
		t.Fatalf("discount equal to subtotal should pass, got: %v", err)
	}
	item.Discount = &Discount{Mode: constants.DiscountModePercent, Value: decimal.NewFromInt(100)}
	if err := validateOrderItems([]CreateOrderItem{item}); err != nil {
		t.Fatalf("100 percent discount should pass, got: %v", err)
	}
}
