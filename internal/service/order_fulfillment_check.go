package service

import (
	"fmt"

	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
)

// validateOrderItems 校验订单行与配送计划的一致性
// 纯校验，任一行违反约束则整单拒绝，不产生任何写入。
func validateOrderItems(items []CreateOrderItem) error {
	if len(items) == 0 {
		return newValidationError("Order must contain at least one item")
	}
	for i, item := range items {
		name := itemDisplayName(item, i)
		if item.Quantity <= 0 {
			return newValidationError("Quantity for %s must be greater than zero", name)
		}
		if item.UnitPrice.IsNegative() {
			return newValidationError("Unit price for %s must not be negative", name)
		}
		if err := validateItemDiscount(item, name); err != nil {
			return err
		}
		if len(item.Shipments) == 0 {
			return newValidationError("%s must have at least one shipment", name)
		}
		shipped := 0
		for _, shipment := range item.Shipments {
			if shipment.ShippingAddressID == 0 {
				return newValidationError("Shipment for %s is missing a shipping address", name)
			}
			if shipment.Quantity <= 0 {
				return newValidationError("Shipment quantity for %s must be greater than zero", name)
			}
			if shipment.ShippingFee.IsNegative() {
				return newValidationError("Shipping fee for %s must not be negative", name)
			}
			shipped += shipment.Quantity
		}
		if shipped != item.Quantity {
			return newValidationError(
				"Shipment quantities for %s do not match item quantity: expected %d, got %d",
				name, item.Quantity, shipped,
			)
		}
	}
	return nil
}

func validateItemDiscount(item CreateOrderItem, name string) error {
	discount := item.Discount
	if discount == nil {
		return nil
	}
	if discount.Mode != constants.DiscountModePercent && discount.Mode != constants.DiscountModeAmount {
		return newValidationError("Discount type for %s must be either 'percent' or 'amount'", name)
	}
	if discount.Value.IsNegative() {
		return newValidationError("Discount for %s must not be negative", name)
	}
	subtotal := item.UnitPrice.Round(2).Mul(decimalFromInt(item.Quantity))
	if discount.Mode == constants.DiscountModePercent {
		if discount.Value.GreaterThan(decimalHundred) {
			return newValidationError("Discount percent for %s must not exceed 100", name)
		}
		return nil
	}
	if discount.Value.Round(2).GreaterThan(subtotal) {
		return newValidationError("Discount for %s must not exceed the item subtotal", name)
	}
	return nil
}

func itemDisplayName(item CreateOrderItem, index int) string {
	if item.ProductName != "" {
		return item.ProductName
	}
	return fmt.Sprintf("item #%d", index+1)
}
