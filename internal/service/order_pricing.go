package service

import (
	"github.com/kwamkid/joolz-factory-sub002/internal/constants"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"

	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

func decimalFromInt(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}

// Discount 行级折扣，percent 与 amount 两种模式二选一
type Discount struct {
	Mode  string
	Value decimal.Decimal
}

// pricedOrderLine 单行计价结果
type pricedOrderLine struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
}

// orderPricing 订单头部计价结果
type orderPricing struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	VATRate        decimal.Decimal
	VATAmount      decimal.Decimal
	ShippingFee    decimal.Decimal
	TotalAmount    decimal.Decimal
}

// resolveLineDiscount 解析行折扣：比例与金额互为换算
// amount 模式下反推比例仅用于展示，小计为零时比例按 0 处理。
func resolveLineDiscount(subtotal decimal.Decimal, discount *Discount) (amount, percent decimal.Decimal) {
	if discount == nil || discount.Value.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	if discount.Mode == constants.DiscountModeAmount {
		amount = discount.Value.Round(2)
		if subtotal.IsZero() {
			return amount, decimal.Zero
		}
		percent = amount.Div(subtotal).Mul(decimalHundred).Round(2)
		return amount, percent
	}
	// 未指定模式时默认按比例折扣
	percent = discount.Value.Round(2)
	amount = subtotal.Mul(percent).Div(decimalHundred).Round(2)
	return amount, percent
}

// priceOrderLine 计算单行金额
func priceOrderLine(quantity int, unitPrice decimal.Decimal, discount *Discount) pricedOrderLine {
	subtotal := unitPrice.Round(2).Mul(decimalFromInt(quantity))
	discountAmount, discountPercent := resolveLineDiscount(subtotal, discount)
	return pricedOrderLine{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		Total:           subtotal.Sub(discountAmount),
	}
}

// dedupShippingFee 汇总运费：同一收货地址只计一次，取首次出现的运费
func dedupShippingFee(items []CreateOrderItem) decimal.Decimal {
	seen := make(map[uint]bool)
	total := decimal.Zero
	for _, item := range items {
		for _, shipment := range item.Shipments {
			if seen[shipment.ShippingAddressID] {
				continue
			}
			seen[shipment.ShippingAddressID] = true
			total = total.Add(shipment.ShippingFee.Round(2))
		}
	}
	return total
}

// priceOrder 计算订单头部金额
// exclusive 模式税额外加，inclusive 模式视净额为含税价并倒算税额、
// 头部小计改记为不含税口径，两种模式均保持
// total = subtotal - discount + vat + shipping 恒等。
func priceOrder(lines []pricedOrderLine, orderDiscount, shippingFee, vatRate decimal.Decimal, vatMode string) orderPricing {
	itemsSubtotal := decimal.Zero
	for _, line := range lines {
		itemsSubtotal = itemsSubtotal.Add(line.Total)
	}
	discount := orderDiscount.Round(2)
	shipping := shippingFee.Round(2)
	net := itemsSubtotal.Sub(discount).Add(shipping)

	pricing := orderPricing{
		Subtotal:       itemsSubtotal,
		DiscountAmount: discount,
		ShippingFee:    shipping,
		VATRate:        vatRate,
	}
	switch vatMode {
	case constants.VATModeInclusive:
		divisor := decimal.NewFromInt(1).Add(vatRate.Div(decimalHundred))
		preTax := net.Div(divisor).Round(2)
		pricing.VATAmount = net.Sub(preTax)
		pricing.TotalAmount = net
		pricing.Subtotal = itemsSubtotal.Sub(pricing.VATAmount)
	default:
		pricing.VATAmount = net.Mul(vatRate).Div(decimalHundred).Round(2)
		pricing.TotalAmount = net.Add(pricing.VATAmount)
	}
	return pricing
}

// repriceOrderHeader 基于已存明细重算头部金额，供头部折扣/运费覆盖使用
// inclusive 模式下存储小计为不含税口径，需先还原含税明细合计。
func repriceOrderHeader(order *models.Order, discount, shipping decimal.Decimal, vatMode string) orderPricing {
	itemsSubtotal := order.Subtotal.Decimal
	if vatMode == constants.VATModeInclusive {
		itemsSubtotal = itemsSubtotal.Add(order.VATAmount.Decimal)
	}
	lines := []pricedOrderLine{{Total: itemsSubtotal}}
	return priceOrder(lines, discount, shipping, order.VATRate.Decimal, vatMode)
}
