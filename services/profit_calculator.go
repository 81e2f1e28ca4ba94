package services

import (
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CouponDiscount is amount × percent / 100 capped at the coupon's maximum.
func CouponDiscount(amount decimal.Decimal, coupon *models.Coupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	discount := amount.Mul(coupon.DiscountPercent).Div(hundred)
	return decimal.Min(discount, coupon.MaxDiscount)
}

// CalculateMerchantProfit returns what the seller keeps from one order line
// after the platform commission and any merchant-funded coupon discount.
// System coupons are paid for by the platform and leave the profit untouched.
// The result is rounded to whole units, half away from zero.
//
// Negative prices or quantities are not rejected here.
func CalculateMerchantProfit(item models.OrderItem, coupon *models.Coupon) decimal.Decimal {
	rate := decimal.Zero
	if item.Order != nil {
		rate = item.Order.CommissionRate
	}
	subTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

	if !coupon.IsMerchantFunded() {
		commission := subTotal.Mul(rate)
		return subTotal.Sub(commission).Round(0)
	}

	discount := CouponDiscount(subTotal, coupon)
	commission := subTotal.Sub(discount).Mul(rate)
	return subTotal.Sub(discount).Sub(commission).Round(0)
}

// MerchantProfit uses the coupon attached to the item's order.
func MerchantProfit(item models.OrderItem) decimal.Decimal {
	var coupon *models.Coupon
	if item.Order != nil {
		coupon = item.Order.Coupon
	}
	return CalculateMerchantProfit(item, coupon)
}
