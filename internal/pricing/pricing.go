package pricing

import (
	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// DiscountRate is the flat rate applied when the shopper is discount eligible.
var DiscountRate = decimal.New(10, -2)

// Subtotal sums the line subtotals of the provided items. An empty slice
// yields zero. Pure and safe for concurrent use.
func Subtotal(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Discount returns subtotal * DiscountRate when eligible, zero otherwise.
// The result is never negative.
func Discount(subtotal decimal.Decimal, eligible bool) decimal.Decimal {
	if !eligible || subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return subtotal.Mul(DiscountRate)
}

// FinalTotal returns subtotal minus discount, clamped at zero.
func FinalTotal(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
