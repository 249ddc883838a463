// Package pricing derives cart totals: fixed-rate tax and the free-shipping threshold.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront-api/models"
)

var (
	// TaxRate is the single flat rate applied to every subtotal.
	TaxRate = decimal.RequireFromString("0.0743")

	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShippingRate      = decimal.RequireFromString("5.99")
)

// CalculateTax applies TaxRate to subtotal and rounds half-up to cents.
func CalculateTax(subtotal float64) float64 {
	return tax(decimal.NewFromFloat(subtotal)).InexactFloat64()
}

// CalculateShipping is free on an empty cart and at or above the threshold.
func CalculateShipping(subtotal float64) float64 {
	return shipping(decimal.NewFromFloat(subtotal)).InexactFloat64()
}

// Totals recomputes every derived value from items.
func Totals(items []models.CartItem) models.CartTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	t := tax(subtotal)
	s := shipping(subtotal)

	return models.CartTotals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      t.InexactFloat64(),
		Shipping: s.InexactFloat64(),
		Total:    subtotal.Add(t).Add(s).InexactFloat64(),
	}
}

func tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

func shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() || subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingRate
}
