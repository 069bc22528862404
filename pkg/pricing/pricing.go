// Package pricing holds the money arithmetic shared by the cart and order
// services. All customer-facing figures are rounded up to the cent, never to
// nearest: under-charging a fraction of a cent is fine, mis-charging is not.
package pricing

import "github.com/shopspring/decimal"

// SalesTaxRate is the NY State sales tax applied to every order.
const SalesTaxRate = 0.088

// RoundUpCents rounds v up (toward positive infinity) to the hundredths
// place. 10.001 rounds to 10.01, not 10.00.
func RoundUpCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundCeil(2).Float64()
	return f
}

// LineSubtotal computes the subtotal of a single line item.
//
// Without selected choices the line is price*count-discount. With selected
// choices every selected choice contributes its own price*count and the base
// price is ignored; override-price and additive choices are summed the same
// way. The result is exact and deliberately unclamped: a discount larger than
// the line total goes negative.
func LineSubtotal(price float64, count int, discount float64, selectedChoicePrices []float64) float64 {
	qty := decimal.NewFromInt(int64(count))
	disc := decimal.NewFromFloat(discount)

	if len(selectedChoicePrices) == 0 {
		f, _ := decimal.NewFromFloat(price).Mul(qty).Sub(disc).Float64()
		return f
	}

	total := decimal.Zero
	for _, p := range selectedChoicePrices {
		total = total.Add(decimal.NewFromFloat(p).Mul(qty))
	}
	f, _ := total.Sub(disc).Float64()
	return f
}

// SalesTax computes the tax on a subtotal, rounded up to the cent.
func SalesTax(subtotal float64) float64 {
	taxed := decimal.NewFromFloat(subtotal).Mul(decimal.NewFromFloat(SalesTaxRate))
	f, _ := taxed.RoundCeil(2).Float64()
	return f
}
